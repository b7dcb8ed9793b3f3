package repository

import (
	"exam_admin_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) Create(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

func (r *ExamRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.First(&exam, id).Error
	return &exam, err
}

func (r *ExamRepository) List(page, limit int) ([]model.Exam, int64, error) {
	var exams []model.Exam
	var total int64
	query := r.DB.Model(&model.Exam{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("exam_date desc").Offset(offset).Limit(limit).Find(&exams).Error
	return exams, total, err
}

func (r *ExamRepository) Update(exam *model.Exam) error {
	return r.DB.Save(exam).Error
}

func (r *ExamRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", id).Delete(&model.ExamQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Exam{}, id).Error
	})
}

// ListQuestions returns the exam's composition ordered by position, with the
// underlying question rows preloaded.
func (r *ExamRepository) ListQuestions(examID uint) ([]model.ExamQuestion, error) {
	var eqs []model.ExamQuestion
	err := r.DB.Preload("Question").
		Where("exam_id = ?", examID).
		Order("position asc").
		Find(&eqs).Error
	return eqs, err
}

func (r *ExamRepository) CountQuestions(examID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ExamQuestion{}).Where("exam_id = ?", examID).Count(&count).Error
	return count, err
}

// ReplaceQuestions swaps the full ordered composition in one transaction.
func (r *ExamRepository) ReplaceQuestions(examID uint, questionIDs []uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("exam_id = ?", examID).Delete(&model.ExamQuestion{}).Error; err != nil {
			return err
		}
		for i, qid := range questionIDs {
			eq := model.ExamQuestion{
				ExamID:     examID,
				Position:   i + 1,
				QuestionID: qid,
			}
			if err := tx.Create(&eq).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
