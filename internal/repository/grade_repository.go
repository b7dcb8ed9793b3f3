package repository

import (
	"exam_admin_backend/internal/model"

	"gorm.io/gorm"
)

type GradeRepository struct {
	DB *gorm.DB
}

func NewGradeRepository(db *gorm.DB) *GradeRepository {
	return &GradeRepository{DB: db}
}

func (r *GradeRepository) FindByID(id string) (*model.Grade, error) {
	var g model.Grade
	err := r.DB.Preload("Candidate").Where("id = ?", id).First(&g).Error
	return &g, err
}

func (r *GradeRepository) ListByExam(examID uint, page, limit int) ([]model.Grade, int64, error) {
	var gs []model.Grade
	var total int64
	query := r.DB.Model(&model.Grade{}).Where("exam_id = ?", examID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Candidate").
		Order("final_score desc, created_at asc").
		Offset(offset).Limit(limit).
		Find(&gs).Error
	return gs, total, err
}

func (r *GradeRepository) ListByCandidate(candidateID string) ([]model.Grade, error) {
	var gs []model.Grade
	err := r.DB.Where("candidate_id = ?", candidateID).Order("created_at desc").Find(&gs).Error
	return gs, err
}

func (r *GradeRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Grade{}).Error
}

func (r *GradeRepository) CountByExam(examID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Grade{}).Where("exam_id = ?", examID).Count(&count).Error
	return count, err
}
