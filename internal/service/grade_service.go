package service

import (
	"errors"

	"gorm.io/gorm"

	"exam_admin_backend/internal/model"
	"exam_admin_backend/internal/repository"
	"exam_admin_backend/internal/util"
)

type GradeService struct {
	gradeRepo *repository.GradeRepository
	examRepo  *repository.ExamRepository
}

func NewGradeService(gradeRepo *repository.GradeRepository, examRepo *repository.ExamRepository) *GradeService {
	return &GradeService{gradeRepo: gradeRepo, examRepo: examRepo}
}

func (s *GradeService) GetGrade(id string) (*model.Grade, error) {
	g, err := s.gradeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrGradeNotFound
		}
		return nil, err
	}
	return g, nil
}

// ListExamGrades returns an exam's grades ranked by final score.
func (s *GradeService) ListExamGrades(examID uint, page, limit int) ([]model.Grade, int64, error) {
	if _, err := s.examRepo.FindByID(examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, util.ErrExamNotFound
		}
		return nil, 0, err
	}
	return s.gradeRepo.ListByExam(examID, page, limit)
}

func (s *GradeService) DeleteGrade(id string) error {
	if _, err := s.GetGrade(id); err != nil {
		return err
	}
	return s.gradeRepo.Delete(id)
}
