package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"exam_admin_backend/internal/model"
	"exam_admin_backend/internal/repository"
	"exam_admin_backend/internal/util"
)

type QuestionService struct {
	questionRepo *repository.QuestionRepository
}

func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo}
}

type CreateQuestionRequest struct {
	Subject                 string  `json:"subject" binding:"required"`
	Statement               string  `json:"statement"`
	CorrectAlternative      string  `json:"correctAlternative" binding:"required"`
	PointValue              float64 `json:"pointValue" binding:"required"`
	CompetencyMetMessage    string  `json:"competencyMetMessage"`
	CompetencyNotMetMessage string  `json:"competencyNotMetMessage"`
}

type UpdateQuestionRequest struct {
	Subject                 string   `json:"subject"`
	Statement               string   `json:"statement"`
	CorrectAlternative      string   `json:"correctAlternative"`
	PointValue              *float64 `json:"pointValue"`
	CompetencyMetMessage    *string  `json:"competencyMetMessage"`
	CompetencyNotMetMessage *string  `json:"competencyNotMetMessage"`
}

func validateAlternative(a string) error {
	if len(a) != 1 || !strings.Contains(model.ValidAlternatives, a) {
		return fmt.Errorf("correctAlternative must be one of %s", model.ValidAlternatives)
	}
	return nil
}

func (s *QuestionService) CreateQuestion(req CreateQuestionRequest) (*model.Question, error) {
	if err := validateAlternative(req.CorrectAlternative); err != nil {
		return nil, err
	}
	if req.PointValue <= 0 {
		return nil, errors.New("pointValue must be positive")
	}
	q := &model.Question{
		Subject:                 req.Subject,
		Statement:               req.Statement,
		CorrectAlternative:      req.CorrectAlternative,
		PointValue:              req.PointValue,
		CompetencyMetMessage:    req.CompetencyMetMessage,
		CompetencyNotMetMessage: req.CompetencyNotMetMessage,
	}
	if err := s.questionRepo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) GetQuestion(id uint) (*model.Question, error) {
	q, err := s.questionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) ListQuestions(page, limit int, subject string) ([]model.Question, int64, error) {
	return s.questionRepo.List(page, limit, subject)
}

func (s *QuestionService) UpdateQuestion(id uint, req UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.GetQuestion(id)
	if err != nil {
		return nil, err
	}
	if req.Subject != "" {
		q.Subject = req.Subject
	}
	if req.Statement != "" {
		q.Statement = req.Statement
	}
	if req.CorrectAlternative != "" {
		if verr := validateAlternative(req.CorrectAlternative); verr != nil {
			return nil, verr
		}
		q.CorrectAlternative = req.CorrectAlternative
	}
	if req.PointValue != nil {
		if *req.PointValue <= 0 {
			return nil, errors.New("pointValue must be positive")
		}
		q.PointValue = *req.PointValue
	}
	if req.CompetencyMetMessage != nil {
		q.CompetencyMetMessage = *req.CompetencyMetMessage
	}
	if req.CompetencyNotMetMessage != nil {
		q.CompetencyNotMetMessage = *req.CompetencyNotMetMessage
	}
	if err := s.questionRepo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

// DeleteQuestion refuses to remove a question that still sits in an exam
// composition, so published keys cannot lose positions.
func (s *QuestionService) DeleteQuestion(id uint) error {
	if _, err := s.GetQuestion(id); err != nil {
		return err
	}
	usages, err := s.questionRepo.CountUsages(id)
	if err != nil {
		return err
	}
	if usages > 0 {
		return util.ErrQuestionInUse
	}
	return s.questionRepo.Delete(id)
}
