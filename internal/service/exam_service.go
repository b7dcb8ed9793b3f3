package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"exam_admin_backend/internal/model"
	"exam_admin_backend/internal/repository"
	"exam_admin_backend/internal/util"
	"exam_admin_backend/pkg/logger"
)

const scoringKeyCacheTTL = 10 * time.Minute

type ExamService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	gradeRepo    *repository.GradeRepository
	redisClient  *redis.Client
}

func NewExamService(examRepo *repository.ExamRepository, questionRepo *repository.QuestionRepository, gradeRepo *repository.GradeRepository, redisClient *redis.Client) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		gradeRepo:    gradeRepo,
		redisClient:  redisClient,
	}
}

type CreateExamRequest struct {
	Name     string `json:"name" binding:"required"`
	ExamDate string `json:"examDate" binding:"required"`
}

type UpdateExamRequest struct {
	Name     string `json:"name"`
	ExamDate string `json:"examDate"`
	Status   string `json:"status"`
}

// ImportEligibility tells a caller whether an exam can accept a grade import
// right now, and why not when it cannot.
type ImportEligibility struct {
	ExamID        uint     `json:"examId"`
	Eligible      bool     `json:"eligible"`
	Status        string   `json:"status"`
	QuestionCount int      `json:"questionCount"`
	Reasons       []string `json:"reasons,omitempty"`
}

func (s *ExamService) CreateExam(req CreateExamRequest) (*model.Exam, error) {
	examDate, err := time.Parse(examDateLayout, req.ExamDate)
	if err != nil {
		return nil, fmt.Errorf("examDate is not a valid date: %w", err)
	}
	exam := &model.Exam{
		Name:     req.Name,
		ExamDate: examDate,
		Status:   model.ExamDraft,
	}
	if err := s.examRepo.Create(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) GetExam(id uint) (*model.Exam, error) {
	exam, err := s.examRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) ListExams(page, limit int) ([]model.Exam, int64, error) {
	return s.examRepo.List(page, limit)
}

func (s *ExamService) UpdateExam(id uint, req UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.GetExam(id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		exam.Name = req.Name
	}
	if req.ExamDate != "" {
		examDate, perr := time.Parse(examDateLayout, req.ExamDate)
		if perr != nil {
			return nil, fmt.Errorf("examDate is not a valid date: %w", perr)
		}
		exam.ExamDate = examDate
	}
	if req.Status != "" {
		switch model.ExamStatus(req.Status) {
		case model.ExamDraft, model.ExamPublished, model.ExamClosed:
			exam.Status = model.ExamStatus(req.Status)
		default:
			return nil, fmt.Errorf("invalid exam status: %s", req.Status)
		}
	}
	if err := s.examRepo.Update(exam); err != nil {
		return nil, err
	}
	s.invalidateScoringKey(context.Background(), id)
	return exam, nil
}

func (s *ExamService) DeleteExam(id uint) error {
	if _, err := s.GetExam(id); err != nil {
		return err
	}
	count, err := s.gradeRepo.CountByExam(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("exam has %d grades and cannot be deleted", count)
	}
	if err := s.examRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateScoringKey(context.Background(), id)
	return nil
}

// ReplaceQuestions swaps the exam's full ordered composition. Compositions of
// any length are accepted while the exam is in draft; the 80-question rule is
// enforced at import time, not here, so registrars can build up gradually.
func (s *ExamService) ReplaceQuestions(examID uint, questionIDs []uint) error {
	if _, err := s.GetExam(examID); err != nil {
		return err
	}
	if len(questionIDs) > 0 {
		questions, err := s.questionRepo.FindByIDs(questionIDs)
		if err != nil {
			return err
		}
		if len(questions) != len(uniqueUints(questionIDs)) {
			return util.ErrQuestionNotFound
		}
	}
	if err := s.examRepo.ReplaceQuestions(examID, questionIDs); err != nil {
		return err
	}
	s.invalidateScoringKey(context.Background(), examID)
	return nil
}

func (s *ExamService) ListQuestions(examID uint) ([]model.ExamQuestion, error) {
	if _, err := s.GetExam(examID); err != nil {
		return nil, err
	}
	return s.examRepo.ListQuestions(examID)
}

// CheckImportEligibility reports whether the exam can accept a grade import.
func (s *ExamService) CheckImportEligibility(examID uint) (*ImportEligibility, error) {
	exam, err := s.GetExam(examID)
	if err != nil {
		return nil, err
	}
	count, err := s.examRepo.CountQuestions(examID)
	if err != nil {
		return nil, err
	}
	elig := &ImportEligibility{
		ExamID:        examID,
		Status:        string(exam.Status),
		QuestionCount: int(count),
	}
	if exam.Status != model.ExamPublished {
		elig.Reasons = append(elig.Reasons, util.ErrExamNotImportable.Error())
	}
	if count != model.ScoringKeySize {
		elig.Reasons = append(elig.Reasons, util.ErrQuestionCountWrong.Error())
	}
	elig.Eligible = len(elig.Reasons) == 0
	return elig, nil
}

// LoadScoringKey builds the ordered key for an exam, caching the result in
// redis. The gate is strict: a missing exam, a non-published exam or a
// composition that is not exactly 80 questions all refuse the load.
func (s *ExamService) LoadScoringKey(ctx context.Context, examID uint) (ScoringKey, error) {
	cacheKey := fmt.Sprintf("scoring_key:%d", examID)
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var key ScoringKey
			if uerr := json.Unmarshal([]byte(cached), &key); uerr == nil && len(key) == model.ScoringKeySize {
				return key, nil
			}
		}
	}

	exam, err := s.GetExam(examID)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamPublished {
		return nil, util.ErrExamNotImportable
	}

	eqs, err := s.examRepo.ListQuestions(examID)
	if err != nil {
		return nil, err
	}
	if len(eqs) != model.ScoringKeySize {
		return nil, util.ErrQuestionCountWrong
	}

	key := buildScoringKey(eqs)

	if s.redisClient != nil {
		if payload, merr := json.Marshal(key); merr == nil {
			if serr := s.redisClient.Set(ctx, cacheKey, payload, scoringKeyCacheTTL).Err(); serr != nil {
				logger.Log.Warn("scoring key cache write failed",
					zap.Uint("examId", examID),
					zap.Error(serr))
			}
		}
	}
	return key, nil
}

// buildScoringKey maps a composition to key entries in position order. An
// entry whose question row is gone becomes a zero-point placeholder no answer
// can match, so that sheet position scores as incorrect instead of refusing
// the whole import.
func buildScoringKey(eqs []model.ExamQuestion) ScoringKey {
	key := make(ScoringKey, 0, len(eqs))
	for _, eq := range eqs {
		if eq.Question == nil {
			key = append(key, QuestionKey{QuestionID: eq.QuestionID})
			continue
		}
		key = append(key, QuestionKey{
			QuestionID:              eq.QuestionID,
			Subject:                 eq.Question.Subject,
			CorrectAlternative:      eq.Question.CorrectAlternative,
			PointValue:              decimal.NewFromFloat(eq.Question.PointValue),
			CompetencyMetMessage:    eq.Question.CompetencyMetMessage,
			CompetencyNotMetMessage: eq.Question.CompetencyNotMetMessage,
		})
	}
	return key
}

func (s *ExamService) invalidateScoringKey(ctx context.Context, examID uint) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, fmt.Sprintf("scoring_key:%d", examID)).Err(); err != nil {
		logger.Log.Warn("scoring key cache invalidation failed",
			zap.Uint("examId", examID),
			zap.Error(err))
	}
}

func uniqueUints(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	var out []uint
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
