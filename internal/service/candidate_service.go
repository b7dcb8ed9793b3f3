package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"exam_admin_backend/internal/model"
	"exam_admin_backend/internal/repository"
	"exam_admin_backend/internal/util"
)

type CandidateService struct {
	candidateRepo *repository.CandidateRepository
	gradeRepo     *repository.GradeRepository
}

func NewCandidateService(candidateRepo *repository.CandidateRepository, gradeRepo *repository.GradeRepository) *CandidateService {
	return &CandidateService{candidateRepo: candidateRepo, gradeRepo: gradeRepo}
}

type CreateCandidateRequest struct {
	NationalID           string `json:"nationalId" binding:"required"`
	LastNames            string `json:"lastNames" binding:"required"`
	FirstNames           string `json:"firstNames" binding:"required"`
	ProgramOfApplication string `json:"programOfApplication" binding:"required"`
	Specialty            string `json:"specialty"`
	InstitutionalEmail   string `json:"institutionalEmail"`
}

type UpdateCandidateRequest struct {
	LastNames            string  `json:"lastNames"`
	FirstNames           string  `json:"firstNames"`
	ProgramOfApplication string  `json:"programOfApplication"`
	Specialty            *string `json:"specialty"`
	InstitutionalEmail   string  `json:"institutionalEmail"`
}

func (s *CandidateService) CreateCandidate(req CreateCandidateRequest, createdBy string) (*model.Candidate, error) {
	nationalID := strings.TrimSpace(req.NationalID)
	if !nationalIDPattern.MatchString(nationalID) {
		return nil, errors.New("nationalId must be 8 to 10 digits")
	}
	if _, err := s.candidateRepo.FindByNationalID(nationalID); err == nil {
		return nil, util.ErrNationalIDTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c := &model.Candidate{
		NationalID:           nationalID,
		LastNames:            strings.TrimSpace(req.LastNames),
		FirstNames:           strings.TrimSpace(req.FirstNames),
		ProgramOfApplication: strings.TrimSpace(req.ProgramOfApplication),
		Specialty:            strings.TrimSpace(req.Specialty),
		InstitutionalEmail:   strings.TrimSpace(req.InstitutionalEmail),
		CreatedBy:            createdBy,
	}
	if err := s.candidateRepo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CandidateService) GetCandidate(id string) (*model.Candidate, error) {
	c, err := s.candidateRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCandidateNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CandidateService) ListCandidates(page, limit int, search string) ([]model.Candidate, int64, error) {
	return s.candidateRepo.List(page, limit, search)
}

func (s *CandidateService) UpdateCandidate(id string, req UpdateCandidateRequest) (*model.Candidate, error) {
	c, err := s.GetCandidate(id)
	if err != nil {
		return nil, err
	}
	if req.LastNames != "" {
		c.LastNames = strings.TrimSpace(req.LastNames)
	}
	if req.FirstNames != "" {
		c.FirstNames = strings.TrimSpace(req.FirstNames)
	}
	if req.ProgramOfApplication != "" {
		c.ProgramOfApplication = strings.TrimSpace(req.ProgramOfApplication)
	}
	if req.Specialty != nil {
		c.Specialty = strings.TrimSpace(*req.Specialty)
	}
	if req.InstitutionalEmail != "" {
		c.InstitutionalEmail = strings.TrimSpace(req.InstitutionalEmail)
	}
	if err := s.candidateRepo.Update(c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCandidate refuses when graded sheets still reference the candidate.
func (s *CandidateService) DeleteCandidate(id string) error {
	if _, err := s.GetCandidate(id); err != nil {
		return err
	}
	grades, err := s.gradeRepo.ListByCandidate(id)
	if err != nil {
		return err
	}
	if len(grades) > 0 {
		return errors.New("candidate has grades and cannot be deleted")
	}
	return s.candidateRepo.Delete(id)
}

func (s *CandidateService) GetCandidateGrades(id string) ([]model.Grade, error) {
	if _, err := s.GetCandidate(id); err != nil {
		return nil, err
	}
	return s.gradeRepo.ListByCandidate(id)
}
