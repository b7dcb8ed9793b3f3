package model

import (
	"encoding/json"
	"time"
)

// SubjectMatrixEntry is the per-subject breakdown of one graded sheet.
// correctCount+incorrectCount always equals totalQuestions.
type SubjectMatrixEntry struct {
	Subject        string  `json:"subject"`
	CorrectCount   int     `json:"correctCount"`
	IncorrectCount int     `json:"incorrectCount"`
	TotalQuestions int     `json:"totalQuestions"`
	PointsEarned   float64 `json:"pointsEarned"`
	PointsPossible float64 `json:"pointsPossible"`
}

// SubjectFeedback lists distinct competency messages per subject.
type SubjectFeedback struct {
	Subject            string   `json:"subject"`
	CompetenciesMet    []string `json:"competenciesMet"`
	CompetenciesNotMet []string `json:"competenciesNotMet"`
}

// swagger:model Grade
type Grade struct {
	UUIDBase
	CandidateID     string          `gorm:"size:36;not null;index" json:"candidateId"`
	Candidate       *Candidate      `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
	ExamID          uint            `gorm:"not null;index" json:"examId"`
	Answers         json.RawMessage `gorm:"type:json" json:"answers"`
	CorrectCount    int             `gorm:"not null" json:"correctCount"`
	FinalScore      float64         `gorm:"type:decimal(8,2);not null" json:"finalScore"`
	SubjectMatrix   json.RawMessage `gorm:"type:json" json:"subjectMatrix"`
	SubjectFeedback json.RawMessage `gorm:"type:json" json:"subjectFeedback"`
	ExamDate        time.Time       `json:"examDate"`
	CreatedBy       string          `gorm:"size:100" json:"createdBy"`
}

func (Grade) TableName() string {
	return "grades"
}
