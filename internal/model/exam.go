package model

import "time"

// ScoringKeySize is the number of questions every importable exam must have.
const ScoringKeySize = 80

type ExamStatus string

const (
	ExamDraft     ExamStatus = "draft"
	ExamPublished ExamStatus = "published"
	ExamClosed    ExamStatus = "closed"
)

// swagger:model Exam
type Exam struct {
	BaseModel
	Name      string         `gorm:"size:200;not null" json:"name"`
	ExamDate  time.Time      `json:"examDate"`
	Status    ExamStatus     `gorm:"type:enum('draft','published','closed');default:'draft'" json:"status"`
	Questions []ExamQuestion `gorm:"foreignKey:ExamID" json:"questions,omitempty"`
}

func (Exam) TableName() string {
	return "exams"
}

// ExamQuestion pins a question to a position (1..80) inside an exam.
type ExamQuestion struct {
	BaseModel
	ExamID     uint      `gorm:"not null;index:idx_exam_position,unique" json:"examId"`
	Position   int       `gorm:"not null;index:idx_exam_position,unique" json:"position"`
	QuestionID uint      `gorm:"not null" json:"questionId"`
	Question   *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

func (ExamQuestion) TableName() string {
	return "exam_questions"
}
