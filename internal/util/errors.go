package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrExamNotFound       = errors.New("exam not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrGradeNotFound      = errors.New("grade not found")
	ErrExamNotImportable  = errors.New("exam is not eligible for import")
	ErrNationalIDTaken    = errors.New("national id already registered")
	ErrQuestionCountWrong = errors.New("exam composition must contain exactly 80 questions")
	ErrQuestionInUse      = errors.New("question is used by an exam composition")
)
