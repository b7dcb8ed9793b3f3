package service

import (
	"exam_admin_backend/internal/model"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const examDateLayout = "2006-01-02"

var nationalIDPattern = regexp.MustCompile(`^\d{8,10}$`)

// ImportCandidate is the raw candidate block of one answer-sheet record.
type ImportCandidate struct {
	NationalID           string `json:"nationalId"`
	LastNames            string `json:"lastNames"`
	FirstNames           string `json:"firstNames"`
	ProgramOfApplication string `json:"programOfApplication"`
	Specialty            string `json:"specialty"`
	InstitutionalEmail   string `json:"institutionalEmail"`
}

// ImportRecord is one raw answer sheet. It only lives for the duration of an
// import call and is never persisted in this shape.
type ImportRecord struct {
	Candidate ImportCandidate `json:"candidate"`
	Answers   []string        `json:"answers"`
	ExamDate  string          `json:"examDate"`
}

// ValidateImportRecord checks every rule independently and reports every
// violation; it never stops at the first one. rowNumber is 1-based and is
// echoed in each message so callers can locate the offending sheet.
func ValidateImportRecord(rec ImportRecord, rowNumber int, emailDomain string) []string {
	var errs []string

	nationalID := strings.TrimSpace(rec.Candidate.NationalID)
	if nationalID == "" {
		errs = append(errs, fmt.Sprintf("row %d: nationalId is required", rowNumber))
	} else if !nationalIDPattern.MatchString(nationalID) {
		errs = append(errs, fmt.Sprintf("row %d: nationalId must be 8 to 10 digits", rowNumber))
	}

	if strings.TrimSpace(rec.Candidate.LastNames) == "" {
		errs = append(errs, fmt.Sprintf("row %d: lastNames is required", rowNumber))
	}
	if strings.TrimSpace(rec.Candidate.FirstNames) == "" {
		errs = append(errs, fmt.Sprintf("row %d: firstNames is required", rowNumber))
	}
	if strings.TrimSpace(rec.Candidate.ProgramOfApplication) == "" {
		errs = append(errs, fmt.Sprintf("row %d: programOfApplication is required", rowNumber))
	}

	email := strings.TrimSpace(rec.Candidate.InstitutionalEmail)
	if email == "" {
		errs = append(errs, fmt.Sprintf("row %d: institutionalEmail is required", rowNumber))
	} else if !strings.HasSuffix(email, emailDomain) {
		errs = append(errs, fmt.Sprintf("row %d: institutionalEmail must end with %s", rowNumber, emailDomain))
	}

	if len(rec.Answers) != model.ScoringKeySize {
		errs = append(errs, fmt.Sprintf("row %d: must have exactly %d answers", rowNumber, model.ScoringKeySize))
	}
	for i, a := range rec.Answers {
		if len(a) != 1 || !strings.Contains(model.ValidAlternatives, a) {
			errs = append(errs, fmt.Sprintf("row %d: answer %d is not a valid alternative: %q", rowNumber, i+1, a))
		}
	}

	examDate := strings.TrimSpace(rec.ExamDate)
	if examDate == "" {
		errs = append(errs, fmt.Sprintf("row %d: examDate is required", rowNumber))
	} else if _, err := time.Parse(examDateLayout, examDate); err != nil {
		errs = append(errs, fmt.Sprintf("row %d: examDate is not a valid date", rowNumber))
	}

	return errs
}
