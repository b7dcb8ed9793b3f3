package service

import (
	"strings"
	"testing"
)

func validImportRecord() ImportRecord {
	return ImportRecord{
		Candidate: ImportCandidate{
			NationalID:           "12345678",
			LastNames:            "Garcia Lopez",
			FirstNames:           "Maria",
			ProgramOfApplication: "Medicine",
			Specialty:            "Cardiology",
			InstitutionalEmail:   "maria.garcia@institution.edu",
		},
		Answers:  answerSheet(80, "A"),
		ExamDate: "2026-03-15",
	}
}

func TestValidateImportRecordValid(t *testing.T) {
	errs := ValidateImportRecord(validImportRecord(), 1, "@institution.edu")
	if len(errs) != 0 {
		t.Errorf("valid record produced errors: %v", errs)
	}
}

func TestValidateImportRecordRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ImportRecord)
		want    string
		wantRow int
	}{
		{
			name:    "missing national id",
			mutate:  func(r *ImportRecord) { r.Candidate.NationalID = "  " },
			want:    "nationalId is required",
			wantRow: 1,
		},
		{
			name:    "national id too short",
			mutate:  func(r *ImportRecord) { r.Candidate.NationalID = "1234567" },
			want:    "nationalId must be 8 to 10 digits",
			wantRow: 1,
		},
		{
			name:    "national id too long",
			mutate:  func(r *ImportRecord) { r.Candidate.NationalID = "12345678901" },
			want:    "nationalId must be 8 to 10 digits",
			wantRow: 1,
		},
		{
			name:    "national id not numeric",
			mutate:  func(r *ImportRecord) { r.Candidate.NationalID = "1234567a" },
			want:    "nationalId must be 8 to 10 digits",
			wantRow: 1,
		},
		{
			name:    "missing last names",
			mutate:  func(r *ImportRecord) { r.Candidate.LastNames = "" },
			want:    "lastNames is required",
			wantRow: 1,
		},
		{
			name:    "missing first names",
			mutate:  func(r *ImportRecord) { r.Candidate.FirstNames = "" },
			want:    "firstNames is required",
			wantRow: 1,
		},
		{
			name:    "missing program",
			mutate:  func(r *ImportRecord) { r.Candidate.ProgramOfApplication = "" },
			want:    "programOfApplication is required",
			wantRow: 1,
		},
		{
			name:    "missing email",
			mutate:  func(r *ImportRecord) { r.Candidate.InstitutionalEmail = "" },
			want:    "institutionalEmail is required",
			wantRow: 1,
		},
		{
			name:    "wrong email domain",
			mutate:  func(r *ImportRecord) { r.Candidate.InstitutionalEmail = "maria@gmail.com" },
			want:    "institutionalEmail must end with @institution.edu",
			wantRow: 1,
		},
		{
			name:    "too few answers",
			mutate:  func(r *ImportRecord) { r.Answers = r.Answers[:79] },
			want:    "must have exactly 80 answers",
			wantRow: 1,
		},
		{
			name:    "too many answers",
			mutate:  func(r *ImportRecord) { r.Answers = append(r.Answers, "A") },
			want:    "must have exactly 80 answers",
			wantRow: 1,
		},
		{
			name:    "invalid alternative",
			mutate:  func(r *ImportRecord) { r.Answers[4] = "F" },
			want:    "answer 5 is not a valid alternative",
			wantRow: 1,
		},
		{
			name:    "lowercase alternative",
			mutate:  func(r *ImportRecord) { r.Answers[0] = "a" },
			want:    "answer 1 is not a valid alternative",
			wantRow: 1,
		},
		{
			name:    "missing exam date",
			mutate:  func(r *ImportRecord) { r.ExamDate = "" },
			want:    "examDate is required",
			wantRow: 1,
		},
		{
			name:    "malformed exam date",
			mutate:  func(r *ImportRecord) { r.ExamDate = "15/03/2026" },
			want:    "examDate is not a valid date",
			wantRow: 1,
		},
		{
			name:    "impossible exam date",
			mutate:  func(r *ImportRecord) { r.ExamDate = "2026-02-30" },
			want:    "examDate is not a valid date",
			wantRow: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validImportRecord()
			tt.mutate(&rec)
			errs := ValidateImportRecord(rec, tt.wantRow, "@institution.edu")
			if len(errs) == 0 {
				t.Fatal("expected validation errors, got none")
			}
			found := false
			for _, e := range errs {
				if strings.Contains(e, tt.want) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %q", errs, tt.want)
			}
		})
	}
}

// Every rule is evaluated even when an earlier one already failed.
func TestValidateImportRecordNoShortCircuit(t *testing.T) {
	rec := validImportRecord()
	rec.Candidate.NationalID = ""
	rec.Candidate.LastNames = ""
	rec.Answers = rec.Answers[:10]
	rec.ExamDate = "bad"

	errs := ValidateImportRecord(rec, 7, "@institution.edu")
	if len(errs) < 4 {
		t.Fatalf("got %d errors, want at least 4: %v", len(errs), errs)
	}
	for _, e := range errs {
		if !strings.HasPrefix(e, "row 7: ") {
			t.Errorf("error %q does not carry the row number", e)
		}
	}
}
