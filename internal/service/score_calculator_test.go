package service

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func uniformKey(n int, subject string, pointValue string) ScoringKey {
	pv := decimal.RequireFromString(pointValue)
	key := make(ScoringKey, 0, n)
	for i := 0; i < n; i++ {
		key = append(key, QuestionKey{
			QuestionID:              uint(i + 1),
			Subject:                 subject,
			CorrectAlternative:      "A",
			PointValue:              pv,
			CompetencyMetMessage:    fmt.Sprintf("%s competency %d met", subject, i+1),
			CompetencyNotMetMessage: fmt.Sprintf("%s competency %d not met", subject, i+1),
		})
	}
	return key
}

func answerSheet(n int, alternative string) []string {
	answers := make([]string, n)
	for i := range answers {
		answers[i] = alternative
	}
	return answers
}

func TestComputeScorePerfectSheet(t *testing.T) {
	key := uniformKey(80, "Anatomy", "1.25")
	got := ComputeScore(answerSheet(80, "A"), key)

	if want := decimal.RequireFromString("100"); !got.FinalScore.Equal(want) {
		t.Errorf("FinalScore = %s, want %s", got.FinalScore, want)
	}
	if got.CorrectCount != 80 {
		t.Errorf("CorrectCount = %d, want 80", got.CorrectCount)
	}
}

func TestComputeScoreAllWrong(t *testing.T) {
	key := uniformKey(80, "Anatomy", "1.25")
	got := ComputeScore(answerSheet(80, "B"), key)

	if !got.FinalScore.IsZero() {
		t.Errorf("FinalScore = %s, want 0", got.FinalScore)
	}
	if got.CorrectCount != 0 {
		t.Errorf("CorrectCount = %d, want 0", got.CorrectCount)
	}
}

// Point values like 0.1 and 0.2 have no exact binary representation; summing
// them as floats drifts. The decimal accumulation must not.
func TestComputeScoreDecimalExactness(t *testing.T) {
	key := ScoringKey{
		{QuestionID: 1, Subject: "Math", CorrectAlternative: "A", PointValue: decimal.RequireFromString("0.1")},
		{QuestionID: 2, Subject: "Math", CorrectAlternative: "A", PointValue: decimal.RequireFromString("0.2")},
		{QuestionID: 3, Subject: "Math", CorrectAlternative: "A", PointValue: decimal.RequireFromString("0.3")},
	}
	got := ComputeScore([]string{"A", "A", "A"}, key)

	if want := decimal.RequireFromString("0.6"); !got.FinalScore.Equal(want) {
		t.Errorf("FinalScore = %s, want exactly %s", got.FinalScore, want)
	}
}

func TestComputeScoreSubjectMatrix(t *testing.T) {
	key := ScoringKey{
		{QuestionID: 1, Subject: "Anatomy", CorrectAlternative: "A", PointValue: decimal.RequireFromString("1.25")},
		{QuestionID: 2, Subject: "Physiology", CorrectAlternative: "B", PointValue: decimal.RequireFromString("1.25")},
		{QuestionID: 3, Subject: "Anatomy", CorrectAlternative: "C", PointValue: decimal.RequireFromString("1.25")},
		{QuestionID: 4, Subject: "Physiology", CorrectAlternative: "D", PointValue: decimal.RequireFromString("1.25")},
	}
	got := ComputeScore([]string{"A", "B", "A", "A"}, key)

	if len(got.SubjectMatrix) != 2 {
		t.Fatalf("SubjectMatrix has %d entries, want 2", len(got.SubjectMatrix))
	}
	// Subjects appear in first-appearance order.
	if got.SubjectMatrix[0].Subject != "Anatomy" || got.SubjectMatrix[1].Subject != "Physiology" {
		t.Errorf("subject order = %s, %s; want Anatomy, Physiology",
			got.SubjectMatrix[0].Subject, got.SubjectMatrix[1].Subject)
	}

	for _, entry := range got.SubjectMatrix {
		if entry.CorrectCount+entry.IncorrectCount != entry.TotalQuestions {
			t.Errorf("%s: correct %d + incorrect %d != total %d",
				entry.Subject, entry.CorrectCount, entry.IncorrectCount, entry.TotalQuestions)
		}
	}

	anatomy := got.SubjectMatrix[0]
	if anatomy.CorrectCount != 1 || anatomy.IncorrectCount != 1 {
		t.Errorf("Anatomy = %d correct, %d incorrect; want 1, 1", anatomy.CorrectCount, anatomy.IncorrectCount)
	}
	if anatomy.PointsEarned != 1.25 || anatomy.PointsPossible != 2.5 {
		t.Errorf("Anatomy points = %.2f/%.2f, want 1.25/2.50", anatomy.PointsEarned, anatomy.PointsPossible)
	}
}

func TestComputeScoreFeedbackDeduplicated(t *testing.T) {
	key := ScoringKey{
		{QuestionID: 1, Subject: "Anatomy", CorrectAlternative: "A", PointValue: decimal.New(1, 0),
			CompetencyMetMessage: "identifies structures", CompetencyNotMetMessage: "review structures"},
		{QuestionID: 2, Subject: "Anatomy", CorrectAlternative: "A", PointValue: decimal.New(1, 0),
			CompetencyMetMessage: "identifies structures", CompetencyNotMetMessage: "review structures"},
		{QuestionID: 3, Subject: "Anatomy", CorrectAlternative: "A", PointValue: decimal.New(1, 0),
			CompetencyMetMessage: "identifies structures", CompetencyNotMetMessage: "review structures"},
	}
	got := ComputeScore([]string{"A", "A", "B"}, key)

	if len(got.SubjectFeedback) != 1 {
		t.Fatalf("SubjectFeedback has %d entries, want 1", len(got.SubjectFeedback))
	}
	fb := got.SubjectFeedback[0]
	if len(fb.CompetenciesMet) != 1 || fb.CompetenciesMet[0] != "identifies structures" {
		t.Errorf("CompetenciesMet = %v, want one deduplicated message", fb.CompetenciesMet)
	}
	if len(fb.CompetenciesNotMet) != 1 || fb.CompetenciesNotMet[0] != "review structures" {
		t.Errorf("CompetenciesNotMet = %v, want one deduplicated message", fb.CompetenciesNotMet)
	}
}

func TestComputeScoreShortAnswerSlice(t *testing.T) {
	key := uniformKey(5, "Anatomy", "2")
	got := ComputeScore([]string{"A", "A"}, key)

	if got.CorrectCount != 2 {
		t.Errorf("CorrectCount = %d, want 2", got.CorrectCount)
	}
	if want := decimal.RequireFromString("4"); !got.FinalScore.Equal(want) {
		t.Errorf("FinalScore = %s, want %s", got.FinalScore, want)
	}
	if got.SubjectMatrix[0].IncorrectCount != 3 {
		t.Errorf("IncorrectCount = %d, want 3", got.SubjectMatrix[0].IncorrectCount)
	}
}
