package service

import (
	"exam_admin_backend/internal/model"

	"github.com/shopspring/decimal"
)

// QuestionKey is one position of an exam's scoring key.
type QuestionKey struct {
	QuestionID              uint            `json:"questionId"`
	Subject                 string          `json:"subject"`
	CorrectAlternative      string          `json:"correctAlternative"`
	PointValue              decimal.Decimal `json:"pointValue"`
	CompetencyMetMessage    string          `json:"competencyMetMessage"`
	CompetencyNotMetMessage string          `json:"competencyNotMetMessage"`
}

// ScoringKey is the ordered question key for one exam, position 1 first.
type ScoringKey []QuestionKey

// ScoreBreakdown is the result of grading one answer sheet against a key.
// FinalScore stays decimal until the caller converts it for storage.
type ScoreBreakdown struct {
	FinalScore      decimal.Decimal
	CorrectCount    int
	SubjectMatrix   []model.SubjectMatrixEntry
	SubjectFeedback []model.SubjectFeedback
}

type subjectAccumulator struct {
	subject    string
	correct    int
	incorrect  int
	earned     decimal.Decimal
	possible   decimal.Decimal
	metSeen    map[string]bool
	met        []string
	notMetSeen map[string]bool
	notMet     []string
}

// ComputeScore grades answers position by position. Point sums are accumulated
// as decimals throughout and only converted to float64 at the very end, so 80
// additions of values like 1.25 cannot drift. A position without a key entry
// scores zero and counts as incorrect without a subject to attribute it to.
func ComputeScore(answers []string, key ScoringKey) ScoreBreakdown {
	total := decimal.Zero
	correctCount := 0

	accs := make(map[string]*subjectAccumulator)
	var order []string

	for i, entry := range key {
		acc, ok := accs[entry.Subject]
		if !ok {
			acc = &subjectAccumulator{
				subject:    entry.Subject,
				earned:     decimal.Zero,
				possible:   decimal.Zero,
				metSeen:    make(map[string]bool),
				notMetSeen: make(map[string]bool),
			}
			accs[entry.Subject] = acc
			order = append(order, entry.Subject)
		}

		acc.possible = acc.possible.Add(entry.PointValue)

		answered := ""
		if i < len(answers) {
			answered = answers[i]
		}

		if answered == entry.CorrectAlternative {
			correctCount++
			total = total.Add(entry.PointValue)
			acc.correct++
			acc.earned = acc.earned.Add(entry.PointValue)
			if msg := entry.CompetencyMetMessage; msg != "" && !acc.metSeen[msg] {
				acc.metSeen[msg] = true
				acc.met = append(acc.met, msg)
			}
		} else {
			acc.incorrect++
			if msg := entry.CompetencyNotMetMessage; msg != "" && !acc.notMetSeen[msg] {
				acc.notMetSeen[msg] = true
				acc.notMet = append(acc.notMet, msg)
			}
		}
	}

	matrix := make([]model.SubjectMatrixEntry, 0, len(order))
	feedback := make([]model.SubjectFeedback, 0, len(order))
	for _, subject := range order {
		acc := accs[subject]
		matrix = append(matrix, model.SubjectMatrixEntry{
			Subject:        subject,
			CorrectCount:   acc.correct,
			IncorrectCount: acc.incorrect,
			TotalQuestions: acc.correct + acc.incorrect,
			PointsEarned:   acc.earned.Round(2).InexactFloat64(),
			PointsPossible: acc.possible.Round(2).InexactFloat64(),
		})
		feedback = append(feedback, model.SubjectFeedback{
			Subject:            subject,
			CompetenciesMet:    append([]string{}, acc.met...),
			CompetenciesNotMet: append([]string{}, acc.notMet...),
		})
	}

	return ScoreBreakdown{
		FinalScore:      total,
		CorrectCount:    correctCount,
		SubjectMatrix:   matrix,
		SubjectFeedback: feedback,
	}
}
