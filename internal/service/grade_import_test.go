package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"exam_admin_backend/internal/config"
	"exam_admin_backend/internal/model"
	"exam_admin_backend/internal/util"
	"exam_admin_backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

type fakeKeyLoader struct {
	key ScoringKey
	err error
}

func (f *fakeKeyLoader) LoadScoringKey(ctx context.Context, examID uint) (ScoringKey, error) {
	return f.key, f.err
}

type fakeFinder struct {
	mu         sync.Mutex
	byID       map[string]model.Candidate
	chunkSizes []int
	err        error
}

func (f *fakeFinder) FindByNationalIDs(ids []string) ([]model.Candidate, error) {
	f.mu.Lock()
	f.chunkSizes = append(f.chunkSizes, len(ids))
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Candidate
	for _, id := range ids {
		if c, ok := f.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func makeRecords(n int) []ImportRecord {
	records := make([]ImportRecord, n)
	for i := range records {
		id := fmt.Sprintf("%08d", i+1)
		records[i] = ImportRecord{
			Candidate: ImportCandidate{
				NationalID:           id,
				LastNames:            "Garcia Lopez",
				FirstNames:           "Maria",
				ProgramOfApplication: "Medicine",
				InstitutionalEmail:   fmt.Sprintf("c%s@institution.edu", id),
			},
			Answers:  answerSheet(80, "A"),
			ExamDate: "2026-03-15",
		}
	}
	return records
}

func storedCandidates(records []ImportRecord) map[string]model.Candidate {
	byID := make(map[string]model.Candidate, len(records))
	for _, rec := range records {
		c := model.Candidate{
			NationalID:           rec.Candidate.NationalID,
			LastNames:            rec.Candidate.LastNames,
			FirstNames:           rec.Candidate.FirstNames,
			ProgramOfApplication: rec.Candidate.ProgramOfApplication,
			Specialty:            rec.Candidate.Specialty,
			InstitutionalEmail:   rec.Candidate.InstitutionalEmail,
		}
		c.ID = model.GenerateUUID()
		byID[c.NationalID] = c
	}
	return byID
}

func newImportService(loader ScoringKeyLoader, finder CandidateFinder, writer TransactionalWriter) *GradeImportService {
	return NewGradeImportService(loader, finder, writer, nil, config.ImportConfig{})
}

func TestRunImportRefusedKey(t *testing.T) {
	writer := &fakeWriter{}
	svc := newImportService(
		&fakeKeyLoader{err: util.ErrQuestionCountWrong},
		&fakeFinder{},
		writer,
	)

	result := svc.RunImport(context.Background(), 1, makeRecords(3), "importer@institution.edu", nil)

	if result.Success {
		t.Error("import succeeded against an ineligible exam")
	}
	if len(writer.units) != 0 {
		t.Errorf("writer received %d units, want 0", len(writer.units))
	}
	if len(result.Errors) != 1 || result.Errors[0] != util.ErrQuestionCountWrong.Error() {
		t.Errorf("Errors = %v", result.Errors)
	}
}

// A single invalid record refuses the whole run with nothing written.
func TestRunImportValidationFailureWritesNothing(t *testing.T) {
	records := makeRecords(3)
	records[1].Answers = records[1].Answers[:79]

	writer := &fakeWriter{}
	svc := newImportService(
		&fakeKeyLoader{key: uniformKey(80, "Anatomy", "1.25")},
		&fakeFinder{},
		writer,
	)

	result := svc.RunImport(context.Background(), 1, records, "importer@institution.edu", nil)

	if result.Success {
		t.Error("import succeeded with an invalid record")
	}
	if len(writer.units) != 0 {
		t.Errorf("writer received %d units, want 0", len(writer.units))
	}
	if result.GradesCreated != 0 || result.CandidatesCreated != 0 {
		t.Errorf("counts nonzero: %+v", result)
	}
	want := "row 2: must have exactly 80 answers"
	found := false
	for _, e := range result.Errors {
		if e == want {
			found = true
		}
	}
	if !found {
		t.Errorf("Errors = %v, want to contain %q", result.Errors, want)
	}
}

func TestRunImportCreatesCandidatesAndGrades(t *testing.T) {
	records := makeRecords(3)
	writer := &fakeWriter{}
	svc := newImportService(
		&fakeKeyLoader{key: uniformKey(80, "Anatomy", "1.25")},
		&fakeFinder{},
		writer,
	)

	result := svc.RunImport(context.Background(), 42, records, "importer@institution.edu", nil)

	if !result.Success {
		t.Fatalf("import failed: %v", result.Errors)
	}
	if result.CandidatesCreated != 3 || result.GradesCreated != 3 || result.CandidatesUpdated != 0 {
		t.Errorf("counts = %+v", result)
	}
	if result.UnitsCommitted != 1 {
		t.Errorf("UnitsCommitted = %d, want 1", result.UnitsCommitted)
	}

	total := 0
	for _, unit := range writer.units {
		total += len(unit)
		for _, op := range unit {
			if op.Kind == opCreateGrade {
				if op.Grade.ExamID != 42 {
					t.Errorf("grade has ExamID %d, want 42", op.Grade.ExamID)
				}
				if op.Grade.FinalScore != 100 {
					t.Errorf("FinalScore = %.2f, want 100.00", op.Grade.FinalScore)
				}
				if op.Grade.CorrectCount != 80 {
					t.Errorf("CorrectCount = %d, want 80", op.Grade.CorrectCount)
				}
				if op.Grade.CandidateID == "" {
					t.Error("grade references no candidate")
				}
			}
		}
	}
	if total != 6 {
		t.Errorf("writer received %d ops, want 6", total)
	}
}

// The same person on two sheets in one run gets one candidate row and two grades.
func TestRunImportRepeatNationalID(t *testing.T) {
	records := makeRecords(1)
	second := records[0]
	second.Answers = answerSheet(80, "B")
	records = append(records, second)

	writer := &fakeWriter{}
	svc := newImportService(
		&fakeKeyLoader{key: uniformKey(80, "Anatomy", "1.25")},
		&fakeFinder{},
		writer,
	)

	result := svc.RunImport(context.Background(), 1, records, "importer@institution.edu", nil)

	if !result.Success {
		t.Fatalf("import failed: %v", result.Errors)
	}
	if result.CandidatesCreated != 1 {
		t.Errorf("CandidatesCreated = %d, want 1", result.CandidatesCreated)
	}
	if result.GradesCreated != 2 {
		t.Errorf("GradesCreated = %d, want 2", result.GradesCreated)
	}

	var candidateIDs []string
	for _, unit := range writer.units {
		for _, op := range unit {
			if op.Kind == opCreateGrade {
				candidateIDs = append(candidateIDs, op.Grade.CandidateID)
			}
		}
	}
	if len(candidateIDs) != 2 || candidateIDs[0] != candidateIDs[1] {
		t.Errorf("grades reference candidates %v, want one shared id", candidateIDs)
	}
}

func TestRunImportUpdatesChangedCandidate(t *testing.T) {
	records := makeRecords(1)
	stored := storedCandidates(records)
	for id, c := range stored {
		c.ProgramOfApplication = "Dentistry"
		stored[id] = c
	}

	writer := &fakeWriter{}
	svc := newImportService(
		&fakeKeyLoader{key: uniformKey(80, "Anatomy", "1.25")},
		&fakeFinder{byID: stored},
		writer,
	)

	result := svc.RunImport(context.Background(), 1, records, "importer@institution.edu", nil)

	if !result.Success {
		t.Fatalf("import failed: %v", result.Errors)
	}
	if result.CandidatesUpdated != 1 || result.CandidatesCreated != 0 {
		t.Errorf("counts = %+v", result)
	}
	var updated *model.Candidate
	for _, unit := range writer.units {
		for _, op := range unit {
			if op.Kind == opUpdateCandidate {
				updated = op.Candidate
			}
		}
	}
	if updated == nil {
		t.Fatal("no update op committed")
	}
	if updated.ProgramOfApplication != "Medicine" {
		t.Errorf("update carries program %q, want Medicine", updated.ProgramOfApplication)
	}
}

// Records over already-known, unchanged candidates queue only grade ops, so
// 500 records land in two units of 450 and 50.
func TestRunImportUnchangedCandidatesUnitCount(t *testing.T) {
	records := makeRecords(500)
	writer := &fakeWriter{}
	svc := newImportService(
		&fakeKeyLoader{key: uniformKey(80, "Anatomy", "1.25")},
		&fakeFinder{byID: storedCandidates(records)},
		writer,
	)

	result := svc.RunImport(context.Background(), 1, records, "importer@institution.edu", nil)

	if !result.Success {
		t.Fatalf("import failed: %v", result.Errors)
	}
	if result.CandidatesCreated != 0 || result.CandidatesUpdated != 0 {
		t.Errorf("candidate counts = %+v", result)
	}
	if result.GradesCreated != 500 {
		t.Errorf("GradesCreated = %d, want 500", result.GradesCreated)
	}
	if result.UnitsCommitted != 2 {
		t.Errorf("UnitsCommitted = %d, want 2", result.UnitsCommitted)
	}

	var sizes []int
	for _, unit := range writer.units {
		sizes = append(sizes, len(unit))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	if len(sizes) != 2 || sizes[0] != 450 || sizes[1] != 50 {
		t.Errorf("unit sizes = %v, want [450 50]", sizes)
	}
}

// A failed unit subtracts its ops from the counts and is reported, but the
// committed units still make the run a partial success.
func TestRunImportFailedUnitAccounting(t *testing.T) {
	records := makeRecords(500)
	writer := &fakeWriter{failSize: 50}
	svc := newImportService(
		&fakeKeyLoader{key: uniformKey(80, "Anatomy", "1.25")},
		&fakeFinder{byID: storedCandidates(records)},
		writer,
	)

	result := svc.RunImport(context.Background(), 1, records, "importer@institution.edu", nil)

	if !result.Success {
		t.Fatalf("partial run reported failure: %v", result.Errors)
	}
	if result.UnitsCommitted != 1 || result.UnitsFailed != 1 {
		t.Errorf("units = %d committed, %d failed; want 1 and 1", result.UnitsCommitted, result.UnitsFailed)
	}
	if result.GradesCreated != 450 {
		t.Errorf("GradesCreated = %d, want 450", result.GradesCreated)
	}
	want := "commit unit 2 failed: deadline exceeded"
	found := false
	for _, e := range result.Errors {
		if e == want {
			found = true
		}
	}
	if !found {
		t.Errorf("Errors = %v, want to contain %q", result.Errors, want)
	}
}

// refusingWriter fails every unit it is handed.
type refusingWriter struct {
	mu    sync.Mutex
	calls int
}

func (w *refusingWriter) CommitUnit(ctx context.Context, ops []WriteOp) error {
	w.mu.Lock()
	w.calls++
	w.mu.Unlock()
	return errors.New("deadline exceeded")
}

// Once the commit phase is reached the run reports success even if every
// single unit fails; the damage lives in Errors and the unit counters.
func TestRunImportAllUnitsFailStillSucceeds(t *testing.T) {
	records := makeRecords(500)
	writer := &refusingWriter{}
	svc := newImportService(
		&fakeKeyLoader{key: uniformKey(80, "Anatomy", "1.25")},
		&fakeFinder{byID: storedCandidates(records)},
		writer,
	)

	result := svc.RunImport(context.Background(), 1, records, "importer@institution.edu", nil)

	if !result.Success {
		t.Error("run that reached the commit phase reported failure")
	}
	if result.UnitsCommitted != 0 || result.UnitsFailed != 2 {
		t.Errorf("units = %d committed, %d failed; want 0 and 2", result.UnitsCommitted, result.UnitsFailed)
	}
	if result.GradesCreated != 0 {
		t.Errorf("GradesCreated = %d, want 0 after both units failed", result.GradesCreated)
	}
	if writer.calls != 2 {
		t.Errorf("writer saw %d units, want 2", writer.calls)
	}
	for _, want := range []string{"commit unit 1 failed", "commit unit 2 failed"} {
		found := false
		for _, e := range result.Errors {
			if strings.Contains(e, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("Errors = %v, want to mention %q", result.Errors, want)
		}
	}
}

// A panic while processing one sheet is attributed to that sheet's national
// id and the remaining records still import.
func TestRunImportRecordPanicAttributed(t *testing.T) {
	records := makeRecords(3)
	records[1].Answers = answerSheet(80, "B")

	writer := &fakeWriter{}
	svc := newImportService(
		&fakeKeyLoader{key: uniformKey(80, "Anatomy", "1.25")},
		&fakeFinder{},
		writer,
	)
	svc.score = func(answers []string, key ScoringKey) ScoreBreakdown {
		if answers[0] == "B" {
			panic("score overflow")
		}
		return ComputeScore(answers, key)
	}

	result := svc.RunImport(context.Background(), 1, records, "importer@institution.edu", nil)

	if !result.Success {
		t.Fatalf("import failed: %v", result.Errors)
	}
	if result.GradesCreated != 2 || result.CandidatesCreated != 2 {
		t.Errorf("counts = %+v, want 2 grades and 2 candidates", result)
	}

	want := "record with nationalId 00000002: internal error: score overflow"
	found := false
	for _, e := range result.Errors {
		if e == want {
			found = true
		}
	}
	if !found {
		t.Errorf("Errors = %v, want to contain %q", result.Errors, want)
	}

	total := 0
	for _, unit := range writer.units {
		total += len(unit)
	}
	if total != 4 {
		t.Errorf("writer received %d ops, want 4 from the surviving records", total)
	}
}

func TestRunImportLookupChunking(t *testing.T) {
	records := makeRecords(25)
	finder := &fakeFinder{}
	svc := newImportService(
		&fakeKeyLoader{key: uniformKey(80, "Anatomy", "1.25")},
		finder,
		&fakeWriter{},
	)

	result := svc.RunImport(context.Background(), 1, records, "importer@institution.edu", nil)
	if !result.Success {
		t.Fatalf("import failed: %v", result.Errors)
	}

	sizes := append([]int{}, finder.chunkSizes...)
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	if len(sizes) != 3 || sizes[0] != 10 || sizes[1] != 10 || sizes[2] != 5 {
		t.Errorf("lookup chunk sizes = %v, want [10 10 5]", sizes)
	}
}

func TestRunImportProgressMonotonic(t *testing.T) {
	records := makeRecords(120)
	var events []ProgressEvent
	svc := newImportService(
		&fakeKeyLoader{key: uniformKey(80, "Anatomy", "1.25")},
		&fakeFinder{},
		&fakeWriter{},
	)

	result := svc.RunImport(context.Background(), 1, records, "importer@institution.edu",
		func(ev ProgressEvent) { events = append(events, ev) })
	if !result.Success {
		t.Fatalf("import failed: %v", result.Errors)
	}

	if len(events) == 0 {
		t.Fatal("no progress events emitted")
	}
	prev := -1
	for _, ev := range events {
		if ev.Current < prev {
			t.Fatalf("progress went backwards: %d after %d", ev.Current, prev)
		}
		prev = ev.Current
	}
	last := events[len(events)-1]
	if last.Current != last.Total {
		t.Errorf("final event %d/%d, want current == total", last.Current, last.Total)
	}
}

func TestRunImportEmptyRecords(t *testing.T) {
	writer := &fakeWriter{}
	svc := newImportService(
		&fakeKeyLoader{key: uniformKey(80, "Anatomy", "1.25")},
		&fakeFinder{},
		writer,
	)

	result := svc.RunImport(context.Background(), 1, nil, "importer@institution.edu", nil)

	if !result.Success {
		t.Errorf("empty import failed: %v", result.Errors)
	}
	if len(writer.units) != 0 {
		t.Errorf("writer received %d units, want 0", len(writer.units))
	}
	if result.TotalRecords != 0 || result.GradesCreated != 0 {
		t.Errorf("counts = %+v", result)
	}
}
