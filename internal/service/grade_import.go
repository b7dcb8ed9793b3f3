package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"exam_admin_backend/internal/config"
	"exam_admin_backend/internal/model"
	"exam_admin_backend/pkg/logger"
	"exam_admin_backend/pkg/monitoring"
	"exam_admin_backend/pkg/tracing"
)

// ProgressEvent reports how far an import run has advanced. Current never
// decreases within a run; repeated values are allowed when a stage re-emits.
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
}

// ProgressFunc receives progress events during RunImport. May be nil.
type ProgressFunc func(ProgressEvent)

// ImportResult summarizes one import run. Success is false when nothing was
// written; a run with some failed commit units still reports Success true
// with the failures listed in Errors.
type ImportResult struct {
	Success           bool     `json:"success"`
	TotalRecords      int      `json:"totalRecords"`
	GradesCreated     int      `json:"gradesCreated"`
	CandidatesCreated int      `json:"candidatesCreated"`
	CandidatesUpdated int      `json:"candidatesUpdated"`
	UnitsCommitted    int      `json:"unitsCommitted"`
	UnitsFailed       int      `json:"unitsFailed"`
	Errors            []string `json:"errors"`
}

// ScoringKeyLoader resolves the full 80-position key for an exam, refusing
// exams that are not ready for grading.
type ScoringKeyLoader interface {
	LoadScoringKey(ctx context.Context, examID uint) (ScoringKey, error)
}

// CandidateFinder fetches existing candidates for one chunk of national ids.
type CandidateFinder interface {
	FindByNationalIDs(nationalIDs []string) ([]model.Candidate, error)
}

// PayloadArchiver stores the raw import payload for later audit.
type PayloadArchiver interface {
	ArchiveImportPayload(ctx context.Context, examID uint, payload []byte) (string, error)
}

type GradeImportService struct {
	keyLoader ScoringKeyLoader
	finder    CandidateFinder
	writer    TransactionalWriter
	archiver  PayloadArchiver
	cfg       config.ImportConfig
	score     func([]string, ScoringKey) ScoreBreakdown
}

func NewGradeImportService(keyLoader ScoringKeyLoader, finder CandidateFinder, writer TransactionalWriter, archiver PayloadArchiver, cfg config.ImportConfig) *GradeImportService {
	if cfg.BatchCeiling <= 0 {
		cfg.BatchCeiling = 450
	}
	if cfg.LookupChunk <= 0 {
		cfg.LookupChunk = 10
	}
	if cfg.ValidationChunk <= 0 {
		cfg.ValidationChunk = 50
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 10
	}
	if cfg.EmailDomain == "" {
		cfg.EmailDomain = "@institution.edu"
	}
	return &GradeImportService{
		keyLoader: keyLoader,
		finder:    finder,
		writer:    writer,
		archiver:  archiver,
		cfg:       cfg,
		score:     ComputeScore,
	}
}

type progressTracker struct {
	fn      ProgressFunc
	current int
	total   int
}

func (p *progressTracker) addTotal(n int) {
	p.total += n
}

func (p *progressTracker) step(stage string) {
	p.current++
	p.emit(stage)
}

func (p *progressTracker) emit(stage string) {
	if p.fn != nil {
		p.fn(ProgressEvent{Stage: stage, Current: p.current, Total: p.total})
	}
}

func (p *progressTracker) finish(stage string) {
	p.current = p.total
	p.emit(stage)
}

func chunkCount(n, size int) int {
	if n == 0 {
		return 0
	}
	return (n + size - 1) / size
}

// RunImport executes the full import pipeline for one exam: load the scoring
// key, validate every record, resolve candidates, compute scores, and commit
// the queued writes in bounded units. It always returns a result; failures
// before the write phase leave the database untouched.
func (s *GradeImportService) RunImport(ctx context.Context, examID uint, records []ImportRecord, createdBy string, progress ProgressFunc) *ImportResult {
	start := time.Now()
	ctx, span := tracing.Tracer.Start(ctx, "grade.import")
	defer span.End()

	result := &ImportResult{TotalRecords: len(records)}

	distinct := make(map[string]bool, len(records))
	for _, rec := range records {
		distinct[strings.TrimSpace(rec.Candidate.NationalID)] = true
	}

	tracker := &progressTracker{fn: progress}
	tracker.addTotal(1) // scoring key
	tracker.addTotal(chunkCount(len(records), s.cfg.ValidationChunk))
	tracker.addTotal(chunkCount(len(distinct), s.cfg.LookupChunk))
	tracker.addTotal(chunkCount(len(records), s.cfg.ProgressEvery))

	key, err := s.keyLoader.LoadScoringKey(ctx, examID)
	if err != nil {
		logger.Log.Warn("grade import rejected",
			zap.Uint("examId", examID),
			zap.Error(err))
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	tracker.step("loading_key")

	if s.archiver != nil && s.cfg.ArchivePayloads {
		if payload, merr := json.Marshal(records); merr == nil {
			if _, aerr := s.archiver.ArchiveImportPayload(ctx, examID, payload); aerr != nil {
				logger.Log.Warn("import payload archive failed",
					zap.Uint("examId", examID),
					zap.Error(aerr))
			}
		}
	}

	// Validation is all or nothing. Every record is checked and every
	// violation collected before the run is refused.
	for offset := 0; offset < len(records); offset += s.cfg.ValidationChunk {
		end := offset + s.cfg.ValidationChunk
		if end > len(records) {
			end = len(records)
		}
		for i := offset; i < end; i++ {
			result.Errors = append(result.Errors, ValidateImportRecord(records[i], i+1, s.cfg.EmailDomain)...)
		}
		tracker.step("validating")
	}
	if len(result.Errors) > 0 {
		logger.Log.Warn("grade import failed validation",
			zap.Uint("examId", examID),
			zap.Int("records", len(records)),
			zap.Int("violations", len(result.Errors)))
		monitoring.ImportRecordsProcessed.WithLabelValues("rejected").Add(float64(len(records)))
		return result
	}

	if len(records) == 0 {
		result.Success = true
		tracker.finish("done")
		return result
	}

	existing, err := s.prefetchCandidates(ctx, distinct, tracker)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("candidate lookup failed: %v", err))
		return result
	}

	resolver := newCandidateResolver(existing)
	bw := newBatchWriter(s.writer, s.cfg.BatchCeiling)

	for i, rec := range records {
		s.processRecord(rec, i, examID, key, resolver, bw, createdBy, result)
		if (i+1)%s.cfg.ProgressEvery == 0 || i == len(records)-1 {
			tracker.step("processing")
		}
	}

	sizes := bw.Sizes()
	tracker.addTotal(len(sizes))

	unitResults := bw.Commit(ctx)
	for _, ur := range unitResults {
		if ur.Err != nil {
			result.UnitsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("commit unit %d failed: %v", ur.Unit, ur.Err))
			for _, op := range ur.Ops {
				switch op.Kind {
				case opCreateCandidate:
					result.CandidatesCreated--
				case opUpdateCandidate:
					result.CandidatesUpdated--
				case opCreateGrade:
					result.GradesCreated--
				}
			}
			monitoring.ImportBatchUnits.WithLabelValues("failed").Inc()
		} else {
			result.UnitsCommitted++
			monitoring.ImportBatchUnits.WithLabelValues("committed").Inc()
		}
		tracker.step("committing")
	}

	// A run that reached the commit phase succeeds even when units failed;
	// the per-unit errors carry the damage so the caller can see exactly
	// which slices were lost.
	result.Success = true

	imported := result.GradesCreated
	failed := result.TotalRecords - imported
	if imported > 0 {
		monitoring.ImportRecordsProcessed.WithLabelValues("imported").Add(float64(imported))
	}
	if failed > 0 {
		monitoring.ImportRecordsProcessed.WithLabelValues("failed").Add(float64(failed))
	}
	monitoring.ImportDuration.Observe(time.Since(start).Seconds())

	tracker.finish("done")

	logger.Log.Info("grade import finished",
		zap.Uint("examId", examID),
		zap.Int("records", result.TotalRecords),
		zap.Int("gradesCreated", result.GradesCreated),
		zap.Int("candidatesCreated", result.CandidatesCreated),
		zap.Int("candidatesUpdated", result.CandidatesUpdated),
		zap.Int("unitsCommitted", result.UnitsCommitted),
		zap.Int("unitsFailed", result.UnitsFailed),
		zap.Duration("elapsed", time.Since(start)))

	return result
}

// processRecord resolves, scores and queues one record. A panic in scoring or
// marshalling is converted into an error on that record alone so one corrupt
// sheet cannot take the whole run down.
func (s *GradeImportService) processRecord(rec ImportRecord, i int, examID uint, key ScoringKey, resolver *candidateResolver, bw *batchWriter, createdBy string, result *ImportResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("grade import record panicked",
				zap.Int("record", i+1),
				zap.String("nationalId", rec.Candidate.NationalID),
				zap.Any("panic", r))
			result.Errors = append(result.Errors,
				fmt.Sprintf("record with nationalId %s: internal error: %v", rec.Candidate.NationalID, r))
		}
	}()

	res := resolver.Resolve(rec.Candidate, createdBy, i)
	breakdown := s.score(rec.Answers, key)

	examDate, _ := time.Parse(examDateLayout, strings.TrimSpace(rec.ExamDate))
	answersJSON, err := json.Marshal(rec.Answers)
	if err != nil {
		panic(err)
	}
	matrixJSON, err := json.Marshal(breakdown.SubjectMatrix)
	if err != nil {
		panic(err)
	}
	feedbackJSON, err := json.Marshal(breakdown.SubjectFeedback)
	if err != nil {
		panic(err)
	}

	grade := &model.Grade{
		CandidateID:     res.CandidateID,
		ExamID:          examID,
		Answers:         answersJSON,
		SubjectMatrix:   matrixJSON,
		SubjectFeedback: feedbackJSON,
		CorrectCount:    breakdown.CorrectCount,
		FinalScore:      breakdown.FinalScore.Round(2).InexactFloat64(),
		ExamDate:        examDate,
		CreatedBy:       createdBy,
	}
	grade.ID = model.GenerateUUID()

	if res.Op != nil {
		bw.Add(*res.Op)
		if res.Created {
			result.CandidatesCreated++
		} else {
			result.CandidatesUpdated++
		}
	}
	bw.Add(WriteOp{Kind: opCreateGrade, Grade: grade, Record: i})
	result.GradesCreated++
}

// prefetchCandidates loads every already-known candidate for the run's
// distinct national ids, chunked to the store's IN-cardinality limit and
// fetched concurrently.
func (s *GradeImportService) prefetchCandidates(ctx context.Context, distinct map[string]bool, tracker *progressTracker) ([]model.Candidate, error) {
	ids := make([]string, 0, len(distinct))
	for id := range distinct {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	type chunkResult struct {
		candidates []model.Candidate
		err        error
	}

	chunks := make([][]string, 0, chunkCount(len(ids), s.cfg.LookupChunk))
	for offset := 0; offset < len(ids); offset += s.cfg.LookupChunk {
		end := offset + s.cfg.LookupChunk
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[offset:end])
	}

	results := make([]chunkResult, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []string) {
			defer wg.Done()
			cs, err := s.finder.FindByNationalIDs(chunk)
			results[i] = chunkResult{candidates: cs, err: err}
		}(i, chunk)
	}
	wg.Wait()

	var all []model.Candidate
	for range chunks {
		tracker.step("resolving")
	}
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		all = append(all, r.candidates...)
	}
	return all, nil
}
