package service

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"exam_admin_backend/internal/model"
)

const (
	opCreateCandidate = "createCandidate"
	opUpdateCandidate = "updateCandidate"
	opCreateGrade     = "createGrade"
)

// WriteOp is one pending persistence operation queued by the import pipeline.
// Exactly one of Candidate or Grade is set depending on Kind.
type WriteOp struct {
	Kind      string
	Candidate *model.Candidate
	Grade     *model.Grade
	// Record is the index of the source record this op belongs to, so unit
	// failures can be attributed back to rows.
	Record int
}

// TransactionalWriter commits one unit of operations atomically.
type TransactionalWriter interface {
	CommitUnit(ctx context.Context, ops []WriteOp) error
}

// GormWriter commits each unit inside a single database transaction.
type GormWriter struct {
	DB *gorm.DB
}

func NewGormWriter(db *gorm.DB) *GormWriter {
	return &GormWriter{DB: db}
}

func (w *GormWriter) CommitUnit(ctx context.Context, ops []WriteOp) error {
	return w.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			var err error
			switch op.Kind {
			case opCreateCandidate:
				err = tx.Create(op.Candidate).Error
			case opUpdateCandidate:
				err = tx.Save(op.Candidate).Error
			case opCreateGrade:
				err = tx.Create(op.Grade).Error
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// UnitResult reports the outcome of one committed unit. Unit is 1-based.
type UnitResult struct {
	Unit int
	Ops  []WriteOp
	Err  error
}

// batchWriter accumulates operations into units that never exceed the
// per-transaction op ceiling. A unit is sealed as soon as it is full, so ops
// from one record may span two units.
type batchWriter struct {
	writer  TransactionalWriter
	ceiling int
	units   [][]WriteOp
	current []WriteOp
}

func newBatchWriter(writer TransactionalWriter, ceiling int) *batchWriter {
	return &batchWriter{writer: writer, ceiling: ceiling}
}

func (b *batchWriter) Add(op WriteOp) {
	b.current = append(b.current, op)
	if len(b.current) >= b.ceiling {
		b.units = append(b.units, b.current)
		b.current = nil
	}
}

// Sizes returns the op count of each unit as committed, sealing the tail.
func (b *batchWriter) Sizes() []int {
	b.seal()
	sizes := make([]int, len(b.units))
	for i, u := range b.units {
		sizes[i] = len(u)
	}
	return sizes
}

func (b *batchWriter) seal() {
	if len(b.current) > 0 {
		b.units = append(b.units, b.current)
		b.current = nil
	}
}

// Commit flushes all units concurrently. Each unit succeeds or fails on its
// own; one failed transaction never rolls back its siblings. Results come
// back ordered by unit number.
func (b *batchWriter) Commit(ctx context.Context) []UnitResult {
	b.seal()
	results := make([]UnitResult, len(b.units))
	var wg sync.WaitGroup
	for i, unit := range b.units {
		wg.Add(1)
		go func(i int, unit []WriteOp) {
			defer wg.Done()
			err := b.writer.CommitUnit(ctx, unit)
			results[i] = UnitResult{Unit: i + 1, Ops: unit, Err: err}
		}(i, unit)
	}
	wg.Wait()
	return results
}
