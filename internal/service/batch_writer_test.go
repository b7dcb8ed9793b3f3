package service

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// fakeWriter records committed units and can be told to fail units of a
// given size. It must be safe for concurrent commits.
type fakeWriter struct {
	mu       sync.Mutex
	units    [][]WriteOp
	failSize int
}

func (w *fakeWriter) CommitUnit(ctx context.Context, ops []WriteOp) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failSize > 0 && len(ops) == w.failSize {
		return errors.New("deadline exceeded")
	}
	w.units = append(w.units, ops)
	return nil
}

func gradeOps(n int) []WriteOp {
	ops := make([]WriteOp, n)
	for i := range ops {
		ops[i] = WriteOp{Kind: opCreateGrade, Record: i}
	}
	return ops
}

func TestBatchWriterUnitSizes(t *testing.T) {
	tests := []struct {
		name    string
		ops     int
		ceiling int
		want    []int
	}{
		{"under ceiling", 100, 450, []int{100}},
		{"exactly ceiling", 450, 450, []int{450}},
		{"one over", 451, 450, []int{450, 1}},
		{"thousand ops", 1000, 450, []int{450, 450, 100}},
		{"empty", 0, 450, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bw := newBatchWriter(&fakeWriter{}, tt.ceiling)
			for _, op := range gradeOps(tt.ops) {
				bw.Add(op)
			}
			got := bw.Sizes()
			if len(got) != len(tt.want) {
				t.Fatalf("got %d units %v, want %v", len(got), got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("unit %d has %d ops, want %d", i+1, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBatchWriterCommitAll(t *testing.T) {
	w := &fakeWriter{}
	bw := newBatchWriter(w, 450)
	for _, op := range gradeOps(1000) {
		bw.Add(op)
	}

	results := bw.Commit(context.Background())
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("unit %d failed: %v", r.Unit, r.Err)
		}
	}

	total := 0
	for _, u := range w.units {
		total += len(u)
	}
	if total != 1000 {
		t.Errorf("writer received %d ops, want 1000", total)
	}
}

// One failed transaction must not take the sibling units with it.
func TestBatchWriterFailedUnitIsolated(t *testing.T) {
	w := &fakeWriter{failSize: 100}
	bw := newBatchWriter(w, 450)
	for _, op := range gradeOps(1000) {
		bw.Add(op)
	}

	results := bw.Commit(context.Background())

	var failed, committed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			if len(r.Ops) != 100 {
				t.Errorf("failed unit has %d ops, want 100", len(r.Ops))
			}
			if r.Unit != 3 {
				t.Errorf("failed unit number = %d, want 3", r.Unit)
			}
		} else {
			committed++
		}
	}
	if failed != 1 || committed != 2 {
		t.Errorf("failed=%d committed=%d, want 1 and 2", failed, committed)
	}
}

func TestBatchWriterUnitNumbersOrdered(t *testing.T) {
	bw := newBatchWriter(&fakeWriter{}, 10)
	for _, op := range gradeOps(25) {
		bw.Add(op)
	}
	results := bw.Commit(context.Background())
	for i, r := range results {
		if r.Unit != i+1 {
			t.Errorf("result %d has unit number %d", i, r.Unit)
		}
	}
}
