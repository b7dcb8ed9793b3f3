package service

import (
	"strings"

	"exam_admin_backend/internal/model"
)

// candidateResolver decides, per record, whether the candidate must be
// created, updated or left alone. It holds an in-run index keyed by national
// id so a person appearing on many sheets in the same import resolves to one
// row no matter what the database said before the run started.
type candidateResolver struct {
	index map[string]*model.Candidate
}

func newCandidateResolver(existing []model.Candidate) *candidateResolver {
	index := make(map[string]*model.Candidate, len(existing))
	for i := range existing {
		c := existing[i]
		index[c.NationalID] = &c
	}
	return &candidateResolver{index: index}
}

// resolution describes the outcome for one record's candidate block. Op is
// nil when the stored row already matches the incoming fields.
type resolution struct {
	CandidateID string
	Created     bool
	Op          *WriteOp
}

// Resolve returns the candidate id for a record and, when needed, the write
// op to queue. New candidates get their id up front so grades can reference
// them before anything is committed.
func (r *candidateResolver) Resolve(in ImportCandidate, createdBy string, record int) resolution {
	nationalID := strings.TrimSpace(in.NationalID)
	lastNames := strings.TrimSpace(in.LastNames)
	firstNames := strings.TrimSpace(in.FirstNames)
	program := strings.TrimSpace(in.ProgramOfApplication)
	specialty := strings.TrimSpace(in.Specialty)
	email := strings.TrimSpace(in.InstitutionalEmail)

	if c, ok := r.index[nationalID]; ok {
		if c.LastNames == lastNames &&
			c.FirstNames == firstNames &&
			c.ProgramOfApplication == program &&
			c.Specialty == specialty &&
			c.InstitutionalEmail == email {
			return resolution{CandidateID: c.ID}
		}
		c.LastNames = lastNames
		c.FirstNames = firstNames
		c.ProgramOfApplication = program
		c.Specialty = specialty
		c.InstitutionalEmail = email
		return resolution{
			CandidateID: c.ID,
			Op:          &WriteOp{Kind: opUpdateCandidate, Candidate: c, Record: record},
		}
	}

	c := &model.Candidate{
		NationalID:           nationalID,
		LastNames:            lastNames,
		FirstNames:           firstNames,
		ProgramOfApplication: program,
		Specialty:            specialty,
		InstitutionalEmail:   email,
		CreatedBy:            createdBy,
	}
	c.ID = model.GenerateUUID()
	r.index[nationalID] = c
	return resolution{
		CandidateID: c.ID,
		Created:     true,
		Op:          &WriteOp{Kind: opCreateCandidate, Candidate: c, Record: record},
	}
}
