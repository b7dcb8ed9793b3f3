package repository

import (
	"exam_admin_backend/internal/model"

	"gorm.io/gorm"
)

type CandidateRepository struct {
	DB *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{DB: db}
}

func (r *CandidateRepository) Create(c *model.Candidate) error {
	return r.DB.Create(c).Error
}

func (r *CandidateRepository) FindByID(id string) (*model.Candidate, error) {
	var c model.Candidate
	err := r.DB.Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *CandidateRepository) FindByNationalID(nationalID string) (*model.Candidate, error) {
	var c model.Candidate
	err := r.DB.Where("national_id = ?", nationalID).First(&c).Error
	return &c, err
}

// FindByNationalIDs fetches candidates for one lookup sub-group. Callers chunk
// the id set to the store's IN-cardinality limit before calling.
func (r *CandidateRepository) FindByNationalIDs(nationalIDs []string) ([]model.Candidate, error) {
	var cs []model.Candidate
	err := r.DB.Where("national_id IN ?", nationalIDs).Find(&cs).Error
	return cs, err
}

func (r *CandidateRepository) List(page, limit int, search string) ([]model.Candidate, int64, error) {
	var cs []model.Candidate
	var total int64
	query := r.DB.Model(&model.Candidate{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("national_id LIKE ? OR last_names LIKE ? OR first_names LIKE ?", like, like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("last_names asc, first_names asc").Offset(offset).Limit(limit).Find(&cs).Error
	return cs, total, err
}

func (r *CandidateRepository) Update(c *model.Candidate) error {
	return r.DB.Save(c).Error
}

func (r *CandidateRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Candidate{}).Error
}
