package model

// swagger:model Candidate
type Candidate struct {
	UUIDBase
	NationalID           string `gorm:"size:10;uniqueIndex;not null" json:"nationalId"`
	LastNames            string `gorm:"size:200;not null" json:"lastNames"`
	FirstNames           string `gorm:"size:200;not null" json:"firstNames"`
	ProgramOfApplication string `gorm:"size:200;not null" json:"programOfApplication"`
	Specialty            string `gorm:"size:200" json:"specialty"`
	InstitutionalEmail   string `gorm:"size:200" json:"institutionalEmail"`
	CreatedBy            string `gorm:"size:100" json:"createdBy"`
}

func (Candidate) TableName() string {
	return "candidates"
}
