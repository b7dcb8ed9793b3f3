package model

// Alternative symbols accepted on answer sheets.
const ValidAlternatives = "ABCDE"

// swagger:model Question
type Question struct {
	BaseModel
	Subject                 string  `gorm:"size:100;not null;index" json:"subject"`
	Statement               string  `gorm:"type:text" json:"statement"`
	CorrectAlternative      string  `gorm:"size:1;not null" json:"correctAlternative"`
	PointValue              float64 `gorm:"type:decimal(6,2);not null" json:"pointValue"`
	CompetencyMetMessage    string  `gorm:"size:500" json:"competencyMetMessage"`
	CompetencyNotMetMessage string  `gorm:"size:500" json:"competencyNotMetMessage"`
}

func (Question) TableName() string {
	return "questions"
}
