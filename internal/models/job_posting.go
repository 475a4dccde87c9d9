package models

import (
	"time"

	"github.com/google/uuid"
)

type JobPosting struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Description string    `gorm:"type:text;not null" json:"job_description"`
	CreatedAt   time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`

	Candidates []Candidate `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"candidates,omitempty"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}
