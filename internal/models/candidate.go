package models

import (
	"time"

	"github.com/google/uuid"
)

type CandidateStatus string

const (
	StatusPending     CandidateStatus = "pending"
	StatusUnderReview CandidateStatus = "under_review"
	StatusShortlisted CandidateStatus = "shortlisted"
	StatusSelected    CandidateStatus = "selected"
	StatusRejected    CandidateStatus = "rejected"
	StatusInterview   CandidateStatus = "interview"
	StatusHired       CandidateStatus = "hired"
)

var statusLabels = map[CandidateStatus]string{
	StatusPending:     "Pending Review",
	StatusUnderReview: "Under Review",
	StatusShortlisted: "Shortlisted",
	StatusSelected:    "Selected",
	StatusRejected:    "Rejected",
	StatusInterview:   "Interview Scheduled",
	StatusHired:       "Hired",
}

var statusTransitions = map[CandidateStatus][]CandidateStatus{
	StatusPending:     {StatusUnderReview, StatusShortlisted, StatusRejected},
	StatusUnderReview: {StatusShortlisted, StatusRejected, StatusPending},
	StatusShortlisted: {StatusShortlisted, StatusRejected, StatusInterview, StatusSelected},
	StatusRejected:    {StatusShortlisted, StatusRejected, StatusUnderReview},
	StatusInterview:   {StatusSelected, StatusRejected, StatusHired, StatusInterview},
	StatusSelected:    {StatusHired, StatusRejected, StatusInterview},
	StatusHired:       {},
}

// Valid reports whether s is one of the known statuses.
func (s CandidateStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human readable name of the status.
func (s CandidateStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// CanTransitionTo reports whether a candidate in status s may move to next.
func (s CandidateStatus) CanTransitionTo(next CandidateStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Reviewable reports whether the ranking step may (re)assign the status.
func (s CandidateStatus) Reviewable() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusShortlisted, StatusRejected:
		return true
	}
	return false
}

type Candidate struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"job_id"`
	ResumeRef        string          `gorm:"type:text;not null" json:"resume_ref"`
	OriginalFilename string          `gorm:"type:text" json:"original_filename"`
	Name             string          `gorm:"type:varchar(100)" json:"name"`
	Email            *string         `gorm:"type:text" json:"email,omitempty"`
	Score            *float64        `gorm:"type:double precision" json:"score,omitempty"`
	Summary          *string         `gorm:"type:text" json:"summary,omitempty"`
	Status           CandidateStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	InterviewEventID *string         `gorm:"type:text" json:"interview_event_id,omitempty"`
	InterviewStart   *string         `gorm:"type:text" json:"interview_start,omitempty"`
	InterviewEnd     *string         `gorm:"type:text" json:"interview_end,omitempty"`
	Indexed          bool            `gorm:"not null;default:false" json:"indexed"`
	CreatedAt        time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// EmailAddress returns the stored email or an empty string.
func (c *Candidate) EmailAddress() string {
	if c.Email == nil {
		return ""
	}
	return *c.Email
}
