package models

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

type SubmitJobResponse struct {
	JobID      string      `json:"job_id"`
	Candidates []Candidate `json:"candidates"`
}

type ReviewResponse struct {
	Job            *JobPosting `json:"job"`
	Candidates     []Candidate `json:"candidates"`
	HasShortlisted bool        `json:"has_shortlisted"`
}

type ScheduleRequest struct {
	SelectedCandidates []string `json:"selected_candidates" form:"selected_candidates" validate:"required,min=1"`
	SlotStart          string   `json:"slot_start" form:"slot_start" validate:"required"`
	SlotEnd            string   `json:"slot_end" form:"slot_end" validate:"required"`
}

// Validate checks the schedule form before any calendar call is made.
func (r *ScheduleRequest) Validate() error {
	return validate.Struct(r)
}

type ScheduleResult struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	EventID     string    `json:"event_id,omitempty"`
	Scheduled   bool      `json:"scheduled"`
	Message     string    `json:"message"`
}

type ScheduleResponse struct {
	Slot    Slot             `json:"slot"`
	Results []ScheduleResult `json:"results"`
	Lines   []string         `json:"lines"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending under_review shortlisted selected rejected interview hired"`
}

func (r *UpdateStatusRequest) Validate() error {
	return validate.Struct(r)
}

type DashboardResponse struct {
	TotalJobs           int64 `json:"total_jobs"`
	PendingReviews      int64 `json:"pending_reviews"`
	ScheduledInterviews int64 `json:"scheduled_interviews"`
}

type SimilarCandidate struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Score       float32   `json:"score"`
	Snippet     string    `json:"snippet"`
}
