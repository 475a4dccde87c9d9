package models

import (
	"fmt"

	"github.com/google/uuid"
)

// ExtractedProfile is derived from a resume on demand and never persisted.
type ExtractedProfile struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Skills          []string `json:"skills"`
	ExperienceYears *int     `json:"experience_years,omitempty"`
	Keywords        []string `json:"keywords"`
	RawText         string   `json:"-"`
	Format          string   `json:"format"`
	Unparseable     bool     `json:"unparseable"`
}

// Experience renders the experience as "<n> years", or "" when none was found.
func (p *ExtractedProfile) Experience() string {
	return formatExperience(p.ExperienceYears)
}

// CandidateData is the record the ranker and summary generator work on.
type CandidateData struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Skills          []string  `json:"skills"`
	Keywords        []string  `json:"keywords"`
	ExperienceYears *int      `json:"experience_years,omitempty"`
	Score           int       `json:"score"`
}

func NewCandidateData(id uuid.UUID, profile *ExtractedProfile) CandidateData {
	return CandidateData{
		ID:              id,
		Name:            profile.Name,
		Email:           profile.Email,
		Skills:          profile.Skills,
		Keywords:        profile.Keywords,
		ExperienceYears: profile.ExperienceYears,
	}
}

func (c *CandidateData) Experience() string {
	return formatExperience(c.ExperienceYears)
}

func formatExperience(years *int) string {
	if years == nil {
		return ""
	}
	return fmt.Sprintf("%d years", *years)
}

// Slot is an interview window in local ISO-8601 date-time form.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
