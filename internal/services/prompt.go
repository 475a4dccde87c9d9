package services

import (
	"fmt"
	"strings"

	"hrai/recruiter/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildCandidateSummaryPrompt creates the prompt for a candidate summary
func (pb *PromptBuilder) BuildCandidateSummaryPrompt(candidate models.CandidateData, jobDescription string) string {
	return fmt.Sprintf(`Create a concise summary for a candidate applying for the following job:
Job Description:
%s

Candidate Details:
Name: %s
Email: %s
Skills: %s
Experience: %s

Highlight the most relevant skills and experience for this job.`,
		jobDescription,
		candidate.Name,
		candidate.Email,
		strings.Join(candidate.Skills, ", "),
		candidate.Experience(),
	)
}
