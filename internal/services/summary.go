package services

import (
	"context"
	"fmt"
	"strings"

	"hrai/recruiter/internal/models"
)

type SummaryGenerator interface {
	GenerateSummary(ctx context.Context, candidate models.CandidateData, jobDescription string) (string, error)
}

type summaryGenerator struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
}

func NewSummaryGenerator(gemini GeminiService) SummaryGenerator {
	return &summaryGenerator{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
	}
}

// GenerateSummary asks the model once and returns its trimmed answer.
// Errors from the model are returned unchanged in meaning; nothing is retried.
func (s *summaryGenerator) GenerateSummary(ctx context.Context, candidate models.CandidateData, jobDescription string) (string, error) {
	prompt := s.promptBuilder.BuildCandidateSummaryPrompt(candidate, jobDescription)

	text, err := s.gemini.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary for %s: %w", candidate.ID, err)
	}

	return strings.TrimSpace(text), nil
}
