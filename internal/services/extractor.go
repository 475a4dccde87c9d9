package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"hrai/recruiter/internal/logger"
	"hrai/recruiter/internal/models"
)

const unknownName = "Unknown"

// DefaultSkillVocabulary is matched case-insensitively against resume text.
var DefaultSkillVocabulary = []string{"python", "django", "ml", "java", "sql", "react", "javascript", "html", "css"}

var (
	emailPattern      = regexp.MustCompile(`\S+@\S+`)
	experiencePattern = regexp.MustCompile(`(\d+)\s+years?`)
)

type ResumeExtractor interface {
	// ExtractFile reads a resume from the local filesystem and extracts it.
	ExtractFile(path string) (*models.ExtractedProfile, error)
	// Extract derives a profile from resume bytes. Unsupported or broken
	// documents produce an empty, unparseable profile rather than an error.
	Extract(name string, data []byte) *models.ExtractedProfile
}

type resumeExtractor struct {
	parser     DocumentParser
	tagger     NounTagger
	vocabulary []string
	log        *zap.Logger
}

func NewResumeExtractor(parser DocumentParser, tagger NounTagger, vocabulary []string, log *zap.Logger) ResumeExtractor {
	if len(vocabulary) == 0 {
		vocabulary = DefaultSkillVocabulary
	}

	return &resumeExtractor{
		parser:     parser,
		tagger:     tagger,
		vocabulary: vocabulary,
		log:        logger.OrNop(log),
	}
}

func (e *resumeExtractor) ExtractFile(path string) (*models.ExtractedProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume: %w", err)
	}

	return e.Extract(filepath.Base(path), data), nil
}

func (e *resumeExtractor) Extract(name string, data []byte) *models.ExtractedProfile {
	text, format, err := e.parser.ExtractText(name, data)
	unparseable := err != nil
	if err != nil {
		e.log.Warn("resume text extraction failed",
			zap.String("file", name),
			zap.Error(err),
		)
		text = ""
	}

	profile := e.ExtractFromText(text)
	profile.Format = format
	profile.Unparseable = unparseable

	return profile
}

// ExtractFromText runs the field heuristics over already extracted text.
func (e *resumeExtractor) ExtractFromText(text string) *models.ExtractedProfile {
	lower := strings.ToLower(text)

	profile := &models.ExtractedProfile{
		Name:            firstLine(text),
		Email:           emailPattern.FindString(text),
		Skills:          matchSkills(lower, e.vocabulary),
		ExperienceYears: experienceYears(lower),
		RawText:         text,
	}

	keywords, err := KeywordSet(e.tagger, text)
	if err != nil {
		e.log.Warn("keyword tagging failed", zap.Error(err))
	}
	profile.Keywords = keywords

	return profile
}

func firstLine(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return unknownName
	}

	line, _, _ := strings.Cut(trimmed, "\n")
	return strings.TrimSpace(line)
}

func matchSkills(lowerText string, vocabulary []string) []string {
	skills := []string{}
	for _, skill := range vocabulary {
		if strings.Contains(lowerText, strings.ToLower(skill)) {
			skills = append(skills, skill)
		}
	}
	return skills
}

func experienceYears(lowerText string) *int {
	match := experiencePattern.FindStringSubmatch(lowerText)
	if match == nil {
		return nil
	}

	years, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	return &years
}
