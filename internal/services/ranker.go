package services

import (
	"fmt"
	"sort"
	"strings"

	"hrai/recruiter/internal/models"
)

const (
	skillMatchWeight   = 3
	keywordMatchWeight = 2
)

type CandidateRanker interface {
	// RankCandidates scores every candidate against the job description and
	// returns them sorted by score, highest first. Equal scores keep input order.
	RankCandidates(candidates []models.CandidateData, jobDescription string) ([]models.CandidateData, error)
}

type candidateRanker struct {
	tagger NounTagger
}

func NewCandidateRanker(tagger NounTagger) CandidateRanker {
	return &candidateRanker{tagger: tagger}
}

func (r *candidateRanker) RankCandidates(candidates []models.CandidateData, jobDescription string) ([]models.CandidateData, error) {
	keywords, err := KeywordSet(r.tagger, jobDescription)
	if err != nil {
		return nil, fmt.Errorf("failed to extract job keywords: %w", err)
	}
	jobKeywords := toSet(keywords)

	ranked := make([]models.CandidateData, len(candidates))
	for i, c := range candidates {
		c.Score = ScoreCandidate(c, jobKeywords)
		ranked[i] = c
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked, nil
}

// ScoreCandidate computes 3*|skills ∩ J| + 2*|keywords ∩ J| + experience years.
func ScoreCandidate(c models.CandidateData, jobKeywords map[string]struct{}) int {
	skills := make([]string, len(c.Skills))
	for i, s := range c.Skills {
		skills[i] = strings.ToLower(s)
	}

	score := skillMatchWeight*intersectionSize(toSet(skills), jobKeywords) +
		keywordMatchWeight*intersectionSize(toSet(c.Keywords), jobKeywords)

	if c.ExperienceYears != nil {
		score += *c.ExperienceYears
	}

	return score
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}

	n := 0
	for v := range a {
		if _, ok := b[v]; ok {
			n++
		}
	}
	return n
}
