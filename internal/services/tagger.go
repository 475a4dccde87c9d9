package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
)

// NounTagger returns the common and proper nouns of a text, in order of appearance.
type NounTagger interface {
	Nouns(text string) ([]string, error)
}

type proseTagger struct {
	model *prose.Model
}

// NewProseTagger loads the prose averaged-perceptron POS model once and
// returns a NounTagger that reuses it for every call.
func NewProseTagger() (NounTagger, error) {
	doc, err := prose.NewDocument("",
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load tagging model: %w", err)
	}

	return &proseTagger{model: doc.Model}, nil
}

// Nouns implements NounTagger. NN, NNS, NNP and NNPS tokens are kept.
func (t *proseTagger) Nouns(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text,
		prose.UsingModel(t.model),
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to tag text: %w", err)
	}

	var nouns []string
	for _, tok := range doc.Tokens() {
		if strings.HasPrefix(tok.Tag, "NN") {
			nouns = append(nouns, tok.Text)
		}
	}

	return nouns, nil
}

// KeywordSet tags the lowercased text and keeps nouns longer than two characters,
// de-duplicated in order of first appearance.
func KeywordSet(tagger NounTagger, text string) ([]string, error) {
	nouns, err := tagger.Nouns(strings.ToLower(text))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(nouns))
	keywords := make([]string, 0, len(nouns))
	for _, noun := range nouns {
		if utf8.RuneCountInString(noun) <= 2 {
			continue
		}
		if _, ok := seen[noun]; ok {
			continue
		}
		seen[noun] = struct{}{}
		keywords = append(keywords, noun)
	}

	return keywords, nil
}
