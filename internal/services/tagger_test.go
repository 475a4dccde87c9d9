package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProseTagger_Nouns(t *testing.T) {
	tagger, err := NewProseTagger()
	require.NoError(t, err)

	nouns, err := tagger.Nouns("The engineer wrote a parser.")
	require.NoError(t, err)
	assert.Contains(t, nouns, "engineer")
	assert.Contains(t, nouns, "parser")
	assert.NotContains(t, nouns, "wrote")

	model := tagger.(*proseTagger).model
	require.NotNil(t, model)

	again, err := tagger.Nouns("The engineer wrote a parser.")
	require.NoError(t, err)
	assert.Equal(t, nouns, again)
	assert.Same(t, model, tagger.(*proseTagger).model, "the loaded model is reused")
}

func TestProseTagger_BlankText(t *testing.T) {
	tagger, err := NewProseTagger()
	require.NoError(t, err)

	nouns, err := tagger.Nouns("  \n ")
	require.NoError(t, err)
	assert.Empty(t, nouns)
}

func TestKeywordSet_ProseTagger(t *testing.T) {
	tagger, err := NewProseTagger()
	require.NoError(t, err)

	keywords, err := KeywordSet(tagger, "We need a backend Engineer with database experience. Engineer wanted")
	require.NoError(t, err)

	assert.Contains(t, keywords, "engineer")
	assert.NotContains(t, keywords, "with")
	assert.NotContains(t, keywords, "Engineer", "text is lowercased before tagging")

	count := 0
	for _, k := range keywords {
		if k == "engineer" {
			count++
		}
	}
	assert.Equal(t, 1, count, "keywords are de-duplicated")
}
