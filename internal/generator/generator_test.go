package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Theomnitron/SummaRead/internal/summarizer/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeading(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
		want    string
		wantErr bool
	}{
		{"plain", "Deep Sea Exploration", nil, "Deep Sea Exploration", false},
		{"quoted with punctuation", `  "Climate Policy in Europe"; `, nil, "Climate Policy in Europe", false},
		{"only punctuation", `"..."`, nil, FailureHeading, true},
		{"remote failure", "", errors.New("timeout"), FailureHeading, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &providers.StubCompleter{Content: tt.content, ReturnError: tt.err}
			g := NewHeadlineGenerator(chat, nil)

			got, err := g.Heading(context.Background(), "Some document text.")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)

			reqs := chat.Requests()
			require.Len(t, reqs, 1)
			assert.True(t, strings.HasPrefix(reqs[0].Prompt, headingPrompt))
			assert.True(t, strings.HasSuffix(reqs[0].Prompt, "Some document text."))
			assert.Equal(t, headingMaxTokens, reqs[0].MaxTokens)
			assert.Equal(t, headingStop, reqs[0].Stop)
		})
	}
}

func TestKeyFactsFiltersEchoes(t *testing.T) {
	chat := &providers.StubCompleter{Content: "Key discoveries include: the report covers many things. " +
		"Whales communicate with songs that travel thousands of kilometres through water. " +
		"Read the following text and generate 4 interesting or important facts, insights, or discoveries, each between 11 to 15 words long. " +
		"Deep ocean trenches remain less mapped than the surface of Mars today. " +
		"Bioluminescent organisms make up most of the animal life in the deep sea."}
	g := NewKeyFactGenerator(chat, nil)

	facts, err := g.KeyFacts(context.Background(), "document", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Whales communicate with songs that travel thousands of kilometres through water.",
		"Deep ocean trenches remain less mapped than the surface of Mars today.",
		"Bioluminescent organisms make up most of the animal life in the deep sea.",
	}, facts)

	req := chat.Requests()[0]
	assert.Equal(t, 4*tokensPerFact, req.MaxTokens)
	assert.Equal(t, keyFactsStop, req.Stop)
	assert.Contains(t, req.Prompt, "generate 4 interesting")
	assert.True(t, strings.HasSuffix(req.Prompt, "\n\nText: document"))
}

func TestKeyFactsTruncatesAndStripsListMarkers(t *testing.T) {
	chat := &providers.StubCompleter{Content: "1. First fact here.\n2. Second fact here.\n- Third fact here.\n* Fourth fact here."}
	g := NewKeyFactGenerator(chat, nil)

	facts, err := g.KeyFacts(context.Background(), "doc", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"First fact here.", "Second fact here.", "Third fact here."}, facts)
}

func TestKeyFactsFailureIsEmpty(t *testing.T) {
	g := NewKeyFactGenerator(&providers.StubCompleter{ReturnError: errors.New("503")}, nil)

	facts, err := g.KeyFacts(context.Background(), "doc", 5)
	assert.Error(t, err)
	assert.NotNil(t, facts)
	assert.Empty(t, facts)
}

func TestLeadWords(t *testing.T) {
	assert.Equal(t, "summarize this", leadWords("Summarize this: now\nsecond line"))
	assert.Equal(t, "no colon here", leadWords("  No colon here  \nmore"))
}
