package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/generator"
	"github.com/Theomnitron/SummaRead/internal/summarizer"
	"github.com/Theomnitron/SummaRead/internal/summarizer/providers"
	"github.com/Theomnitron/SummaRead/internal/telemetry"
	"github.com/Theomnitron/SummaRead/internal/tokenizer"
	"github.com/Theomnitron/SummaRead/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEmbedder returns (1, y) for each sentence, with y looked up by the
// sentence's leading label.
type mockEmbedder struct {
	ys          map[string]float32
	ReturnError bool
	Malformed   bool
}

func (m *mockEmbedder) Initialize() error { return nil }

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if m.ReturnError {
		return nil, errortypes.RemoteCallError(errors.New("503"), "embedding request failed")
	}
	if m.Malformed {
		return [][]float32{{1, 0}}, nil
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		label := strings.Join(strings.Fields(t)[:2], " ")
		out[i] = []float32{1, m.ys[label]}
	}
	return out, nil
}

// document builds n sentences of 25 words labelled "Sentence i".
func document(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "Sentence %d%s.", i, strings.Repeat(" filler", 23))
	}
	return b.String()
}

// centralYs puts sentences 5, 12 and 2 nearest the centroid (1, 0), in
// that order. The y values sum to zero so the centroid is exact.
func centralYs() map[string]float32 {
	ys := map[string]float32{
		"Sentence 5":  0,
		"Sentence 12": 2,
		"Sentence 2":  -3,
		"Sentence 0":  10,
		"Sentence 1":  -29,
		"Sentence 19": 20,
	}
	paired := []int{3, 4, 6, 7, 8, 9, 10, 11, 13, 14, 15, 16, 17, 18}
	for i := 0; i < len(paired); i += 2 {
		mag := float32(11 + i/2)
		ys[fmt.Sprintf("Sentence %d", paired[i])] = mag
		ys[fmt.Sprintf("Sentence %d", paired[i+1])] = -mag
	}
	return ys
}

const keyFactsReply = "Key discoveries include: this document has many sentences. " +
	"Filler words can pad a sentence to exactly twenty five words. " +
	"Labelled sentences make extractive ranking easy to verify in tests. " +
	"Centroid similarity favours sentences closest to the average direction. " +
	"Stable sorting keeps document order when similarity scores tie."

func newChat() *providers.StubCompleter {
	return &providers.StubCompleter{Respond: func(req providers.ChatRequest) (string, error) {
		if strings.HasPrefix(req.Prompt, "In 2 - 10 word") {
			return "Sentence Ranking Test Document", nil
		}
		return keyFactsReply, nil
	}}
}

func newOrchestrator(embedder vector.Embedder, chat providers.Completer, model providers.Summarizer) *Orchestrator {
	return NewOrchestrator(Components{
		Heading: generator.NewHeadlineGenerator(chat, nil),
		Body:    summarizer.NewAbstractive(model, tokenizer.NewWhitespace()),
		Ranker:  vector.NewRanker(embedder, nil),
		Facts:   generator.NewKeyFactGenerator(chat, nil),
	}, 4, telemetry.NewMetricsCollector(), nil)
}

func bodyModel() *providers.StubSummarizer {
	return &providers.StubSummarizer{Respond: func(string, providers.SummarizationParams) (string, error) {
		return "A concise body summary.", nil
	}}
}

func TestPointCounts(t *testing.T) {
	tests := []struct {
		words    int
		main     int
		keyFacts int
	}{
		{399, 5, 5},
		{400, 3, 4},
		{1200, 3, 4},
		{1201, 5, 5},
		{2000, 5, 5},
		{5000, 5, 5},
	}
	for _, tt := range tests {
		m, k := PointCounts(tt.words)
		assert.Equal(t, tt.main, m, "main points for %d words", tt.words)
		assert.Equal(t, tt.keyFacts, k, "key discoveries for %d words", tt.words)
	}
}

func TestSummarizeDocument(t *testing.T) {
	embedder := &mockEmbedder{ys: centralYs()}
	o := newOrchestrator(embedder, newChat(), bodyModel())

	raw := document(20)
	require.Equal(t, 500, len(strings.Fields(raw)))

	result, err := o.SummarizeDocument(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "Sentence Ranking Test Document", result.Heading)
	assert.Equal(t, "A concise body summary.", result.BodySummary)

	require.Len(t, result.Outline.MainPoints, 3)
	for i, label := range []string{"Sentence 5 ", "Sentence 12 ", "Sentence 2 "} {
		assert.True(t, strings.HasPrefix(result.Outline.MainPoints[i], label),
			"main point %d: expected %q, got %q", i, label, result.Outline.MainPoints[i])
	}

	// The echoed framing sentence is dropped; four facts remain.
	assert.Len(t, result.Outline.KeyDiscoveries, 4)
	for _, fact := range result.Outline.KeyDiscoveries {
		assert.False(t, strings.HasPrefix(strings.ToLower(fact), "key discoveries include"), "echo kept: %q", fact)
	}
	assert.Equal(t, "Filler words can pad a sentence to exactly twenty five words.", result.Outline.KeyDiscoveries[0])
}

func TestSummarizeDocumentEmbeddingFailure(t *testing.T) {
	for name, embedder := range map[string]*mockEmbedder{
		"error":     {ReturnError: true},
		"malformed": {Malformed: true},
	} {
		t.Run(name, func(t *testing.T) {
			o := newOrchestrator(embedder, newChat(), bodyModel())

			result, err := o.SummarizeDocument(context.Background(), document(20))
			require.NoError(t, err)

			assert.Equal(t, []string{FailureEmbeddings}, result.Outline.MainPoints)
			assert.Equal(t, "Sentence Ranking Test Document", result.Heading)
			assert.Equal(t, "A concise body summary.", result.BodySummary)
			assert.Len(t, result.Outline.KeyDiscoveries, 4)
			assert.Equal(t, int64(1), o.metrics.GetCounter(telemetry.MetricRankingFailures))
		})
	}
}

func TestSummarizeDocumentDegradedFields(t *testing.T) {
	chat := &providers.StubCompleter{ReturnError: errors.New("chat down")}
	model := &providers.StubSummarizer{Respond: func(string, providers.SummarizationParams) (string, error) {
		return "", errortypes.RemoteCallError(errors.New("503"), "summarization request failed")
	}}
	o := newOrchestrator(&mockEmbedder{ys: centralYs()}, chat, model)

	result, err := o.SummarizeDocument(context.Background(), document(20))
	require.NoError(t, err)

	assert.Equal(t, generator.FailureHeading, result.Heading)
	assert.Equal(t, summarizer.FailureRequest, result.BodySummary)
	assert.NotNil(t, result.Outline.KeyDiscoveries)
	assert.Empty(t, result.Outline.KeyDiscoveries)
	assert.Len(t, result.Outline.MainPoints, 3)
}

func TestSummarizeDocumentTaskLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	track := func() func() {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return func() { inFlight.Add(-1) }
	}

	chat := newChat()
	respond := chat.Respond
	chat.Respond = func(req providers.ChatRequest) (string, error) {
		defer track()()
		return respond(req)
	}
	model := &providers.StubSummarizer{Respond: func(string, providers.SummarizationParams) (string, error) {
		defer track()()
		return "", errortypes.RemoteCallError(errors.New("503"), "summarization request failed")
	}}

	o := NewOrchestrator(Components{
		Heading: generator.NewHeadlineGenerator(chat, nil),
		Body:    summarizer.NewAbstractive(model, tokenizer.NewWhitespace()),
		Ranker:  vector.NewRanker(&mockEmbedder{ys: centralYs()}, nil),
		Facts:   generator.NewKeyFactGenerator(chat, nil),
	}, 1, telemetry.NewMetricsCollector(), nil)

	result, err := o.SummarizeDocument(context.Background(), document(20))
	require.NoError(t, err)

	assert.Equal(t, int32(1), peak.Load(), "tasks should run one at a time")
	assert.Equal(t, "Sentence Ranking Test Document", result.Heading)
	assert.Equal(t, summarizer.FailureRequest, result.BodySummary, "a failed task should not stop the others")
	assert.Len(t, result.Outline.MainPoints, 3)
	assert.Len(t, result.Outline.KeyDiscoveries, 4)
}

func TestSummarizeDocumentEmptyInput(t *testing.T) {
	o := newOrchestrator(&mockEmbedder{}, newChat(), bodyModel())

	for _, raw := range []string{"", "   \n\n\t", "™ © ®"} {
		result, err := o.SummarizeDocument(context.Background(), raw)
		assert.Nil(t, result)
		assert.True(t, errortypes.IsInputError(err), "input %q: expected input error, got %v", raw, err)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
}

func TestSummarizeCleanedNoSentences(t *testing.T) {
	o := newOrchestrator(&mockEmbedder{}, newChat(), bodyModel())

	result, err := o.SummarizeCleaned(context.Background(), "some text", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{FailureNoSentences}, result.Outline.MainPoints)
}

func TestSummaryResultClone(t *testing.T) {
	r := &SummaryResult{Heading: "h", Outline: Outline{MainPoints: []string{"a"}, KeyDiscoveries: []string{"b"}}}
	c := r.Clone()
	c.Outline.MainPoints[0] = "changed"
	assert.Equal(t, "a", r.Outline.MainPoints[0])
	assert.Nil(t, (*SummaryResult)(nil).Clone())
}
