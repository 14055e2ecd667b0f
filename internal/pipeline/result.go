// Package pipeline turns a raw document into its three-part summary.
package pipeline

// Outline is the extractive and generated list part of a summary.
type Outline struct {
	MainPoints     []string `json:"main_points"`
	KeyDiscoveries []string `json:"key_discoveries"`
}

// SummaryResult is the finished summary of one document. Individual
// fields may hold failure texts; the value is only built once every field
// is known.
type SummaryResult struct {
	Heading     string  `json:"heading"`
	BodySummary string  `json:"body_summary"`
	Outline     Outline `json:"outline"`
}

// Clone returns a deep copy so cached and stored results never share slices.
func (r *SummaryResult) Clone() *SummaryResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Outline.MainPoints = cloneStrings(r.Outline.MainPoints)
	c.Outline.KeyDiscoveries = cloneStrings(r.Outline.KeyDiscoveries)
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Main point placeholders used when ranking fails.
const (
	FailureNoSentences = "Error: No sentences found for main points."
	FailureEmbeddings  = "Error: Failed to get embeddings for main points."
)

// PointCounts returns how many main points and key discoveries a document
// of wordCount words gets: 400-1200 words → (3, 4), anything else → (5, 5).
func PointCounts(wordCount int) (mainPoints, keyDiscoveries int) {
	if wordCount >= 400 && wordCount <= 1200 {
		return 3, 4
	}
	return 5, 5
}
