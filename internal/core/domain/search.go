package domain

import "fmt"

// Query defaults.
const (
	// DefaultTopK is the number of chunks retrieved when none is requested.
	DefaultTopK = 3

	// DefaultTemperature is the sampling temperature used for answers.
	DefaultTemperature = 0.7

	// MaxTemperature is the largest accepted sampling temperature.
	MaxTemperature = 2.0

	// NoResultsAnswer is returned when retrieval finds nothing to answer from.
	NoResultsAnswer = "No relevant info found."
)

// SearchOptions configures a retrieval or question.
type SearchOptions struct {
	// TopK is the maximum number of chunks to retrieve.
	// Values <= 0 fall back to DefaultTopK.
	TopK int

	// Temperature is the LLM sampling temperature.
	Temperature float64
}

// DefaultSearchOptions returns the options used when a caller sets none.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{TopK: DefaultTopK, Temperature: DefaultTemperature}
}

// Normalise applies defaults and validates the options.
func (o SearchOptions) Normalise() (SearchOptions, error) {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.Temperature < 0 || o.Temperature > MaxTemperature {
		return o, fmt.Errorf("%w: temperature %.2f outside [0, %.1f]", ErrInvalidInput, o.Temperature, MaxTemperature)
	}
	return o, nil
}

// RankedChunk is a single retrieval hit.
type RankedChunk struct {
	// DocumentID is the owning document.
	DocumentID string `json:"doc_id"`

	// Title is the owning document's title.
	Title string `json:"title"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Score is the similarity in (0, 1]; higher is closer.
	Score float64 `json:"score"`
}

// Score converts a squared L2 distance into a similarity in (0, 1].
// The transform is strictly decreasing, so ordering by distance ascending
// is the same as ordering by score descending.
func Score(distance float32) float64 {
	if distance < 0 {
		distance = 0
	}
	return 1 / (1 + float64(distance))
}

// Answer is the result of a question answered from retrieved chunks.
type Answer struct {
	Question string
	Text     string
	Sources  []RankedChunk
}

// StreamEventType identifies the kind of a streamed answer event.
type StreamEventType string

// Stream event types.
const (
	// StreamEventSources carries the retrieved chunks. It is sent once, first.
	StreamEventSources StreamEventType = "sources"

	// StreamEventAnswer carries a fragment of answer text.
	StreamEventAnswer StreamEventType = "answer"
)

// StreamEvent is one element of a streamed answer.
type StreamEvent struct {
	Type StreamEventType

	// Sources is set for StreamEventSources.
	Sources []RankedChunk

	// Content is set for StreamEventAnswer.
	Content string
}
