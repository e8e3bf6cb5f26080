// Package assistant implements the relevance-driven search refinement loop
// behind the conversational archive search endpoints.
package assistant

import (
	"context"
	"time"
)

// Intent classifies what a user turn is asking for.
type Intent string

const (
	IntentHeritageSearch Intent = "HERITAGE_SEARCH"
	IntentUnclear        Intent = "UNCLEAR"
	IntentUnrelated      Intent = "UNRELATED"
	IntentGreeting       Intent = "GREETING"
)

// ValidIntent reports whether i is a known intent.
func ValidIntent(i Intent) bool {
	switch i {
	case IntentHeritageSearch, IntentUnclear, IntentUnrelated, IntentGreeting:
		return true
	}
	return false
}

// NeedsSearch reports whether the intent enters the search loop.
func (i Intent) NeedsSearch() bool {
	return i == IntentHeritageSearch
}

// ResultItem is one retrieved archive with its similarity score in [0, 1].
type ResultItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	MediaTypes  []string  `json:"media_types"`
	Tags        []string  `json:"tags"`
	Dates       []string  `json:"dates"`
	FileURIs    []string  `json:"file_uris"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Similarity  float64   `json:"similarity"`
}

// FailureReason explains why the previous attempt was rejected.
type FailureReason string

const (
	FailureEmpty         FailureReason = "EMPTY"
	FailureLowSimilarity FailureReason = "LOW_SIMILARITY"
)

// FailureContext carries refinement guidance into query generation.
// EMPTY asks for a broader query, LOW_SIMILARITY for a narrower one.
type FailureContext struct {
	Reason    FailureReason
	LastQuery string
}

// GenerateInput is the query generation contract.
type GenerateInput struct {
	Utterance    string
	PriorQueries []string
	Failure      *FailureContext
}

// IntentClassifier decides what a user turn is asking for.
type IntentClassifier interface {
	Classify(ctx context.Context, utterance string) (Intent, error)
}

// QueryGenerator produces a single search query from the utterance and
// accumulated failure context.
type QueryGenerator interface {
	Generate(ctx context.Context, in GenerateInput) (string, error)
}

// Searcher is the similarity search primitive. An error return means the
// backend was unreachable; it is surfaced as a transport failure, never
// retried within the turn.
type Searcher interface {
	Search(ctx context.Context, query string, threshold float64, limit int) ([]ResultItem, error)
}

// OutcomeType tags the two mutually exclusive response shapes.
type OutcomeType string

const (
	OutcomeResults OutcomeType = "results"
	OutcomeMessage OutcomeType = "message"
)

// SearchOutcome is the terminal result of one turn. Exactly one of Results
// or Message is populated. Utterance echoes the user's original input.
type SearchOutcome struct {
	Type      OutcomeType
	Results   []ResultItem
	Message   string
	Intent    Intent
	Utterance string
	Attempts  int
	Queries   []string
}

// EventType identifies a streamed loop event.
type EventType string

const (
	EventIntentClassified EventType = "intent_classified"
	EventSearchAttempt    EventType = "search_attempt"
	EventMessage          EventType = "message"
	EventResults          EventType = "results"
)

// Event is one observable step of the loop. Events within a turn are
// ordered; exactly one terminal event (message or results) is emitted.
type Event struct {
	Type    EventType    `json:"type"`
	Intent  Intent       `json:"intent,omitempty"`
	Attempt int          `json:"attempt,omitempty"`
	Query   string       `json:"query,omitempty"`
	Message string       `json:"message,omitempty"`
	Results []ResultItem `json:"results,omitempty"`
}

// EventSink receives loop events. May be nil.
type EventSink func(Event)

// Options are the loop knobs. Zero values fall back to defaults.
type Options struct {
	MaxAttempts         int
	EvaluationThreshold float64
	RetrievalThreshold  float64
	ResultCap           int
	CallTimeout         time.Duration
}

const (
	defaultMaxAttempts         = 3
	defaultEvaluationThreshold = 0.4
	defaultRetrievalThreshold  = 0.3
	defaultResultCap           = 10
	defaultCallTimeout         = 30 * time.Second
)

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.EvaluationThreshold <= 0 {
		o.EvaluationThreshold = defaultEvaluationThreshold
	}
	if o.RetrievalThreshold <= 0 {
		o.RetrievalThreshold = defaultRetrievalThreshold
	}
	if o.ResultCap <= 0 {
		o.ResultCap = defaultResultCap
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = defaultCallTimeout
	}
	return o
}
