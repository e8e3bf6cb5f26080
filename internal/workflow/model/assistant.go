// Package model defines workflow input and output types.
package model

import "time"

// IntentClassifyInput drives the intent classification chain.
type IntentClassifyInput struct {
	Utterance   string
	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int
}

// SearchQueryInput drives the search query generation chain. FailureReason
// and LastQuery carry refinement guidance from the previous attempt; both
// are empty on the first attempt.
type SearchQueryInput struct {
	Utterance     string
	PriorQueries  []string
	FailureReason string
	LastQuery     string
	Provider      string
	Model         string
	Temperature   *float32
	MaxTokens     *int
}

// LLMUsageMeta records token usage of one model call.
type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Temperature      float64
	GeneratedAt      time.Time
}
