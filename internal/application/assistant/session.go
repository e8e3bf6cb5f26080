package assistant

import (
	"time"

	"github.com/google/uuid"
)

// SearchSession is the per-turn state of the refinement loop. A session is
// created when a turn starts and discarded when it ends; it is never shared
// between goroutines.
type SearchSession struct {
	ID             string
	Utterance      string
	Intent         Intent
	AttemptCount   int
	QueriesTried   []string
	BestResults    []ResultItem
	BestSimilarity float64
	StartedAt      time.Time
}

// NewSearchSession starts a session for one user turn.
func NewSearchSession(utterance string) *SearchSession {
	return &SearchSession{
		ID:        uuid.NewString(),
		Utterance: utterance,
		StartedAt: time.Now(),
	}
}

// HasTried reports whether query was already issued this turn.
func (s *SearchSession) HasTried(query string) bool {
	for _, q := range s.QueriesTried {
		if q == query {
			return true
		}
	}
	return false
}

// RecordAttempt appends query to the history and consumes one attempt.
// The caller guarantees novelty via HasTried.
func (s *SearchSession) RecordAttempt(query string) {
	s.QueriesTried = append(s.QueriesTried, query)
	s.AttemptCount++
}

// Observe updates the best result set. The stored set is replaced only when
// the new set's top similarity strictly exceeds the stored best, so a later
// worse attempt never degrades it.
func (s *SearchSession) Observe(items []ResultItem) {
	top := TopSimilarity(items)
	if len(s.BestResults) == 0 && len(items) > 0 {
		s.BestResults = items
		s.BestSimilarity = top
		return
	}
	if top > s.BestSimilarity {
		s.BestResults = items
		s.BestSimilarity = top
	}
}

// TopSimilarity returns the highest similarity in items, 0 when empty.
func TopSimilarity(items []ResultItem) float64 {
	var top float64
	for _, it := range items {
		if it.Similarity > top {
			top = it.Similarity
		}
	}
	return top
}
