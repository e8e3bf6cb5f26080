package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionAttemptHistory(t *testing.T) {
	s := NewSearchSession("batik")
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.HasTried("batik"))

	s.RecordAttempt("batik")
	assert.True(t, s.HasTried("batik"))
	assert.False(t, s.HasTried("batik heritage"))
	assert.Equal(t, 1, s.AttemptCount)

	s.RecordAttempt("batik heritage")
	assert.Equal(t, 2, s.AttemptCount)
	assert.Equal(t, []string{"batik", "batik heritage"}, s.QueriesTried)
}

func TestSessionObserveKeepsBestSet(t *testing.T) {
	s := NewSearchSession("batik")

	s.Observe([]ResultItem{item("a", 0.3)})
	assert.Equal(t, 0.3, s.BestSimilarity)
	assert.Equal(t, "a", s.BestResults[0].ID)

	// A worse attempt never degrades the stored best.
	s.Observe([]ResultItem{item("b", 0.2)})
	assert.Equal(t, 0.3, s.BestSimilarity)
	assert.Equal(t, "a", s.BestResults[0].ID)

	// An equal attempt does not replace it either.
	s.Observe([]ResultItem{item("c", 0.3)})
	assert.Equal(t, "a", s.BestResults[0].ID)

	s.Observe([]ResultItem{item("d", 0.5)})
	assert.Equal(t, 0.5, s.BestSimilarity)
	assert.Equal(t, "d", s.BestResults[0].ID)

	// Empty observations are ignored.
	s.Observe(nil)
	assert.Equal(t, 0.5, s.BestSimilarity)
}

func TestTopSimilarity(t *testing.T) {
	assert.Equal(t, 0.0, TopSimilarity(nil))
	assert.Equal(t, 0.9, TopSimilarity([]ResultItem{item("a", 0.3), item("b", 0.9), item("c", 0.5)}))
}

func TestMessageForIntent(t *testing.T) {
	assert.Equal(t, MessageGreeting, MessageForIntent(IntentGreeting))
	assert.Equal(t, MessageUnrelated, MessageForIntent(IntentUnrelated))
	assert.Equal(t, MessageUnclear, MessageForIntent(IntentUnclear))
	assert.Equal(t, MessageUnclear, MessageForIntent(Intent("SOMETHING_ELSE")))
}
