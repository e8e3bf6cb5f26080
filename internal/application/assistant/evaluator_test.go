package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	e := NewEvaluator(0.4)

	t.Run("empty set", func(t *testing.T) {
		assert.Equal(t, VerdictEmpty, e.Evaluate(nil))
		assert.Equal(t, VerdictEmpty, e.Evaluate([]ResultItem{}))
	})

	t.Run("top similarity at threshold passes", func(t *testing.T) {
		items := []ResultItem{item("a", 0.2), item("b", 0.4)}
		assert.Equal(t, VerdictGoodEnough, e.Evaluate(items))
	})

	t.Run("top similarity above threshold passes", func(t *testing.T) {
		assert.Equal(t, VerdictGoodEnough, e.Evaluate([]ResultItem{item("a", 0.95)}))
	})

	t.Run("all below threshold fails", func(t *testing.T) {
		items := []ResultItem{item("a", 0.39), item("b", 0.1)}
		assert.Equal(t, VerdictLowSimilarity, e.Evaluate(items))
	})

	t.Run("one passing item is enough", func(t *testing.T) {
		items := []ResultItem{item("a", 0.05), item("b", 0.41), item("c", 0.1)}
		assert.Equal(t, VerdictGoodEnough, e.Evaluate(items))
	})
}

func TestNewEvaluatorDefaultThreshold(t *testing.T) {
	assert.Equal(t, defaultEvaluationThreshold, NewEvaluator(0).Threshold)
	assert.Equal(t, defaultEvaluationThreshold, NewEvaluator(-1).Threshold)
	assert.Equal(t, 0.6, NewEvaluator(0.6).Threshold)
}

func TestFailureReasonFor(t *testing.T) {
	assert.Equal(t, FailureEmpty, FailureReasonFor(VerdictEmpty))
	assert.Equal(t, FailureLowSimilarity, FailureReasonFor(VerdictLowSimilarity))
}
