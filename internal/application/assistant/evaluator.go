package assistant

// Verdict is the evaluator's judgment of one attempt.
type Verdict string

const (
	VerdictGoodEnough    Verdict = "GOOD_ENOUGH"
	VerdictEmpty         Verdict = "EMPTY"
	VerdictLowSimilarity Verdict = "LOW_SIMILARITY"
)

// Evaluator is the deterministic relevance policy. An attempt is good enough
// iff it returned at least one item whose similarity meets the threshold.
// The threshold here is deliberately stricter than the retrieval threshold:
// retrieval trades toward recall, evaluation toward precision.
type Evaluator struct {
	Threshold float64
}

// NewEvaluator creates an evaluator, falling back to the default threshold.
func NewEvaluator(threshold float64) Evaluator {
	if threshold <= 0 {
		threshold = defaultEvaluationThreshold
	}
	return Evaluator{Threshold: threshold}
}

// Evaluate judges one attempt's result set.
func (e Evaluator) Evaluate(items []ResultItem) Verdict {
	if len(items) == 0 {
		return VerdictEmpty
	}
	if TopSimilarity(items) >= e.Threshold {
		return VerdictGoodEnough
	}
	return VerdictLowSimilarity
}

// FailureReasonFor maps a non-passing verdict to refinement guidance.
func FailureReasonFor(v Verdict) FailureReason {
	if v == VerdictEmpty {
		return FailureEmpty
	}
	return FailureLowSimilarity
}
