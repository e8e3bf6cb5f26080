package assistant

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "heritage-archive-api/pkg/errors"
)

type fakeClassifier struct {
	intent Intent
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, utterance string) (Intent, error) {
	f.calls++
	return f.intent, f.err
}

type fakeGenerator struct {
	queries []string
	err     error
	calls   int
	inputs  []GenerateInput
}

func (f *fakeGenerator) Generate(ctx context.Context, in GenerateInput) (string, error) {
	f.inputs = append(f.inputs, in)
	defer func() { f.calls++ }()
	if f.err != nil {
		return "", f.err
	}
	if f.calls < len(f.queries) {
		return f.queries[f.calls], nil
	}
	return f.queries[len(f.queries)-1], nil
}

type fakeSearcher struct {
	batches [][]ResultItem
	err     error
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, threshold float64, limit int) ([]ResultItem, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	idx := len(f.queries) - 1
	if idx < len(f.batches) {
		return f.batches[idx], nil
	}
	return nil, nil
}

func item(id string, similarity float64) ResultItem {
	return ResultItem{ID: id, Title: "Archive " + id, Similarity: similarity}
}

func newTestController(classifier IntentClassifier, generator QueryGenerator, searcher Searcher) *Controller {
	return NewController(classifier, generator, searcher, Options{})
}

func TestSearchRejectsEmptyUtterance(t *testing.T) {
	c := newTestController(&fakeClassifier{intent: IntentHeritageSearch}, &fakeGenerator{queries: []string{"q"}}, &fakeSearcher{})

	_, err := c.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyUtterance)
}

func TestSearchRequiresSearcher(t *testing.T) {
	c := newTestController(&fakeClassifier{intent: IntentHeritageSearch}, &fakeGenerator{queries: []string{"q"}}, nil)

	_, err := c.Search(context.Background(), "batik")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNonSearchIntentsSkipTheLoop(t *testing.T) {
	tests := []struct {
		name    string
		intent  Intent
		message string
	}{
		{"greeting", IntentGreeting, MessageGreeting},
		{"unrelated", IntentUnrelated, MessageUnrelated},
		{"unclear", IntentUnclear, MessageUnclear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{}
			generator := &fakeGenerator{queries: []string{"q"}}
			c := newTestController(&fakeClassifier{intent: tt.intent}, generator, searcher)

			outcome, err := c.Search(context.Background(), "hello")
			require.NoError(t, err)

			assert.Equal(t, OutcomeMessage, outcome.Type)
			assert.Equal(t, tt.message, outcome.Message)
			assert.Equal(t, tt.intent, outcome.Intent)
			assert.Equal(t, "hello", outcome.Utterance)
			assert.Zero(t, outcome.Attempts)
			assert.Empty(t, outcome.Results)
			assert.Empty(t, searcher.queries, "search must not run for non-search intents")
			assert.Zero(t, generator.calls, "query generation must not run for non-search intents")
		})
	}
}

func TestClassifierFailureDefaultsToUnclear(t *testing.T) {
	searcher := &fakeSearcher{}
	c := newTestController(&fakeClassifier{err: errors.New("model down")}, &fakeGenerator{queries: []string{"q"}}, searcher)

	outcome, err := c.Search(context.Background(), "find batik textiles")
	require.NoError(t, err)

	assert.Equal(t, IntentUnclear, outcome.Intent)
	assert.Equal(t, MessageUnclear, outcome.Message)
	assert.Empty(t, searcher.queries)
}

func TestUnknownIntentDefaultsToUnclear(t *testing.T) {
	c := newTestController(&fakeClassifier{intent: Intent("SHOPPING")}, &fakeGenerator{queries: []string{"q"}}, &fakeSearcher{})

	outcome, err := c.Search(context.Background(), "find batik textiles")
	require.NoError(t, err)

	assert.Equal(t, IntentUnclear, outcome.Intent)
	assert.Equal(t, MessageUnclear, outcome.Message)
}

func TestNilClassifierDefaultsToUnclear(t *testing.T) {
	c := newTestController(nil, &fakeGenerator{queries: []string{"q"}}, &fakeSearcher{})

	outcome, err := c.Search(context.Background(), "find batik textiles")
	require.NoError(t, err)
	assert.Equal(t, IntentUnclear, outcome.Intent)
}

func TestFirstGoodAttemptReturnsResults(t *testing.T) {
	results := []ResultItem{item("a", 0.92), item("b", 0.55)}
	searcher := &fakeSearcher{batches: [][]ResultItem{results}}
	c := newTestController(
		&fakeClassifier{intent: IntentHeritageSearch},
		&fakeGenerator{queries: []string{"batik textiles java"}},
		searcher,
	)

	outcome, err := c.Search(context.Background(), "show me batik")
	require.NoError(t, err)

	assert.Equal(t, OutcomeResults, outcome.Type)
	assert.Equal(t, results, outcome.Results)
	assert.Empty(t, outcome.Message)
	assert.Equal(t, "show me batik", outcome.Utterance)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, []string{"batik textiles java"}, outcome.Queries)
	assert.Equal(t, []string{"batik textiles java"}, searcher.queries)
}

func TestLaterAttemptCanSucceed(t *testing.T) {
	searcher := &fakeSearcher{batches: [][]ResultItem{
		nil,
		{item("a", 0.3)},
		{item("b", 0.8)},
	}}
	generator := &fakeGenerator{queries: []string{"first", "second", "third"}}
	c := newTestController(&fakeClassifier{intent: IntentHeritageSearch}, generator, searcher)

	outcome, err := c.Search(context.Background(), "old ceremonial masks")
	require.NoError(t, err)

	assert.Equal(t, OutcomeResults, outcome.Type)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Equal(t, []string{"first", "second", "third"}, outcome.Queries)
	assert.Equal(t, "b", outcome.Results[0].ID)

	// Failure context flows into refinement: attempt 2 sees EMPTY, attempt 3
	// sees LOW_SIMILARITY.
	require.Len(t, generator.inputs, 3)
	assert.Nil(t, generator.inputs[0].Failure)
	require.NotNil(t, generator.inputs[1].Failure)
	assert.Equal(t, FailureEmpty, generator.inputs[1].Failure.Reason)
	assert.Equal(t, "first", generator.inputs[1].Failure.LastQuery)
	require.NotNil(t, generator.inputs[2].Failure)
	assert.Equal(t, FailureLowSimilarity, generator.inputs[2].Failure.Reason)
	assert.Equal(t, "second", generator.inputs[2].Failure.LastQuery)
}

func TestExhaustionReturnsCannedMessage(t *testing.T) {
	// Every attempt returns results just under the evaluation threshold. The
	// turn must end with the canned message, never with the best-effort set.
	searcher := &fakeSearcher{batches: [][]ResultItem{
		{item("a", 0.39)},
		{item("b", 0.35)},
		{item("c", 0.30)},
	}}
	c := newTestController(
		&fakeClassifier{intent: IntentHeritageSearch},
		&fakeGenerator{queries: []string{"one", "two", "three"}},
		searcher,
	)

	outcome, err := c.Search(context.Background(), "something obscure")
	require.NoError(t, err)

	assert.Equal(t, OutcomeMessage, outcome.Type)
	assert.Equal(t, MessageExhausted, outcome.Message)
	assert.Empty(t, outcome.Results)
	assert.Equal(t, 3, outcome.Attempts)

	require.Len(t, outcome.Queries, 3)
	seen := map[string]bool{}
	for _, q := range outcome.Queries {
		assert.False(t, seen[q], "query %q repeated within the turn", q)
		seen[q] = true
	}
}

func TestAttemptBudgetIsConfigurable(t *testing.T) {
	searcher := &fakeSearcher{}
	c := NewController(
		&fakeClassifier{intent: IntentHeritageSearch},
		&fakeGenerator{queries: []string{"one", "two", "three", "four", "five"}},
		searcher,
		Options{MaxAttempts: 5},
	)

	outcome, err := c.Search(context.Background(), "nothing matches this")
	require.NoError(t, err)

	assert.Equal(t, MessageExhausted, outcome.Message)
	assert.Equal(t, 5, outcome.Attempts)
	assert.Len(t, searcher.queries, 5)
}

func TestTransportFailureEndsTurnWithoutRetry(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("milvus: connection refused")}
	c := newTestController(
		&fakeClassifier{intent: IntentHeritageSearch},
		&fakeGenerator{queries: []string{"one", "two", "three"}},
		searcher,
	)

	outcome, err := c.Search(context.Background(), "batik")
	require.Error(t, err)
	assert.Nil(t, outcome)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeSearchUnavailable, appErr.Code)
	assert.Len(t, searcher.queries, 1, "transport failures must not be retried")
}

func TestSearcherAppErrorPassesThrough(t *testing.T) {
	backendErr := apperrors.New(apperrors.CodeSearchUnavailable, "vector backend unavailable")
	searcher := &fakeSearcher{err: backendErr}
	c := newTestController(&fakeClassifier{intent: IntentHeritageSearch}, &fakeGenerator{queries: []string{"q"}}, searcher)

	_, err := c.Search(context.Background(), "batik")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Same(t, backendErr, appErr)
}

func TestDuplicateQueriesArePerturbed(t *testing.T) {
	// A generator stuck on one output must not burn attempts on repeats.
	searcher := &fakeSearcher{}
	c := newTestController(
		&fakeClassifier{intent: IntentHeritageSearch},
		&fakeGenerator{queries: []string{"batik"}},
		searcher,
	)

	outcome, err := c.Search(context.Background(), "batik")
	require.NoError(t, err)

	assert.Equal(t, MessageExhausted, outcome.Message)
	assert.Equal(t, []string{"batik", "batik heritage", "batik traditional"}, outcome.Queries)
}

func TestGeneratorFailureFallsBackToUtterance(t *testing.T) {
	searcher := &fakeSearcher{batches: [][]ResultItem{{item("a", 0.9)}}}
	generator := &fakeGenerator{err: errors.New("llm timeout"), queries: []string{""}}
	c := newTestController(&fakeClassifier{intent: IntentHeritageSearch}, generator, searcher)

	outcome, err := c.Search(context.Background(), "wayang puppets")
	require.NoError(t, err)

	assert.Equal(t, OutcomeResults, outcome.Type)
	assert.Equal(t, []string{"wayang puppets"}, outcome.Queries)
}

func TestNilGeneratorStillSearches(t *testing.T) {
	searcher := &fakeSearcher{}
	c := newTestController(&fakeClassifier{intent: IntentHeritageSearch}, nil, searcher)

	outcome, err := c.Search(context.Background(), "gamelan instruments")
	require.NoError(t, err)

	assert.Equal(t, MessageExhausted, outcome.Message)
	assert.Equal(t, "gamelan instruments", outcome.Queries[0])
	assert.Len(t, outcome.Queries, 3)
}

func TestMalformedBatchTreatedAsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		batch []ResultItem
	}{
		{"missing id", []ResultItem{{Title: "x", Similarity: 0.9}}},
		{"missing title", []ResultItem{{ID: "a", Similarity: 0.9}}},
		{"similarity above one", []ResultItem{item("a", 1.5)}},
		{"negative similarity", []ResultItem{item("a", -0.1)}},
		{"one bad item poisons the batch", []ResultItem{item("a", 0.95), item("", 0.9)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{batches: [][]ResultItem{tt.batch}}
			c := NewController(
				&fakeClassifier{intent: IntentHeritageSearch},
				&fakeGenerator{queries: []string{"q"}},
				searcher,
				Options{MaxAttempts: 1},
			)

			outcome, err := c.Search(context.Background(), "batik")
			require.NoError(t, err)

			assert.Equal(t, OutcomeMessage, outcome.Type)
			assert.Equal(t, MessageExhausted, outcome.Message)
		})
	}
}

func TestCancelledContextAbortsTurn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestController(&fakeClassifier{intent: IntentHeritageSearch}, &fakeGenerator{queries: []string{"q"}}, &fakeSearcher{})

	_, err := c.Search(ctx, "batik")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutcomeShapesAreExclusive(t *testing.T) {
	t.Run("results outcome has no message", func(t *testing.T) {
		searcher := &fakeSearcher{batches: [][]ResultItem{{item("a", 0.9)}}}
		c := newTestController(&fakeClassifier{intent: IntentHeritageSearch}, &fakeGenerator{queries: []string{"q"}}, searcher)

		outcome, err := c.Search(context.Background(), "batik")
		require.NoError(t, err)
		assert.NotEmpty(t, outcome.Results)
		assert.Empty(t, outcome.Message)
	})

	t.Run("message outcome has no results", func(t *testing.T) {
		c := newTestController(&fakeClassifier{intent: IntentHeritageSearch}, &fakeGenerator{queries: []string{"q"}}, &fakeSearcher{})

		outcome, err := c.Search(context.Background(), "batik")
		require.NoError(t, err)
		assert.Empty(t, outcome.Results)
		assert.NotEmpty(t, outcome.Message)
	})
}

func TestEventsEndWithExactlyOneTerminal(t *testing.T) {
	t.Run("message turn", func(t *testing.T) {
		c := newTestController(&fakeClassifier{intent: IntentGreeting}, &fakeGenerator{queries: []string{"q"}}, &fakeSearcher{})

		var events []Event
		_, err := c.SearchWithEvents(context.Background(), "hello", func(ev Event) {
			events = append(events, ev)
		})
		require.NoError(t, err)

		require.Len(t, events, 2)
		assert.Equal(t, EventIntentClassified, events[0].Type)
		assert.Equal(t, IntentGreeting, events[0].Intent)
		assert.Equal(t, EventMessage, events[1].Type)
		assert.Equal(t, MessageGreeting, events[1].Message)
	})

	t.Run("results turn", func(t *testing.T) {
		searcher := &fakeSearcher{batches: [][]ResultItem{nil, {item("a", 0.9)}}}
		c := newTestController(
			&fakeClassifier{intent: IntentHeritageSearch},
			&fakeGenerator{queries: []string{"one", "two"}},
			searcher,
		)

		var events []Event
		_, err := c.SearchWithEvents(context.Background(), "batik", func(ev Event) {
			events = append(events, ev)
		})
		require.NoError(t, err)

		require.Len(t, events, 4)
		assert.Equal(t, EventIntentClassified, events[0].Type)
		assert.Equal(t, EventSearchAttempt, events[1].Type)
		assert.Equal(t, 1, events[1].Attempt)
		assert.Equal(t, "one", events[1].Query)
		assert.Equal(t, EventSearchAttempt, events[2].Type)
		assert.Equal(t, 2, events[2].Attempt)
		assert.Equal(t, EventResults, events[3].Type)
		assert.Len(t, events[3].Results, 1)

		terminals := 0
		for _, ev := range events {
			if ev.Type == EventMessage || ev.Type == EventResults {
				terminals++
			}
		}
		assert.Equal(t, 1, terminals)
	})

	t.Run("transport failure emits no terminal", func(t *testing.T) {
		searcher := &fakeSearcher{err: fmt.Errorf("backend down")}
		c := newTestController(&fakeClassifier{intent: IntentHeritageSearch}, &fakeGenerator{queries: []string{"q"}}, searcher)

		var events []Event
		_, err := c.SearchWithEvents(context.Background(), "batik", func(ev Event) {
			events = append(events, ev)
		})
		require.Error(t, err)

		for _, ev := range events {
			assert.NotEqual(t, EventMessage, ev.Type)
			assert.NotEqual(t, EventResults, ev.Type)
		}
	})
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()

	assert.Equal(t, 3, opts.MaxAttempts)
	assert.Equal(t, 0.4, opts.EvaluationThreshold)
	assert.Equal(t, 0.3, opts.RetrievalThreshold)
	assert.Equal(t, 10, opts.ResultCap)
	assert.Equal(t, defaultCallTimeout, opts.CallTimeout)
}
