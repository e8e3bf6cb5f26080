package assistant

import (
	"context"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"heritage-archive-api/pkg/errors"
	"heritage-archive-api/pkg/logger"
	"heritage-archive-api/pkg/metrics"
)

var tracer = otel.Tracer("assistant")

// Controller drives one search turn through its states: classify the
// utterance, then alternate search and evaluation until the results are good
// enough or the attempt budget runs out. All steps run sequentially; the
// controller itself is stateless and safe for concurrent turns.
type Controller struct {
	classifier IntentClassifier
	generator  QueryGenerator
	searcher   Searcher
	evaluator  Evaluator
	opts       Options
}

// NewController wires the loop collaborators.
func NewController(classifier IntentClassifier, generator QueryGenerator, searcher Searcher, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		classifier: classifier,
		generator:  generator,
		searcher:   searcher,
		evaluator:  NewEvaluator(opts.EvaluationThreshold),
		opts:       opts,
	}
}

// Search runs one turn and returns its terminal outcome.
func (c *Controller) Search(ctx context.Context, utterance string) (*SearchOutcome, error) {
	return c.SearchWithEvents(ctx, utterance, nil)
}

// SearchWithEvents runs one turn, reporting loop progress to emit. Events
// are emitted in order and end with exactly one terminal message or results
// event. A transport failure produces an error instead of a terminal event.
func (c *Controller) SearchWithEvents(ctx context.Context, utterance string, emit EventSink) (*SearchOutcome, error) {
	ctx, span := tracer.Start(ctx, "assistant.Search")
	defer span.End()

	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, ErrEmptyUtterance
	}
	if c.searcher == nil {
		return nil, ErrNotConfigured
	}

	session := NewSearchSession(utterance)
	ctx = logger.WithContext(ctx, logger.SessionIDKey, session.ID)
	start := time.Now()

	intent := c.classify(ctx, utterance)
	session.Intent = intent
	span.SetAttributes(attribute.String("assistant.intent", string(intent)))
	c.send(emit, Event{Type: EventIntentClassified, Intent: intent})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !intent.NeedsSearch() {
		outcome := c.messageOutcome(session, MessageForIntent(intent))
		c.send(emit, Event{Type: EventMessage, Message: outcome.Message})
		c.record(session, outcome, start)
		return outcome, nil
	}

	var failure *FailureContext
	for session.AttemptCount < c.opts.MaxAttempts {
		query := c.nextQuery(ctx, session, failure)
		if query == "" {
			// No novel query can be produced; the turn is exhausted early.
			logger.Warn(ctx, "query generation exhausted", "queries_tried", session.QueriesTried)
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		session.RecordAttempt(query)
		c.send(emit, Event{Type: EventSearchAttempt, Attempt: session.AttemptCount, Query: query})

		items, err := c.search(ctx, query)
		if err != nil {
			c.recordError(session, start)
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items = c.sanitize(ctx, items)
		session.Observe(items)

		verdict := c.evaluator.Evaluate(items)
		logger.Info(ctx, "search attempt evaluated",
			"attempt", session.AttemptCount,
			"query", query,
			"results", len(items),
			"top_similarity", TopSimilarity(items),
			"verdict", string(verdict),
		)

		if verdict == VerdictGoodEnough {
			outcome := c.resultsOutcome(session, items)
			c.send(emit, Event{Type: EventResults, Results: outcome.Results})
			c.record(session, outcome, start)
			return outcome, nil
		}

		failure = &FailureContext{Reason: FailureReasonFor(verdict), LastQuery: query}
	}

	// Exhaustion always yields the canned message. Below-threshold best
	// results are tracked for observability but never returned.
	outcome := c.messageOutcome(session, MessageExhausted)
	c.send(emit, Event{Type: EventMessage, Message: outcome.Message})
	c.record(session, outcome, start)
	return outcome, nil
}

// classify resolves the intent, falling back to UNCLEAR when the classifier
// fails or returns something outside the taxonomy.
func (c *Controller) classify(ctx context.Context, utterance string) Intent {
	if c.classifier == nil {
		return IntentUnclear
	}
	callCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	defer cancel()

	intent, err := c.classifier.Classify(callCtx, utterance)
	if err != nil {
		logger.Warn(ctx, "intent classification failed, defaulting to unclear", "error", err.Error())
		return IntentUnclear
	}
	if !ValidIntent(intent) {
		logger.Warn(ctx, "intent classification returned unknown intent", "intent", string(intent))
		return IntentUnclear
	}
	return intent
}

// nextQuery produces a query guaranteed novel within the session. Generator
// failures fall back to a deterministic query so a flaky model never aborts
// the turn. Returns "" when no novel query exists.
func (c *Controller) nextQuery(ctx context.Context, session *SearchSession, failure *FailureContext) string {
	var query string
	if c.generator != nil {
		callCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
		q, err := c.generator.Generate(callCtx, GenerateInput{
			Utterance:    session.Utterance,
			PriorQueries: append([]string(nil), session.QueriesTried...),
			Failure:      failure,
		})
		cancel()
		if err != nil {
			logger.Warn(ctx, "query generation failed, using fallback", "error", err.Error())
		} else {
			query = strings.TrimSpace(q)
		}
	}

	if query == "" {
		if len(session.QueriesTried) == 0 {
			query = session.Utterance
		} else {
			query = session.QueriesTried[len(session.QueriesTried)-1]
		}
	}

	if session.HasTried(query) {
		perturbed := PerturbQuery(query, session.QueriesTried)
		if perturbed != "" {
			logger.Debug(ctx, "duplicate query perturbed", "original", query, "perturbed", perturbed)
		}
		return perturbed
	}
	return query
}

// search invokes the similarity search primitive. Errors are surfaced as a
// backend transport failure and end the turn without further attempts.
func (c *Controller) search(ctx context.Context, query string) ([]ResultItem, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	defer cancel()

	items, err := c.searcher.Search(callCtx, query, c.opts.RetrievalThreshold, c.opts.ResultCap)
	if err != nil {
		logger.Error(ctx, "similarity search failed", err, "query", query)
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.CodeSearchUnavailable {
			return nil, appErr
		}
		return nil, errors.Wrap(err, errors.CodeSearchUnavailable, "similarity search failed")
	}
	return items, nil
}

// sanitize validates an upstream batch. A batch containing malformed items
// is treated as empty for evaluation purposes and logged as a data quality
// defect.
func (c *Controller) sanitize(ctx context.Context, items []ResultItem) []ResultItem {
	for _, it := range items {
		if it.ID == "" || it.Title == "" ||
			math.IsNaN(it.Similarity) || it.Similarity < 0 || it.Similarity > 1 {
			logger.Warn(ctx, "malformed search result batch discarded",
				"result_id", it.ID,
				"similarity", it.Similarity,
				"batch_size", len(items),
			)
			return nil
		}
	}
	return items
}

func (c *Controller) resultsOutcome(session *SearchSession, items []ResultItem) *SearchOutcome {
	return &SearchOutcome{
		Type:      OutcomeResults,
		Results:   items,
		Intent:    session.Intent,
		Utterance: session.Utterance,
		Attempts:  session.AttemptCount,
		Queries:   session.QueriesTried,
	}
}

func (c *Controller) messageOutcome(session *SearchSession, message string) *SearchOutcome {
	return &SearchOutcome{
		Type:      OutcomeMessage,
		Message:   message,
		Intent:    session.Intent,
		Utterance: session.Utterance,
		Attempts:  session.AttemptCount,
		Queries:   session.QueriesTried,
	}
}

func (c *Controller) send(emit EventSink, ev Event) {
	if emit != nil {
		emit(ev)
	}
}

func (c *Controller) record(session *SearchSession, outcome *SearchOutcome, start time.Time) {
	label := string(outcome.Type)
	metrics.AssistantSearchTotal.WithLabelValues(string(session.Intent), label).Inc()
	metrics.AssistantSearchDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if session.Intent.NeedsSearch() {
		metrics.AssistantSearchAttempts.WithLabelValues(label).Observe(float64(session.AttemptCount))
		metrics.AssistantBestSimilarity.WithLabelValues(label).Observe(session.BestSimilarity)
	}
}

func (c *Controller) recordError(session *SearchSession, start time.Time) {
	metrics.AssistantSearchTotal.WithLabelValues(string(session.Intent), "error").Inc()
	metrics.AssistantSearchDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
}
