package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	workflowchain "heritage-archive-api/internal/workflow/chain"
	wfmodel "heritage-archive-api/internal/workflow/model"
	wfnode "heritage-archive-api/internal/workflow/node"
	workflowport "heritage-archive-api/internal/workflow/port"
)

// queryEnvelope parses the query generation chain's JSON output.
type queryEnvelope struct {
	Query string `json:"query"`
}

// LLMQueryGenerator produces search queries with a chat model. The novelty
// postcondition is enforced by the controller, not here; this adapter only
// translates the loop's failure context into prompt variables.
type LLMQueryGenerator struct {
	chain    *workflowchain.SearchQueryChain
	provider string
	model    string
}

// NewLLMQueryGenerator builds the generator on top of the chat model factory.
func NewLLMQueryGenerator(factory workflowport.ChatModelFactory, provider, model string) *LLMQueryGenerator {
	return &LLMQueryGenerator{
		chain:    workflowchain.NewSearchQueryChain(factory),
		provider: provider,
		model:    model,
	}
}

// Generate implements QueryGenerator.
func (g *LLMQueryGenerator) Generate(ctx context.Context, in GenerateInput) (string, error) {
	if g == nil || g.chain == nil {
		return "", fmt.Errorf("query generator not configured")
	}

	input := &wfmodel.SearchQueryInput{
		Utterance:    in.Utterance,
		PriorQueries: in.PriorQueries,
		Provider:     g.provider,
		Model:        g.model,
	}
	if in.Failure != nil {
		input.FailureReason = string(in.Failure.Reason)
		input.LastQuery = in.Failure.LastQuery
	}

	outMsg, err := g.chain.Invoke(ctx, input)
	if err != nil {
		return "", err
	}
	if outMsg == nil {
		return "", fmt.Errorf("empty llm response")
	}

	raw := wfnode.ExtractJSONObject(outMsg.Content)
	var env queryEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return "", fmt.Errorf("invalid query generation output: %w", err)
	}

	query := strings.TrimSpace(env.Query)
	if query == "" {
		return "", fmt.Errorf("empty query generation output")
	}
	return query, nil
}
