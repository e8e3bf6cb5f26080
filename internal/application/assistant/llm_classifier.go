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
	"heritage-archive-api/pkg/logger"
)

// intentEnvelope parses the classification chain's JSON output.
type intentEnvelope struct {
	Intent string `json:"intent"`
}

// LLMIntentClassifier classifies utterances with a chat model. Garbage or
// unparseable output degrades to UNCLEAR instead of failing the turn.
type LLMIntentClassifier struct {
	chain    *workflowchain.IntentClassifyChain
	provider string
	model    string
}

// NewLLMIntentClassifier builds the classifier on top of the chat model factory.
func NewLLMIntentClassifier(factory workflowport.ChatModelFactory, provider, model string) *LLMIntentClassifier {
	return &LLMIntentClassifier{
		chain:    workflowchain.NewIntentClassifyChain(factory),
		provider: provider,
		model:    model,
	}
}

// Classify implements IntentClassifier.
func (c *LLMIntentClassifier) Classify(ctx context.Context, utterance string) (Intent, error) {
	if c == nil || c.chain == nil {
		return "", fmt.Errorf("intent classifier not configured")
	}

	outMsg, err := c.chain.Invoke(ctx, &wfmodel.IntentClassifyInput{
		Utterance: utterance,
		Provider:  c.provider,
		Model:     c.model,
	})
	if err != nil {
		return "", err
	}
	if outMsg == nil {
		return "", fmt.Errorf("empty llm response")
	}

	raw := wfnode.ExtractJSONObject(outMsg.Content)
	var env intentEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		logger.Warn(ctx, "unparseable intent classification output", "raw", raw)
		return IntentUnclear, nil
	}

	intent := Intent(strings.ToUpper(strings.TrimSpace(env.Intent)))
	if !ValidIntent(intent) {
		logger.Warn(ctx, "intent outside taxonomy", "intent", env.Intent)
		return IntentUnclear, nil
	}
	return intent, nil
}
