// Package chain builds the eino LLM chains used by the assistant.
package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "heritage-archive-api/internal/domain/service"
	wfmodel "heritage-archive-api/internal/workflow/model"
	wfnode "heritage-archive-api/internal/workflow/node"
	workflowport "heritage-archive-api/internal/workflow/port"
	workflowprompt "heritage-archive-api/internal/workflow/prompt"
	"heritage-archive-api/pkg/logger"
)

var defaultPromptRegistry = workflowprompt.NewRegistry()

// IntentClassifyChain renders the classification prompt, calls the chat
// model with a structured output schema, and returns the raw message.
type IntentClassifyChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.IntentClassifyInput, *schema.Message]
	chainErr  error
}

func NewIntentClassifyChain(factory workflowport.ChatModelFactory) *IntentClassifyChain {
	return &IntentClassifyChain{factory: factory}
}

func (c *IntentClassifyChain) Invoke(ctx context.Context, in *wfmodel.IntentClassifyInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

type intentChainState struct {
	In       *wfmodel.IntentClassifyInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *IntentClassifyChain) getChain() (compose.Runnable[*wfmodel.IntentClassifyInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *IntentClassifyChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.IntentClassifyInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.IntentClassifyInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.IntentClassifyInput) (*intentChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &intentChainState{In: in}, nil
		}),
		compose.WithNodeName("intent_classify.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *intentChainState) (*intentChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptIntentClassifyV1)
			if err != nil {
				return nil, err
			}
			msgs, err := tpl.Format(ctx, map[string]any{
				"utterance": strings.TrimSpace(st.In.Utterance),
			})
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("intent_classify.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *intentChainState) (*intentChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			ctx = llmctx.WithWorkflowProvider(ctx, "intent_classify", strings.TrimSpace(st.In.Provider))
			chatModel, err := c.factory.Get(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildIntentModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"provider", strings.TrimSpace(st.In.Provider),
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildIntentModelOptions(st.In, false)...)
			}
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("intent_classify.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *intentChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("intent_classify.finalize"),
	)

	return chain.Compile(ctx)
}

func buildIntentModelOptions(in *wfmodel.IntentClassifyInput, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 4)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if strings.TrimSpace(in.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(in.Model)))
	}

	if enableSchema {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   "intent_classify",
					"strict": false,
					"schema": intentJSONSchema(),
				},
			},
		}))
	}

	return opts
}

func intentJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"intent"},
		"properties": map[string]any{
			"intent": map[string]any{
				"type": "string",
				"enum": []any{"HERITAGE_SEARCH", "GREETING", "UNRELATED", "UNCLEAR"},
			},
		},
	}
}
