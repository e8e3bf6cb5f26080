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

// SearchQueryChain renders the query generation prompt with the turn's
// failure context and returns the raw model message.
type SearchQueryChain struct {
	factory workflowport.ChatModelFactory

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.SearchQueryInput, *schema.Message]
	chainErr  error
}

func NewSearchQueryChain(factory workflowport.ChatModelFactory) *SearchQueryChain {
	return &SearchQueryChain{factory: factory}
}

func (c *SearchQueryChain) Invoke(ctx context.Context, in *wfmodel.SearchQueryInput) (*schema.Message, error) {
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

type searchQueryChainState struct {
	In       *wfmodel.SearchQueryInput
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *SearchQueryChain) getChain() (compose.Runnable[*wfmodel.SearchQueryInput, *schema.Message], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *SearchQueryChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.SearchQueryInput, *schema.Message], error) {
	chain := compose.NewChain[*wfmodel.SearchQueryInput, *schema.Message]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *wfmodel.SearchQueryInput) (*searchQueryChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &searchQueryChainState{In: in}, nil
		}),
		compose.WithNodeName("search_query.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *searchQueryChainState) (*searchQueryChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := formatSearchQueryMessages(ctx, st.In)
			if err != nil {
				return nil, err
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("search_query.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *searchQueryChainState) (*searchQueryChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			if c.factory == nil {
				return nil, fmt.Errorf("llm factory not configured")
			}

			ctx = llmctx.WithWorkflowProvider(ctx, "search_query_generate", strings.TrimSpace(st.In.Provider))
			chatModel, err := c.factory.Get(ctx, strings.TrimSpace(st.In.Provider))
			if err != nil {
				return nil, err
			}

			outMsg, err := chatModel.Generate(ctx, st.Messages, buildSearchQueryModelOptions(st.In, true)...)
			if err != nil && wfnode.IsResponseFormatUnsupportedError(err) {
				logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
					"provider", strings.TrimSpace(st.In.Provider),
					"model", strings.TrimSpace(st.In.Model),
					"error", err.Error(),
				)
				outMsg, err = chatModel.Generate(ctx, st.Messages, buildSearchQueryModelOptions(st.In, false)...)
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
		compose.WithNodeName("search_query.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *searchQueryChainState) (*schema.Message, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			return st.OutMsg, nil
		}),
		compose.WithNodeName("search_query.finalize"),
	)

	return chain.Compile(ctx)
}

func formatSearchQueryMessages(ctx context.Context, in *wfmodel.SearchQueryInput) ([]*schema.Message, error) {
	tpl, err := defaultPromptRegistry.ChatTemplate(workflowprompt.PromptSearchQueryV1)
	if err != nil {
		return nil, err
	}

	prior := "(none)"
	if len(in.PriorQueries) > 0 {
		prior = "- " + strings.Join(in.PriorQueries, "\n- ")
	}

	failure := "(first attempt)"
	if strings.TrimSpace(in.FailureReason) != "" {
		failure = fmt.Sprintf("reason: %s\nlast query: %s",
			strings.TrimSpace(in.FailureReason), strings.TrimSpace(in.LastQuery))
	}

	vars := map[string]any{
		"utterance":     strings.TrimSpace(in.Utterance),
		"prior_queries": prior,
		"failure_block": failure,
	}
	return tpl.Format(ctx, vars)
}

func buildSearchQueryModelOptions(in *wfmodel.SearchQueryInput, enableSchema bool) []model.Option {
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
					"name":   "search_query",
					"strict": false,
					"schema": searchQueryJSONSchema(),
				},
			},
		}))
	}

	return opts
}

func searchQueryJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"query"},
		"properties": map[string]any{
			"query": map[string]any{"type": "string"},
		},
	}
}
