package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage-archive-api/internal/application/assistant"
)

func TestToAssistantSearchResponse(t *testing.T) {
	t.Run("results outcome", func(t *testing.T) {
		outcome := &assistant.SearchOutcome{
			Type: assistant.OutcomeResults,
			Results: []assistant.ResultItem{
				{ID: "a", Title: "Batik sarong", Similarity: 0.9},
				{ID: "b", Title: "Batik stamp", Similarity: 0.5},
			},
			Utterance: "show me batik",
			Queries:   []string{"first try", "winning query"},
		}

		resp := ToAssistantSearchResponse(outcome)

		assert.Equal(t, "results", resp.ResponseType)
		assert.Len(t, resp.Archives, 2)
		assert.Equal(t, 2, resp.Total)
		assert.Equal(t, "show me batik", resp.Query, "query must echo the utterance, not generated queries")
		assert.Nil(t, resp.Message)
	})

	t.Run("message outcome", func(t *testing.T) {
		outcome := &assistant.SearchOutcome{
			Type:      assistant.OutcomeMessage,
			Message:   assistant.MessageExhausted,
			Utterance: "something obscure",
			Queries:   []string{"one", "two", "three"},
		}

		resp := ToAssistantSearchResponse(outcome)

		assert.Equal(t, "message", resp.ResponseType)
		require.NotNil(t, resp.Message)
		assert.Equal(t, assistant.MessageExhausted, *resp.Message)
		assert.NotNil(t, resp.Archives)
		assert.Empty(t, resp.Archives)
		assert.Zero(t, resp.Total)
		assert.Equal(t, "something obscure", resp.Query)
	})
}

// Every contract field is present on the wire for both response shapes.
func TestAssistantSearchResponseWireFields(t *testing.T) {
	t.Run("message outcome marshals all fields", func(t *testing.T) {
		resp := ToAssistantSearchResponse(&assistant.SearchOutcome{
			Type:      assistant.OutcomeMessage,
			Message:   assistant.MessageGreeting,
			Utterance: "hello",
		})

		raw, err := json.Marshal(resp)
		require.NoError(t, err)

		var fields map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &fields))
		for _, key := range []string{"response_type", "archives", "total", "query", "message"} {
			assert.Contains(t, fields, key)
		}
		assert.JSONEq(t, `[]`, string(fields["archives"]))
		assert.JSONEq(t, `0`, string(fields["total"]))
		assert.JSONEq(t, `"hello"`, string(fields["query"]))
	})

	t.Run("results outcome marshals message as null", func(t *testing.T) {
		resp := ToAssistantSearchResponse(&assistant.SearchOutcome{
			Type:      assistant.OutcomeResults,
			Results:   []assistant.ResultItem{{ID: "a", Title: "Batik sarong", Similarity: 0.9}},
			Utterance: "batik",
		})

		raw, err := json.Marshal(resp)
		require.NoError(t, err)

		var fields map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &fields))
		assert.JSONEq(t, `null`, string(fields["message"]))
		assert.JSONEq(t, `1`, string(fields["total"]))
	})
}
