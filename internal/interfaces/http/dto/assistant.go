package dto

import (
	"heritage-archive-api/internal/application/assistant"
)

// AssistantSearchRequest is one conversational search turn.
type AssistantSearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// AssistantSearchResponse is the terminal result of a search turn. All fields
// are always present on the wire: archives is empty and message null on
// results-less turns and vice versa, tagged by ResponseType. Query echoes the
// user's original input, not the generated search queries.
type AssistantSearchResponse struct {
	ResponseType string                 `json:"response_type"`
	Archives     []assistant.ResultItem `json:"archives"`
	Total        int                    `json:"total"`
	Query        string                 `json:"query"`
	Message      *string                `json:"message"`
}

// ToAssistantSearchResponse maps a loop outcome onto the wire shape.
func ToAssistantSearchResponse(outcome *assistant.SearchOutcome) AssistantSearchResponse {
	archives := outcome.Results
	if archives == nil {
		archives = []assistant.ResultItem{}
	}

	resp := AssistantSearchResponse{
		ResponseType: string(outcome.Type),
		Archives:     archives,
		Total:        len(archives),
		Query:        outcome.Utterance,
	}
	if outcome.Type == assistant.OutcomeMessage {
		message := outcome.Message
		resp.Message = &message
	}
	return resp
}
