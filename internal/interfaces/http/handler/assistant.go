package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"heritage-archive-api/internal/application/assistant"
	"heritage-archive-api/internal/interfaces/http/dto"
	"heritage-archive-api/pkg/errors"
	"heritage-archive-api/pkg/logger"
)

// AssistantHandler serves the conversational archive search endpoints.
type AssistantHandler struct {
	controller *assistant.Controller
}

// NewAssistantHandler creates the assistant handler. controller may be nil
// when the search stack is not configured; requests then fail with 503.
func NewAssistantHandler(controller *assistant.Controller) *AssistantHandler {
	return &AssistantHandler{controller: controller}
}

// Search runs one search turn and returns its terminal outcome.
// @Router /v1/assistant/search [post]
func (h *AssistantHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AssistantSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		dto.BadRequest(c, "query must not be empty")
		return
	}
	if h.controller == nil {
		dto.ServiceUnavailable(c, "assistant search is not configured")
		return
	}

	outcome, err := h.controller.Search(ctx, req.Query)
	if err != nil {
		h.writeError(c, err)
		return
	}

	dto.Success(c, dto.ToAssistantSearchResponse(outcome))
}

// streamEvent is one SSE frame of a streamed turn.
type streamEvent struct {
	name string
	data any
}

// SearchStream runs one search turn and streams loop progress as SSE. The
// stream ends with exactly one terminal results or message event, or an
// error event on transport failure.
// @Router /v1/assistant/search/stream [post]
func (h *AssistantHandler) SearchStream(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AssistantSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		dto.BadRequest(c, "query must not be empty")
		return
	}
	if h.controller == nil {
		dto.ServiceUnavailable(c, "assistant search is not configured")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	events := make(chan streamEvent, 8)
	// Sends race a reader that may have stopped draining; ctx.Done() keeps
	// the producer from blocking past the end of the stream.
	send := func(ev streamEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}
	go func() {
		defer close(events)

		send(streamEvent{name: "query_received", data: gin.H{"query": req.Query}})

		outcome, err := h.controller.SearchWithEvents(ctx, req.Query, func(ev assistant.Event) {
			send(streamEvent{name: string(ev.Type), data: ev})
		})
		if err != nil {
			appErr := errors.AsAppError(err)
			logger.Error(ctx, "streamed assistant search failed", err)
			send(streamEvent{name: "error", data: gin.H{
				"code":    string(appErr.Code),
				"message": appErr.Message,
			}})
			return
		}
		send(streamEvent{name: "complete", data: dto.ToAssistantSearchResponse(outcome)})
	}()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.name, ev.data)
			return true

		case <-ctx.Done():
			// Client disconnected; the loop observes the same context.
			return false
		}
	})
}

func (h *AssistantHandler) writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	if err == assistant.ErrEmptyUtterance {
		dto.BadRequest(c, "query must not be empty")
		return
	}
	if errors.IsAppError(err) {
		appErr := errors.AsAppError(err)
		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
			Code:    appErr.HTTPStatus,
			Message: appErr.Message,
			Error: &dto.ErrorDetail{
				ErrorCode: string(appErr.Code),
			},
			TraceID: c.GetString("trace_id"),
		})
		return
	}

	logger.Error(ctx, "assistant search failed", err)
	dto.InternalError(c, "assistant search failed")
}
