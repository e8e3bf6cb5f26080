package handler

import (
	"github.com/gin-gonic/gin"

	"heritage-archive-api/internal/application/archive"
	"heritage-archive-api/internal/domain/entity"
	"heritage-archive-api/internal/domain/repository"
	"heritage-archive-api/internal/interfaces/http/dto"
	"heritage-archive-api/pkg/errors"
	"heritage-archive-api/pkg/logger"
)

// ArchiveHandler serves archive CRUD endpoints.
type ArchiveHandler struct {
	service *archive.Service
	uris    *archive.URIResolver
}

// NewArchiveHandler creates the archive handler.
func NewArchiveHandler(service *archive.Service, uris *archive.URIResolver) *ArchiveHandler {
	return &ArchiveHandler{
		service: service,
		uris:    uris,
	}
}

// ListArchives returns a filtered page of archives.
// @Router /v1/archives [get]
func (h *ArchiveHandler) ListArchives(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	filter := &repository.ArchiveFilter{
		MediaType: entity.MediaType(c.Query("media_type")),
		Tag:       c.Query("tag"),
		Title:     c.Query("title"),
	}

	result, err := h.service.List(ctx, filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list archives", err)
		dto.InternalError(c, "failed to list archives")
		return
	}

	resp := dto.ToArchiveListResponse(result.Items, h.uris)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// CreateArchive creates an archive record.
// @Router /v1/archives [post]
func (h *ArchiveHandler) CreateArchive(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	created, err := h.service.Create(ctx, req.ToInput())
	if err != nil {
		h.writeError(c, err, "failed to create archive")
		return
	}

	dto.Created(c, dto.ToArchiveResponse(created, h.uris))
}

// GetArchive returns one archive.
// @Router /v1/archives/{aid} [get]
func (h *ArchiveHandler) GetArchive(c *gin.Context) {
	ctx := c.Request.Context()
	archiveID := dto.BindArchiveID(c)

	record, err := h.service.Get(ctx, archiveID)
	if err != nil {
		h.writeError(c, err, "failed to get archive")
		return
	}

	dto.Success(c, dto.ToArchiveResponse(record, h.uris))
}

// UpdateArchive applies a partial update.
// @Router /v1/archives/{aid} [put]
func (h *ArchiveHandler) UpdateArchive(c *gin.Context) {
	ctx := c.Request.Context()
	archiveID := dto.BindArchiveID(c)

	var req dto.UpdateArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	updated, err := h.service.Update(ctx, archiveID, req.ToInput())
	if err != nil {
		h.writeError(c, err, "failed to update archive")
		return
	}

	dto.Success(c, dto.ToArchiveResponse(updated, h.uris))
}

// DeleteArchive removes an archive and its embeddings.
// @Router /v1/archives/{aid} [delete]
func (h *ArchiveHandler) DeleteArchive(c *gin.Context) {
	ctx := c.Request.Context()
	archiveID := dto.BindArchiveID(c)

	if err := h.service.Delete(ctx, archiveID); err != nil {
		h.writeError(c, err, "failed to delete archive")
		return
	}

	dto.NoContent(c)
}

// ReindexArchives re-embeds every archive into the vector store.
// @Router /v1/archives/reindex [post]
func (h *ArchiveHandler) ReindexArchives(c *gin.Context) {
	ctx := c.Request.Context()

	indexed, err := h.service.Reindex(ctx)
	if err != nil {
		if err == archive.ErrVectorDisabled {
			dto.ServiceUnavailable(c, "vector search is disabled")
			return
		}
		h.writeError(c, err, "failed to reindex archives")
		return
	}

	dto.Success(c, dto.ReindexResponse{Indexed: indexed})
}

func (h *ArchiveHandler) writeError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()
	if errors.IsAppError(err) {
		appErr := errors.AsAppError(err)
		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
			Code:    appErr.HTTPStatus,
			Message: appErr.Message,
			Error: &dto.ErrorDetail{
				ErrorCode: string(appErr.Code),
				Details:   appErr.Detail,
			},
			TraceID: c.GetString("trace_id"),
		})
		return
	}
	logger.Error(ctx, fallback, err)
	dto.InternalError(c, fallback)
}
