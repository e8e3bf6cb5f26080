// Package router provides HTTP route configuration.
package router

import (
	"github.com/gin-gonic/gin"

	"heritage-archive-api/internal/interfaces/http/handler"
)

// RegisterV1Routes registers the v1 API routes.
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	archiveHandler *handler.ArchiveHandler,
	assistantHandler *handler.AssistantHandler,
) {
	archives := v1.Group("/archives")
	{
		archives.GET("", archiveHandler.ListArchives)
		archives.POST("", archiveHandler.CreateArchive)
		archives.POST("/reindex", archiveHandler.ReindexArchives)
		archives.GET("/:aid", archiveHandler.GetArchive)
		archives.PUT("/:aid", archiveHandler.UpdateArchive)
		archives.DELETE("/:aid", archiveHandler.DeleteArchive)
	}

	assistant := v1.Group("/assistant")
	{
		assistant.POST("/search", assistantHandler.Search)
		assistant.POST("/search/stream", assistantHandler.SearchStream) // SSE
	}
}
