// Package dto provides HTTP layer data transfer objects.
package dto

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// PageRequest holds pagination query parameters.
type PageRequest struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// Normalize clamps pagination parameters.
func (r *PageRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = 20
	}
	if r.PageSize > 100 {
		r.PageSize = 100
	}
}

// Offset returns the row offset.
func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// Limit returns the page size.
func (r *PageRequest) Limit() int {
	return r.PageSize
}

// BindPage binds pagination parameters from the query string.
func BindPage(c *gin.Context) PageRequest {
	page := parseIntWithDefault(c.Query("page"), 1)
	pageSize := parseIntWithDefault(c.Query("page_size"), 20)

	req := PageRequest{
		Page:     page,
		PageSize: pageSize,
	}
	req.Normalize()
	return req
}

func parseIntWithDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// ArchiveIDRequest is an archive ID path parameter.
type ArchiveIDRequest struct {
	ArchiveID string `uri:"aid" binding:"required"`
}

// BindArchiveID binds the archive ID from the URI.
func BindArchiveID(c *gin.Context) string {
	return c.Param("aid")
}
