package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard-api/internal/constants"
)

// PaginationParams holds the pagination parameters. A zero value means no pagination was requested.
type PaginationParams struct {
	Page  int
	Limit int
}

// Requested reports whether the client asked for a page.
func (p PaginationParams) Requested() bool {
	return p.Page > 0
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// GetPaginationParams extracts pagination parameters from the request.
// Pagination is applied only when page or limit is present; bad values fall back to defaults.
func GetPaginationParams(c *gin.Context) PaginationParams {
	pageStr, hasPage := c.GetQuery("page")
	limitStr, hasLimit := c.GetQuery("limit")
	if !hasPage && !hasLimit {
		return PaginationParams{}
	}

	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)

	if page < 1 {
		page = 1
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Page:  page,
		Limit: limit,
	}
}

// NewPaginationResponse builds the metadata for a page of total results.
func NewPaginationResponse(params PaginationParams, total int64) *PaginationResponse {
	if !params.Requested() {
		return nil
	}

	totalPages := int(total) / params.Limit
	if int(total)%params.Limit > 0 {
		totalPages++
	}

	return &PaginationResponse{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
