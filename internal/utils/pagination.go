package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docushare/share-management-api/pkg/utils"
)

// PaginationParams holds pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
}

// PaginationMetadata holds pagination metadata for responses
type PaginationMetadata struct {
	Total      int  `json:"total"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	HasMore    bool `json:"hasMore"`
	TotalPages int  `json:"totalPages"`
}

// ParsePaginationParams reads limit/offset query parameters with defaults
func ParsePaginationParams(c *gin.Context) *PaginationParams {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return &PaginationParams{
		Limit:  utils.ValidateLimit(limit),
		Offset: utils.ValidateOffset(offset),
	}
}

// CalculatePaginationMetadata calculates pagination metadata
func CalculatePaginationMetadata(total, limit, offset int) *PaginationMetadata {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return &PaginationMetadata{
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    (offset + limit) < total,
		TotalPages: totalPages,
	}
}
