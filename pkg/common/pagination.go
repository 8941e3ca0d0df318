package common

import (
	"net/http"
	"strconv"

	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams are the page/pageSize query parameters.
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// ExtractPaginationParams reads page and pageSize from the query string.
// Malformed or out-of-bounds values are a validation error, not silently
// clamped.
func ExtractPaginationParams(r *http.Request) (PaginationParams, error) {
	params := PaginationParams{Page: DefaultPage, PageSize: DefaultPageSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			return params, apperrors.NewValidationError("page must be a positive integer")
		}
		params.Page = p
	}

	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		ps, err := strconv.Atoi(raw)
		if err != nil || ps < 1 || ps > MaxPageSize {
			return params, apperrors.NewValidationError("pageSize must be between 1 and 100")
		}
		params.PageSize = ps
	}

	return params, nil
}

// PaginationInfo is the pagination block of list responses.
type PaginationInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// BuildPaginationMeta derives the pagination block from a total count.
func BuildPaginationMeta(page, pageSize, total int) *PaginationInfo {
	totalPages := 0
	if pageSize > 0 {
		totalPages = total / pageSize
		if total%pageSize > 0 {
			totalPages++
		}
	}
	return &PaginationInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
