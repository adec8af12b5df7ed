package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-manager-api/internal/constants"
)

var (
	ErrInvalidPage  = fmt.Errorf("page must be an integer >= %d", constants.MinPage)
	ErrInvalidLimit = fmt.Errorf("limit must be an integer between %d and %d", constants.MinPageSize, constants.MaxPageSize)
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// NewPaginationParams validates page and limit and computes the offset.
// Pages whose offset would overflow an int get math.MaxInt, which is still
// past the last row.
func NewPaginationParams(page, limit int) (PaginationParams, error) {
	if page < constants.MinPage {
		return PaginationParams{}, ErrInvalidPage
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		return PaginationParams{}, ErrInvalidLimit
	}

	offset := math.MaxInt
	if page-1 <= math.MaxInt/limit {
		offset = (page - 1) * limit
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// GetPaginationParams extracts and validates pagination parameters from the request
func GetPaginationParams(c *gin.Context) (PaginationParams, error) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPage)))
	if err != nil {
		return PaginationParams{}, ErrInvalidPage
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))
	if err != nil {
		return PaginationParams{}, ErrInvalidLimit
	}

	return NewPaginationParams(page, limit)
}

// IsPaginationError reports whether err came from pagination validation.
func IsPaginationError(err error) bool {
	return errors.Is(err, ErrInvalidPage) || errors.Is(err, ErrInvalidLimit)
}

// TotalPages returns ceil(total/limit), never less than 1.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	pages := int(total / int64(limit))
	if total%int64(limit) > 0 {
		pages++
	}
	return pages
}

// NewPaginationResponse builds the metadata for one page of a result set.
// Pages past the end are legal and simply report has_next=false.
func NewPaginationResponse(params PaginationParams, total int64) PaginationResponse {
	totalPages := TotalPages(total, params.Limit)
	return PaginationResponse{
		Page:        params.Page,
		Limit:       params.Limit,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNext:     params.Page < totalPages,
		HasPrevious: params.Page > 1,
	}
}
