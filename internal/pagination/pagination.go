// Package pagination implements the shared listing contract: page/limit
// parsing, sort validation against a per-entity allow-list, and the five-part
// collection response metadata.
package pagination

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// DefaultLimit is the page size used when the client does not send one
	DefaultLimit = 10
	// MaxLimit caps the page size a client can request
	MaxLimit = 100
)

// Params holds validated pagination and sorting input
type Params struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Parse reads page, limit, sortBy and sortOrder query parameters.
// sortBy is validated against the caller supplied allow-list of column names
// and falls back to defaultSort when absent or unknown. Passing the raw
// client value into the order clause is never done.
func Parse(c *gin.Context, defaultSort string, allowedSorts map[string]bool) Params {
	p := Params{
		Page:      1,
		Limit:     DefaultLimit,
		SortBy:    defaultSort,
		SortOrder: "desc",
	}

	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			p.Page = page
		}
	}

	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			if limit > MaxLimit {
				limit = MaxLimit
			}
			p.Limit = limit
		}
	}

	if raw := c.Query("sortBy"); raw != "" && allowedSorts[raw] {
		p.SortBy = raw
	}

	if strings.EqualFold(c.Query("sortOrder"), "asc") {
		p.SortOrder = "asc"
	}

	return p
}

// Offset returns the row offset for the current page
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Scope returns a gorm scope applying order, offset and limit
func (p Params) Scope() func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: p.SortBy},
			Desc:   p.SortOrder == "desc",
		}).Offset(p.Offset()).Limit(p.Limit)
	}
}

// Meta is the pagination metadata attached to every collection response
type Meta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	Total       int64 `json:"total"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
}

// NewMeta derives the response metadata from a filtered total count.
// totalPages is ceil(total/limit); an empty result set has neither a next
// nor a previous page.
func NewMeta(total int64, p Params) Meta {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))

	meta := Meta{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		Total:       total,
	}
	if total == 0 {
		return meta
	}
	meta.HasNextPage = p.Page < totalPages
	meta.HasPrevPage = p.Page > 1
	return meta
}
