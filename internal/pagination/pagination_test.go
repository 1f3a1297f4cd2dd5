package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ctxWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParse_Defaults(t *testing.T) {
	c := ctxWithQuery("")
	p := Parse(c, "created_at", map[string]bool{"created_at": true})

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, "created_at", p.SortBy)
	assert.Equal(t, "desc", p.SortOrder)
}

func TestParse_ClampsInvalidValues(t *testing.T) {
	c := ctxWithQuery("page=-3&limit=9999")
	p := Parse(c, "created_at", map[string]bool{"created_at": true})

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)
}

func TestParse_UnknownSortFallsBack(t *testing.T) {
	allowed := map[string]bool{"created_at": true, "title": true}

	c := ctxWithQuery("sortBy=password")
	p := Parse(c, "created_at", allowed)
	assert.Equal(t, "created_at", p.SortBy)

	c = ctxWithQuery("sortBy=title&sortOrder=asc")
	p = Parse(c, "created_at", allowed)
	assert.Equal(t, "title", p.SortBy)
	assert.Equal(t, "asc", p.SortOrder)
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, Limit: 20}
	assert.Equal(t, 40, p.Offset())
}

func TestNewMeta_MiddlePage(t *testing.T) {
	meta := NewMeta(25, Params{Page: 2, Limit: 10})

	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, int64(25), meta.Total)
	assert.True(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)
}

func TestNewMeta_ExactMultiple(t *testing.T) {
	meta := NewMeta(30, Params{Page: 3, Limit: 10})

	assert.Equal(t, 3, meta.TotalPages)
	assert.False(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)
}

func TestNewMeta_EmptyResult(t *testing.T) {
	meta := NewMeta(0, Params{Page: 1, Limit: 10})

	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNextPage)
	assert.False(t, meta.HasPrevPage)
}

func TestNewMeta_PageBeyondEnd(t *testing.T) {
	// Requesting past the last page yields an empty page, not an error
	meta := NewMeta(5, Params{Page: 4, Limit: 10})

	assert.Equal(t, 1, meta.TotalPages)
	assert.False(t, meta.HasNextPage)
	assert.True(t, meta.HasPrevPage)
}
