package httpserver

import (
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"
)

// listParams is the wire query contract shared by every list endpoint:
// page (one-based), limit, sortBy, sortOrder, search, plus per-resource
// filters read separately.
type listParams struct {
	Page     int
	PageSize int
	SortBy   string
	SortDesc bool
	Search   string
}

func parseListParams(c *gin.Context) listParams {
	p := listParams{Page: 1, PageSize: 20}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 500 {
		p.PageSize = v
	}
	p.SortBy = strings.TrimSpace(c.Query("sortBy"))
	p.SortDesc = strings.EqualFold(c.Query("sortOrder"), "desc")
	p.Search = strings.TrimSpace(c.Query("search"))
	return p
}

// pageEnvelope is the uniform list response.
func pageEnvelope(items any, total int64, page, pageSize int) gin.H {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return gin.H{
		"items":      items,
		"total":      total,
		"page":       page,
		"totalPages": totalPages,
	}
}
