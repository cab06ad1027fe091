package pagination

import (
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is the query-string page request shared by list endpoints.
type Pagination struct {
	PageToken string `form:"page_token" json:"page_token"`
	PageSize  int    `form:"page_size" json:"page_size"`
}

// PageInfo is embedded into list responses.
type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	TotalCount    int64  `json:"total_count"`
}

// Limit returns the page size clamped to [1, MaxPageSize].
func (p Pagination) Limit() int {
	switch {
	case p.PageSize <= 0:
		return DefaultPageSize
	case p.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return p.PageSize
	}
}

// Offset decodes the page token. Malformed tokens restart from the first page.
func (p Pagination) Offset() int {
	token := strings.TrimSpace(p.PageToken)
	if token == "" {
		return 0
	}
	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

// Next builds the PageInfo for a page that started at offset.
func Next(offset, limit int, total int64) PageInfo {
	info := PageInfo{TotalCount: total}
	if next := int64(offset + limit); next < total {
		info.NextPageToken = strconv.FormatInt(next, 10)
	}
	return info
}
