package user

import (
	"strconv"
	"strings"

	"user-account-service/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 5
	MaxPageSize     = 100
)

// ListQuery is a validated list request. Page and PageSize are always >= 1.
type ListQuery struct {
	Search   string
	SortBy   domain.SortField
	Page     int
	PageSize int
}

// ParseListQuery coerces raw query-string values. Missing, non-numeric or zero page/limit
// fall back to the defaults; negative values clamp to 1.
func ParseListQuery(search, sortBy, page, limit string) ListQuery {
	return ListQuery{
		Search:   strings.TrimSpace(search),
		SortBy:   ParseSortField(sortBy),
		Page:     coerce(page, DefaultPage, 0),
		PageSize: coerce(limit, DefaultPageSize, MaxPageSize),
	}
}

func coerce(raw string, def, ceiling int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil, v == 0:
		return def
	case v < 1:
		return 1
	case ceiling > 0 && v > ceiling:
		return ceiling
	}
	return v
}

// ParseSortField accepts the public field names; anything else means default order.
func ParseSortField(s string) domain.SortField {
	switch strings.TrimSpace(s) {
	case "name":
		return domain.SortName
	case "email":
		return domain.SortEmail
	case "createdAt":
		return domain.SortCreatedAt
	case "updatedAt":
		return domain.SortUpdatedAt
	case "id", "_id":
		return domain.SortID
	}
	return domain.SortNone
}

func (q ListQuery) StoreQuery() domain.Query {
	return domain.Query{
		Search: q.Search,
		SortBy: q.SortBy,
		Skip:   (q.Page - 1) * q.PageSize,
		Limit:  q.PageSize,
	}
}
