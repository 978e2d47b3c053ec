package visualizer

import (
	"math"
	"net/url"
	"strings"

	"modelviz.dev/modelviz/odm"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
	DefaultSort  = "-_id"
)

// Pagination describes the page returned by the data endpoint.
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int64 `json:"limit"`
	Skip    int64 `json:"skip"`
	HasMore bool  `json:"hasMore"`
}

// DataPage is the payload of the data endpoint.
type DataPage struct {
	Records    []odm.Document `json:"records"`
	Pagination Pagination     `json:"pagination"`
}

type pageRequest struct {
	limit  int64
	skip   int64
	sort   string
	filter string
}

// parsePageRequest reads limit, skip, sort and filter. Numbers are read from
// their leading digits, so "20abc" is 20. Missing, zero or negative numbers
// fall back to their defaults and limit is capped at MaxLimit.
func parsePageRequest(q url.Values) pageRequest {
	req := pageRequest{
		limit:  DefaultLimit,
		sort:   DefaultSort,
		filter: q.Get("filter"),
	}
	if n, ok := parseLeadingInt(q.Get("limit")); ok && n > 0 {
		req.limit = min(n, MaxLimit)
	}
	if n, ok := parseLeadingInt(q.Get("skip")); ok && n > 0 {
		req.skip = n
	}
	if s := q.Get("sort"); s != "" {
		req.sort = s
	}
	return req
}

// parseLeadingInt parses an optionally signed decimal prefix of s after
// leading white space and ignores whatever follows it. Values outside the
// int64 range saturate. It reports false when s has no digits to read.
func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\n\r\f\v")
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}
	var n uint64
	digits := 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		if n > math.MaxInt64/10 {
			n = math.MaxInt64 + 1
			continue
		}
		n = n*10 + uint64(s[digits]-'0')
	}
	if digits == 0 {
		return 0, false
	}
	if n > math.MaxInt64 {
		if negative {
			return math.MinInt64, true
		}
		return math.MaxInt64, true
	}
	if negative {
		return -int64(n), true
	}
	return int64(n), true
}

func newPagination(req pageRequest, total int64) Pagination {
	return Pagination{
		Total:   total,
		Limit:   req.limit,
		Skip:    req.skip,
		HasMore: req.skip < total && req.limit < total-req.skip,
	}
}
