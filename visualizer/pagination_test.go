package visualizer

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{in: "", ok: false},
		{in: "abc", ok: false},
		{in: "-", ok: false},
		{in: "42", want: 42, ok: true},
		{in: "  42", want: 42, ok: true},
		{in: "+42", want: 42, ok: true},
		{in: "-42", want: -42, ok: true},
		{in: "20abc", want: 20, ok: true},
		{in: "1e3", want: 1, ok: true},
		{in: "0x10", want: 0, ok: true},
		{in: "9223372036854775807", want: math.MaxInt64, ok: true},
		{in: "9223372036854775808", want: math.MaxInt64, ok: true},
		{in: "99999999999999999999", want: math.MaxInt64, ok: true},
		{in: "-99999999999999999999", want: math.MinInt64, ok: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := parseLeadingInt(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewPaginationDoesNotOverflow(t *testing.T) {
	for _, req := range []pageRequest{
		{limit: MaxLimit, skip: math.MaxInt64},
		{limit: MaxLimit, skip: math.MaxInt64 - 7},
		{limit: DefaultLimit, skip: 120},
	} {
		assert.False(t, newPagination(req, 120).HasMore, "skip=%d limit=%d", req.skip, req.limit)
	}
	assert.True(t, newPagination(pageRequest{limit: 10, skip: 109}, 120).HasMore)
	assert.False(t, newPagination(pageRequest{limit: 10, skip: 110}, 120).HasMore)
}

func TestParsePageRequestSaturatesLimit(t *testing.T) {
	req := parsePageRequest(url.Values{"limit": {"99999999999999999999"}, "skip": {"99999999999999999999"}})
	assert.EqualValues(t, MaxLimit, req.limit)
	assert.EqualValues(t, int64(math.MaxInt64), req.skip)
	assert.Equal(t, DefaultSort, req.sort)
}
