package httpx

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Service string `json:"service"`
	}
	require.NoError(t, DecodeJSON(strings.NewReader(`{"service":"regular"}`), &v))
	assert.Equal(t, "regular", v.Service)

	assert.ErrorIs(t, DecodeJSON(strings.NewReader(""), &v), ErrEmptyBody)
	assert.Error(t, DecodeJSON(strings.NewReader(`{"other":1}`), &v))
	assert.Error(t, DecodeJSON(strings.NewReader(`{} {}`), &v))
}

func TestParseLimitOffset(t *testing.T) {
	limit, offset, err := ParseLimitOffset(url.Values{}, 50, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(50), limit)
	assert.Zero(t, offset)

	limit, offset, err = ParseLimitOffset(url.Values{"limit": {"9000"}, "offset": {"10"}}, 50, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), limit)
	assert.Equal(t, int64(10), offset)

	_, _, err = ParseLimitOffset(url.Values{"limit": {"0"}}, 50, 500)
	assert.Error(t, err)
	_, _, err = ParseLimitOffset(url.Values{"offset": {"-1"}}, 50, 500)
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := Paginate(items, 2, 0)
	assert.Equal(t, []int{1, 2}, p.Items)
	assert.Equal(t, int64(5), p.Total)

	assert.Equal(t, []int{5}, Paginate(items, 2, 4).Items)

	empty := Paginate(items, 2, 10)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}
