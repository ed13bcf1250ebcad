package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaginationDefaults(t *testing.T) {
	window, err := ResolvePagination("", "")
	require.NoError(t, err)
	assert.Equal(t, 10, window.Limit)
	assert.Equal(t, 1, window.Page)
	assert.Equal(t, 0, window.Offset)
}

func TestResolvePaginationNonIntegerFallsBack(t *testing.T) {
	window, err := ResolvePagination("abc", "x1")
	require.NoError(t, err)
	assert.Equal(t, 10, window.Limit)
	assert.Equal(t, 1, window.Page)
}

func TestResolvePaginationBounds(t *testing.T) {
	cases := []struct {
		name  string
		limit string
		page  string
		ok    bool
	}{
		{"limit lower edge", "1", "1", true},
		{"limit upper edge", "100", "1", true},
		{"limit zero", "0", "1", false},
		{"limit above max", "101", "1", false},
		{"limit negative", "-5", "1", false},
		{"page zero", "10", "0", false},
		{"page negative", "10", "-1", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			window, err := ResolvePagination(tc.limit, tc.page)
			if !tc.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, window.Limit, atoiMust(t, tc.limit))
		})
	}
}

func TestResolvePaginationOffset(t *testing.T) {
	window, err := ResolvePagination("5", "3")
	require.NoError(t, err)
	assert.Equal(t, 10, window.Offset)

	window, err = ResolvePagination("25", "4")
	require.NoError(t, err)
	assert.Equal(t, 75, window.Offset)
}

func atoiMust(t *testing.T, raw string) int {
	t.Helper()
	window, err := ResolvePagination(raw, "1")
	require.NoError(t, err)
	return window.Limit
}
