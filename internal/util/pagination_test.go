package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page, size          int
		wantOffset, wantLim int
	}{
		{page: 1, size: 10, wantOffset: 0, wantLim: 10},
		{page: 3, size: 10, wantOffset: 20, wantLim: 10},
		{page: 0, size: 0, wantOffset: 0, wantLim: DefaultPageSize},
		{page: 2, size: 1000, wantOffset: MaxPageSize, wantLim: MaxPageSize},
	}
	for _, tt := range tests {
		off, lim := Calculate(tt.page, tt.size)
		assert.Equal(t, tt.wantOffset, off)
		assert.Equal(t, tt.wantLim, lim)
	}
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, ParseIntDefault("5", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))
	assert.Equal(t, 1, ParseIntDefault("five", 1))
}

func TestMeta(t *testing.T) {
	t.Parallel()

	m := Meta(2, 10, 10, 25)
	assert.EqualValues(t, 3, m["total_pages"])
	assert.Equal(t, true, m["has_prev"])
	assert.Equal(t, true, m["has_next"])

	m = Meta(3, 20, 10, 25)
	assert.Equal(t, false, m["has_next"])
}
