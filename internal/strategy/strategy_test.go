package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/constants"
)

func TestSelect(t *testing.T) {
	cases := []struct {
		name      string
		pageCount int
		fileSize  int64
		want      constants.ParseStrategy
	}{
		{"small document", 5, 1 << 20, constants.StrategyLibraryFirst},
		{"boundary at twenty pages", 20, 1 << 20, constants.StrategyLibraryFirst},
		{"just over twenty pages", 21, 1 << 20, constants.StrategyPageByPage},
		{"very large page count", 120, 1 << 20, constants.StrategyPageByPage},
		{"huge file few pages", 3, 60 * 1024 * 1024, constants.StrategyLibraryFirst},
		{"zero pages", 0, 0, constants.StrategyLibraryFirst},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Select(tc.pageCount, tc.fileSize))
		})
	}
}

func TestSelectIsIdempotent(t *testing.T) {
	for _, pages := range []int{0, 1, 20, 21, 50, 51, 500} {
		for _, size := range []int64{0, 1 << 20, 50 << 20, 51 << 20} {
			first := Select(pages, size)
			second := Select(pages, size)
			assert.Equal(t, first, second, "pages=%d size=%d", pages, size)
		}
	}
}
