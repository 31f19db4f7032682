package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageFilter(t *testing.T) {
	tests := []struct {
		name       string
		filter     PageFilter
		wantOffset int
		wantLimit  int
		wantPage   int
	}{
		{name: "zero value", filter: PageFilter{}, wantOffset: 0, wantLimit: 20, wantPage: 1},
		{name: "second page", filter: PageFilter{Page: 2, PageSize: 10}, wantOffset: 10, wantLimit: 10, wantPage: 2},
		{name: "negative page", filter: PageFilter{Page: -3, PageSize: 10}, wantOffset: 0, wantLimit: 10, wantPage: 1},
		{name: "oversized page", filter: PageFilter{Page: 3, PageSize: 500}, wantOffset: 200, wantLimit: 100, wantPage: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantOffset, tt.filter.Offset())
			assert.Equal(t, tt.wantLimit, tt.filter.Limit())

			n := tt.filter.Normalize()
			assert.Equal(t, tt.wantPage, n.Page)
			assert.Equal(t, tt.wantLimit, n.PageSize)
		})
	}
}
