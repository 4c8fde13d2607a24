package usecase

import (
	"math"
	"testing"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		size  int
		want  int
	}{
		{total: 0, size: 10, want: 0},
		{total: 5, size: 2, want: 3},
		{total: 4, size: 2, want: 2},
		{total: 1, size: 100, want: 1},
		{total: 101, size: 100, want: 2},
		{total: 5, size: 0, want: 0},
	}

	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestProductPageQuery_Offset(t *testing.T) {
	q := ProductPageQuery{Page: 1 << 30, Size: MaxPageSize}
	if got, want := q.Offset(), int64(1<<30)*MaxPageSize; got != want {
		t.Errorf("Offset() = %d, want %d", got, want)
	}
}

func TestProductPageQuery_OffsetSaturates(t *testing.T) {
	tests := []struct {
		page int
		size int
		want int64
	}{
		{page: math.MaxInt64/MaxPageSize + 1, size: MaxPageSize, want: math.MaxInt64},
		{page: math.MaxInt64, size: 2, want: math.MaxInt64},
		{page: math.MaxInt64 / MaxPageSize, size: MaxPageSize, want: (math.MaxInt64 / MaxPageSize) * MaxPageSize},
		{page: 0, size: MaxPageSize, want: 0},
	}

	for _, tt := range tests {
		q := ProductPageQuery{Page: tt.page, Size: tt.size}
		if got := q.Offset(); got != tt.want {
			t.Errorf("Offset(page=%d, size=%d) = %d, want %d", tt.page, tt.size, got, tt.want)
		}
	}
}

func TestNewProductListRes_NilItems(t *testing.T) {
	res := NewProductListRes(nil, 0, 3, 10)
	if res.Items == nil {
		t.Error("Items must be an empty slice, not nil")
	}
	if res.Page != 3 || res.TotalPages != 0 {
		t.Errorf("unexpected envelope: %+v", res)
	}
}
