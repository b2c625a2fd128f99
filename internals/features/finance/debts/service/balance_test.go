package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestOutstanding(t *testing.T) {
	tests := []struct {
		name        string
		principal   string
		penalty     string
		allocations []string
		want        string
	}{
		{"no payments", "100.00", "20.00", nil, "120.00"},
		{"partial payment", "100.00", "20.00", []string{"50.00"}, "70.00"},
		{"paid in full", "100.00", "20.00", []string{"50.00", "70.00"}, "0.00"},
		{"historical overpayment clamps", "100.00", "0", []string{"80.00", "30.00"}, "0.00"},
		{"zero debt", "0", "0", nil, "0.00"},
		{"cents do not drift", "0.30", "0", []string{"0.10", "0.10", "0.10"}, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allocs := make([]decimal.Decimal, 0, len(tt.allocations))
			for _, a := range tt.allocations {
				allocs = append(allocs, d(a))
			}
			got := Outstanding(d(tt.principal), d(tt.penalty), allocs)
			assert.Equal(t, tt.want, got.StringFixed(2))
			assert.False(t, got.IsNegative())
		})
	}
}

func TestOutstanding_IsIdempotent(t *testing.T) {
	allocs := []decimal.Decimal{d("12.34"), d("0.66")}
	first := Outstanding(d("50"), d("5"), allocs)
	second := Outstanding(d("50"), d("5"), allocs)

	assert.True(t, first.Equal(second))
	assert.Equal(t, "12.34", allocs[0].StringFixed(2))
	assert.Equal(t, "42.00", first.StringFixed(2))
}

func TestIsFullyPaid(t *testing.T) {
	assert.False(t, IsFullyPaid(d("100"), d("20"), []decimal.Decimal{d("50")}))
	assert.True(t, IsFullyPaid(d("100"), d("20"), []decimal.Decimal{d("50"), d("70")}))
	assert.Equal(t, "0.00", Allocated(nil).StringFixed(2))
}
