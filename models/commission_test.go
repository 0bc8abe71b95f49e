package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommissionStatus(t *testing.T) {
	for _, st := range CommissionStatuses {
		got, err := ParseCommissionStatus(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	for _, bad := range []string{"", "Paid", "refunded", " pending"} {
		_, err := ParseCommissionStatus(bad)
		assert.Error(t, err, bad)
	}
}

func TestFoldStatusAggregates(t *testing.T) {
	totals, counts := FoldStatusAggregates([]StatusAggregate{
		{Status: "pending", Amount: 12.5, Count: 3},
		{Status: "paid", Amount: 40, Count: 1},
		{Status: "legacy", Amount: 999, Count: 9},
	})

	assert.Equal(t, CommissionTotals{PendingAmount: 12.5, PaidAmount: 40}, totals)
	assert.Equal(t, CommissionCounts{PendingCount: 3, PaidCount: 1}, counts)

	totals, counts = FoldStatusAggregates(nil)
	assert.Equal(t, CommissionTotals{}, totals)
	assert.Equal(t, CommissionCounts{}, counts)
}
