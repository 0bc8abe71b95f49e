package services

import (
	"context"
	"strings"
	"testing"

	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedLedger(rows ...models.Commission) *fakeLedger {
	l := &fakeLedger{}
	for _, r := range rows {
		if r.ID.IsZero() {
			r.ID = primitive.NewObjectID()
		}
		if r.Order.IsZero() {
			r.Order = primitive.NewObjectID()
		}
		l.rows = append(l.rows, r)
	}
	return l
}

func newReportService(l *fakeLedger) *CommissionReportService {
	log, _ := nullLogger()
	return NewCommissionReportService(l, log)
}

func TestTotalsByStatusAlwaysComplete(t *testing.T) {
	earner := primitive.NewObjectID()
	ledger := seedLedger(
		models.Commission{EarnerID: earner, Amount: 10, Status: models.CommissionStatusPending},
		models.Commission{EarnerID: earner, Amount: 2.5, Status: models.CommissionStatusPending},
		models.Commission{EarnerID: primitive.NewObjectID(), Amount: 99, Status: models.CommissionStatusPaid},
	)

	totals, err := newReportService(ledger).TotalsByStatus(context.Background(), earner)
	require.NoError(t, err)
	assert.Equal(t, models.CommissionTotals{PendingAmount: 12.5}, totals)

	none, err := newReportService(ledger).TotalsByStatus(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, models.CommissionTotals{}, none)
}

func TestMyCommissions(t *testing.T) {
	earner := primitive.NewObjectID()
	var rows []models.Commission
	for i := 0; i < 7; i++ {
		rows = append(rows, models.Commission{EarnerID: earner, Amount: 1, Level: i + 1, Status: models.CommissionStatusApproved})
	}
	rows = append(rows, models.Commission{EarnerID: earner, Amount: 4, Status: models.CommissionStatusVoid})

	got, err := newReportService(seedLedger(rows...)).MyCommissions(context.Background(), earner)
	require.NoError(t, err)

	assert.Equal(t, 7.0, got.Totals.ApprovedAmount)
	assert.Equal(t, 4.0, got.Totals.VoidAmount)
	assert.Equal(t, int64(7), got.Counts.ApprovedCount)
	assert.Equal(t, int64(1), got.Counts.VoidCount)
	assert.Len(t, got.Recent, RecentCommissionsLimit)
	assert.Equal(t, models.CommissionStatusVoid, got.Recent[0].Status)
}

func TestRecentForEarnerEmpty(t *testing.T) {
	rows, err := newReportService(&fakeLedger{}).RecentForEarner(context.Background(), primitive.NewObjectID(), 0)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestListCommissions(t *testing.T) {
	ledger := seedLedger(
		models.Commission{EarnerID: primitive.NewObjectID(), Status: models.CommissionStatusPending},
		models.Commission{EarnerID: primitive.NewObjectID(), Status: models.CommissionStatusPaid},
		models.Commission{EarnerID: primitive.NewObjectID(), Status: models.CommissionStatusPending},
	)
	svc := newReportService(ledger)

	all, err := svc.ListCommissions(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := svc.ListCommissions(context.Background(), "pending")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = svc.ListCommissions(context.Background(), "refunded")
	assert.True(t, IsValidationError(err))

	empty, err := newReportService(&fakeLedger{}).ListCommissions(context.Background(), "void")
	require.NoError(t, err)
	assert.NotNil(t, empty)
}

func TestUpdateCommissionStatus(t *testing.T) {
	id := primitive.NewObjectID()
	ledger := seedLedger(models.Commission{ID: id, EarnerID: primitive.NewObjectID(), Status: models.CommissionStatusPending})
	svc := newReportService(ledger)

	// no transition order is enforced
	updated, err := svc.UpdateCommissionStatus(context.Background(), id.Hex(), "paid", nil)
	require.NoError(t, err)
	assert.Equal(t, models.CommissionStatusPaid, updated.Status)

	updated, err = svc.UpdateCommissionStatus(context.Background(), id.Hex(), "pending", nil)
	require.NoError(t, err)
	assert.Equal(t, models.CommissionStatusPending, updated.Status)
}

func TestUpdateCommissionStatusNote(t *testing.T) {
	id := primitive.NewObjectID()
	ledger := seedLedger(models.Commission{ID: id, Status: models.CommissionStatusPending, Note: "kept"})
	svc := newReportService(ledger)

	blank := "  \x00 "
	updated, err := svc.UpdateCommissionStatus(context.Background(), id.Hex(), "approved", &blank)
	require.NoError(t, err)
	assert.Equal(t, "kept", updated.Note)

	note := "  paid via bank\x07 transfer  "
	updated, err = svc.UpdateCommissionStatus(context.Background(), id.Hex(), "paid", &note)
	require.NoError(t, err)
	assert.Equal(t, "paid via bank transfer", updated.Note)

	long := strings.Repeat("x", 600)
	updated, err = svc.UpdateCommissionStatus(context.Background(), id.Hex(), "paid", &long)
	require.NoError(t, err)
	assert.Len(t, updated.Note, 500)
}

func TestUpdateCommissionStatusErrors(t *testing.T) {
	svc := newReportService(&fakeLedger{})

	tests := []struct {
		name   string
		id     string
		status string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "bad id",
			id:     "not-an-id",
			status: "paid",
			check:  func(t *testing.T, err error) { assert.True(t, IsValidationError(err)) },
		},
		{
			name:   "bad status",
			id:     primitive.NewObjectID().Hex(),
			status: "Paid",
			check:  func(t *testing.T, err error) { assert.True(t, IsValidationError(err)) },
		},
		{
			name:   "missing",
			id:     primitive.NewObjectID().Hex(),
			status: "void",
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrCommissionNotFound) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateCommissionStatus(context.Background(), tt.id, tt.status, nil)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
