package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommissionStatus is the lifecycle state of a ledger entry
type CommissionStatus string

const (
	CommissionStatusPending  CommissionStatus = "pending"
	CommissionStatusApproved CommissionStatus = "approved"
	CommissionStatusPaid     CommissionStatus = "paid"
	CommissionStatusVoid     CommissionStatus = "void"
)

// CommissionStatuses lists every valid status in display order
var CommissionStatuses = []CommissionStatus{
	CommissionStatusPending,
	CommissionStatusApproved,
	CommissionStatusPaid,
	CommissionStatusVoid,
}

// ParseCommissionStatus accepts only the four known values, exactly as spelled
func ParseCommissionStatus(s string) (CommissionStatus, error) {
	for _, st := range CommissionStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q, expected one of pending, approved, paid, void", s)
}

// Commission is one ledger row: what an upline earner gets for one order.
// (Order, EarnerID) is unique.
type Commission struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Order      primitive.ObjectID `json:"order" bson:"order"`
	EarnerID   primitive.ObjectID `json:"earner" bson:"earner"`
	BuyerID    primitive.ObjectID `json:"buyer" bson:"buyer"`
	Level      int                `json:"level" bson:"level"`
	BaseAmount float64            `json:"baseAmount" bson:"baseAmount"`
	Percent    float64            `json:"percent" bson:"percent"`
	Amount     float64            `json:"amount" bson:"amount"`
	Status     CommissionStatus   `json:"status" bson:"status"`
	Note       string             `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// OrderSummary is the display block attached to commission rows
type OrderSummary struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	OrderID     string             `json:"order_id,omitempty" bson:"order_id,omitempty"`
	Subtotal    *float64           `json:"subtotal,omitempty" bson:"subtotal,omitempty"`
	TotalAmount *float64           `json:"totalAmount,omitempty" bson:"totalAmount,omitempty"`
	Status      string             `json:"status,omitempty" bson:"status,omitempty"`
}

// CommissionView is a ledger row joined with its order, earner and buyer
type CommissionView struct {
	Commission `bson:",inline"`
	OrderInfo  *OrderSummary `json:"orderInfo,omitempty" bson:"orderInfo,omitempty"`
	EarnerInfo *UserSummary  `json:"earnerInfo,omitempty" bson:"earnerInfo,omitempty"`
	BuyerInfo  *UserSummary  `json:"buyerInfo,omitempty" bson:"buyerInfo,omitempty"`
}

// CommissionTotals is the amount per status; every key is always present
type CommissionTotals struct {
	PendingAmount  float64 `json:"pendingAmount"`
	ApprovedAmount float64 `json:"approvedAmount"`
	PaidAmount     float64 `json:"paidAmount"`
	VoidAmount     float64 `json:"voidAmount"`
}

// CommissionCounts is the number of entries per status
type CommissionCounts struct {
	PendingCount  int64 `json:"pendingCount"`
	ApprovedCount int64 `json:"approvedCount"`
	PaidCount     int64 `json:"paidCount"`
	VoidCount     int64 `json:"voidCount"`
}

// StatusAggregate is one $group row of the ledger grouped by status
type StatusAggregate struct {
	Status string  `bson:"_id"`
	Amount float64 `bson:"amount"`
	Count  int64   `bson:"count"`
}

// FoldStatusAggregates fills totals and counts from grouped rows, ignoring unknown statuses
func FoldStatusAggregates(rows []StatusAggregate) (CommissionTotals, CommissionCounts) {
	var totals CommissionTotals
	var counts CommissionCounts
	for _, row := range rows {
		switch CommissionStatus(row.Status) {
		case CommissionStatusPending:
			totals.PendingAmount += row.Amount
			counts.PendingCount += row.Count
		case CommissionStatusApproved:
			totals.ApprovedAmount += row.Amount
			counts.ApprovedCount += row.Count
		case CommissionStatusPaid:
			totals.PaidAmount += row.Amount
			counts.PaidCount += row.Count
		case CommissionStatusVoid:
			totals.VoidAmount += row.Amount
			counts.VoidCount += row.Count
		}
	}
	return totals, counts
}

// MyCommissions is what an earner sees on their dashboard
type MyCommissions struct {
	Totals CommissionTotals `json:"totals"`
	Counts CommissionCounts `json:"counts"`
	Recent []CommissionView `json:"recent"`
}

// UpdateCommissionStatusRequest is the admin payload to move a commission
type UpdateCommissionStatusRequest struct {
	ID     string  `json:"id" validate:"required"`
	Status string  `json:"status" validate:"required,oneof=pending approved paid void"`
	Note   *string `json:"note,omitempty"`
}
