package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the closed set of order states known to the commission flow
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusUnverified OrderStatus = "unverified"
	OrderStatusUnknown    OrderStatus = "unknown"
)

var orderStatusAliases = map[string]OrderStatus{
	"pending":    OrderStatusPending,
	"processing": OrderStatusProcessing,
	"shipped":    OrderStatusShipped,
	"delivered":  OrderStatusDelivered,
	"deliverd":   OrderStatusDelivered, // historical misspelling still present in stored orders
	"completed":  OrderStatusCompleted,
	"paid":       OrderStatusPaid,
	"cancelled":  OrderStatusCancelled,
	"canceled":   OrderStatusCancelled,
	"unverified": OrderStatusUnverified,
}

// ParseOrderStatus normalizes a raw status string once at the order boundary
func ParseOrderStatus(raw string) OrderStatus {
	if st, ok := orderStatusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return st
	}
	return OrderStatusUnknown
}

// IsFinalized reports whether commissions are due for an order in this state
func (s OrderStatus) IsFinalized() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCompleted, OrderStatusPaid:
		return true
	}
	return false
}

// Order is the slice of the storefront order document the commission flow reads
type Order struct {
	ID          primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	OrderID     string              `json:"order_id,omitempty" bson:"order_id,omitempty"`
	UserID      *primitive.ObjectID `json:"user,omitempty" bson:"user,omitempty"`
	Subtotal    *float64            `json:"subtotal,omitempty" bson:"subtotal,omitempty"`
	TotalAmount *float64            `json:"totalAmount,omitempty" bson:"totalAmount,omitempty"`
	Status      string              `json:"status" bson:"status"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// EligibleAmount is the base commissions are computed on: subtotal when recorded, else total
func (o *Order) EligibleAmount() float64 {
	if o.Subtotal != nil {
		return *o.Subtotal
	}
	if o.TotalAmount != nil {
		return *o.TotalAmount
	}
	return 0
}

// Ref is the reference handed to the commission engine
func (o *Order) Ref() OrderRef {
	return OrderRef{ID: o.ID, BuyerID: o.UserID}
}

// OrderRef identifies a finalized order and its buyer
type OrderRef struct {
	ID      primitive.ObjectID
	BuyerID *primitive.ObjectID
}

// UpdateOrderStatusRequest is the admin payload to move an order
type UpdateOrderStatusRequest struct {
	ID     string `json:"_id" validate:"required"`
	Status string `json:"status" validate:"required"`
}
