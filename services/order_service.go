package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommissionCreator is the engine entry point the order flow depends on
type CommissionCreator interface {
	CreateCommissionsForOrder(ctx context.Context, order models.OrderRef, eligibleAmount float64) (CommissionResult, error)
}

// OrderService applies order status changes and fires commissions on finalization
type OrderService struct {
	orders OrderStore
	engine CommissionCreator
	log    logrus.FieldLogger
}

func NewOrderService(orders OrderStore, engine CommissionCreator, log logrus.FieldLogger) *OrderService {
	return &OrderService{orders: orders, engine: engine, log: log}
}

// OrderStatusUpdate reports what an order status change did
type OrderStatusUpdate struct {
	Order       *models.Order     `json:"order"`
	Finalized   bool              `json:"finalized"`
	Commissions *CommissionResult `json:"commissions,omitempty"`
}

// UpdateStatus stores the new status and, on the first move into a finalized
// state, creates commissions. A commission failure is logged and never undoes
// or fails the status change.
func (s *OrderService) UpdateStatus(ctx context.Context, id, rawStatus string) (*OrderStatusUpdate, error) {
	orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, &ValidationError{Field: "_id", Message: "invalid order id"}
	}
	if strings.TrimSpace(rawStatus) == "" {
		return nil, &ValidationError{Field: "status", Message: "status is required"}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", id, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	prev := models.ParseOrderStatus(order.Status)
	next := models.ParseOrderStatus(rawStatus)

	if err := s.orders.UpdateStatus(ctx, orderID, rawStatus); err != nil {
		return nil, fmt.Errorf("update order %s status: %w", id, err)
	}
	order.Status = rawStatus

	out := &OrderStatusUpdate{Order: order}
	if !next.IsFinalized() || prev.IsFinalized() {
		return out, nil
	}
	out.Finalized = true

	log := s.log.WithFields(logrus.Fields{"order": orderID.Hex(), "status": next})
	result, err := s.engine.CreateCommissionsForOrder(ctx, order.Ref(), order.EligibleAmount())
	if err != nil {
		log.WithError(err).Error("mlm commission create error")
		return out, nil
	}

	out.Commissions = &result
	log.WithFields(logrus.Fields{
		"created": result.CreatedCount,
		"reason":  result.SkipReason,
	}).Info("order finalized")

	return out, nil
}
