package controllers

import (
	"github.com/HSouheill/skillnera_mlm/middleware"
	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/HSouheill/skillnera_mlm/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type OrderController struct {
	orders *services.OrderService
	log    logrus.FieldLogger
}

func NewOrderController(orders *services.OrderService, log logrus.FieldLogger) *OrderController {
	return &OrderController{orders: orders, log: log}
}

// UpdateOrderStatus handles PUT /api/admin/orders/update-status. Moving an
// order into delivered, completed or paid the first time creates commissions;
// a commission failure never fails the status change.
func (oc *OrderController) UpdateOrderStatus(c echo.Context) error {
	log := middleware.LoggerFrom(c, oc.log)

	var req models.UpdateOrderStatusRequest
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}

	update, err := oc.orders.UpdateStatus(c.Request().Context(), req.ID, req.Status)
	if err != nil {
		return respondError(c, log, err)
	}

	return ok(c, "Order status updated successfully.", update)
}
