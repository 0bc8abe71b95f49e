// routes/order_routes.go
package routes

import (
	"github.com/HSouheill/skillnera_mlm/controllers"
	"github.com/HSouheill/skillnera_mlm/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterOrderRoutes registers the admin order status route
func RegisterOrderRoutes(e *echo.Echo, jwt echo.MiddlewareFunc, orderController *controllers.OrderController) {
	orderGroup := e.Group("/api/admin/orders")
	orderGroup.Use(jwt)
	orderGroup.Use(middleware.RequireUserType("admin"))

	orderGroup.PUT("/update-status", orderController.UpdateOrderStatus)
}
