// routes/mlm_routes.go
package routes

import (
	"github.com/HSouheill/skillnera_mlm/controllers"
	"github.com/HSouheill/skillnera_mlm/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterMLMRoutes registers the commission admin routes and the earner dashboard
func RegisterMLMRoutes(e *echo.Echo, jwt echo.MiddlewareFunc, mlmController *controllers.MLMController) {
	adminGroup := e.Group("/api/admin/mlm")
	adminGroup.Use(jwt)
	adminGroup.Use(middleware.RequireUserType("admin"))

	adminGroup.GET("/commissions", mlmController.ListCommissions)
	adminGroup.PUT("/commissions/update-status", mlmController.UpdateCommissionStatus)
	adminGroup.GET("/settings", mlmController.GetSettings)
	adminGroup.PUT("/settings", mlmController.UpdateSettings)
	adminGroup.GET("/referral-tree", mlmController.GetReferralTree)
	adminGroup.GET("/ws", mlmController.CommissionFeed)

	userGroup := e.Group("/api/mlm")
	userGroup.Use(jwt)

	userGroup.GET("/my-commissions", mlmController.MyCommissions)
}
