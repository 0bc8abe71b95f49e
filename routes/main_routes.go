package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/skillnera_mlm/controllers"
)

// Controllers groups every HTTP handler set the API exposes
type Controllers struct {
	MLM      *controllers.MLMController
	Order    *controllers.OrderController
	Referral *controllers.ReferralController
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, jwt echo.MiddlewareFunc, c Controllers) {
	RegisterMLMRoutes(e, jwt, c.MLM)
	RegisterOrderRoutes(e, jwt, c.Order)
	RegisterReferralRoutes(e, jwt, c.Referral)
}
