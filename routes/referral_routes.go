// routes/referral_routes.go
package routes

import (
	"github.com/HSouheill/skillnera_mlm/controllers"
	"github.com/labstack/echo/v4"
)

// RegisterReferralRoutes registers the authenticated referral routes
func RegisterReferralRoutes(e *echo.Echo, jwt echo.MiddlewareFunc, referralController *controllers.ReferralController) {
	referralGroup := e.Group("/api/referrals")
	referralGroup.Use(jwt)

	referralGroup.POST("/attribute", referralController.AttributeReferral)
	referralGroup.GET("/me", referralController.GetMyReferralData)
}
