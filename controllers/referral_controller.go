package controllers

import (
	"net/http"
	"strings"

	"github.com/HSouheill/skillnera_mlm/middleware"
	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/HSouheill/skillnera_mlm/services"
	"github.com/HSouheill/skillnera_mlm/utils"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ReferralController struct {
	referrals *services.ReferralService
	log       logrus.FieldLogger
}

func NewReferralController(referrals *services.ReferralService, log logrus.FieldLogger) *ReferralController {
	return &ReferralController{referrals: referrals, log: log}
}

// AttributeReferral handles POST /api/referrals/attribute, called once right
// after registration. The code comes from the body or, failing that, from the
// ref_code cookie captured when the visitor landed.
func (rc *ReferralController) AttributeReferral(c echo.Context) error {
	log := middleware.LoggerFrom(c, rc.log)

	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized.")
	}

	var req models.ReferralRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	code := strings.TrimSpace(req.ReferralCode)
	if code == "" {
		if cookie, err := c.Cookie(utils.ReferralCookieName); err == nil {
			code, err = rc.referrals.ReferralCodeFromCookie(cookie.Value)
			if err != nil {
				log.WithError(err).Debug("ignoring invalid referral cookie")
				code = ""
			}
		}
	}

	referrer, err := rc.referrals.AttributeReferral(c.Request().Context(), userID, code)
	if err != nil {
		return respondError(c, log, err)
	}

	middleware.ClearReferralCookie(c)

	data := map[string]interface{}{"attributed": referrer != nil}
	if referrer != nil {
		data["referrer"] = models.UserSummary{
			ID:           referrer.ID,
			Name:         referrer.Name,
			ReferralCode: referrer.ReferralCode,
		}
	}

	return ok(c, "OK", data)
}

// GetMyReferralData handles GET /api/referrals/me
func (rc *ReferralController) GetMyReferralData(c echo.Context) error {
	log := middleware.LoggerFrom(c, rc.log)

	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized.")
	}

	data, err := rc.referrals.ReferralData(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, log, err)
	}

	return ok(c, "Referral data retrieved successfully", data)
}
