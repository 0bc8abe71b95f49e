package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/HSouheill/skillnera_mlm/utils"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const maxReferralParamLength = 64

// CaptureReferral stores a signed ref_code cookie whenever a request carries
// ?ref=CODE. The code is only checked when the visitor later registers.
func CaptureReferral(secret []byte, ttl time.Duration, log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ref := strings.TrimSpace(c.QueryParam("ref"))
			if ref == "" || len(ref) > maxReferralParamLength {
				return next(c)
			}

			token, err := utils.SignReferralToken(secret, ref, ttl)
			if err != nil {
				log.WithError(err).Warn("referral cookie not set")
				return next(c)
			}

			c.SetCookie(&http.Cookie{
				Name:     utils.ReferralCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   c.IsTLS(),
				SameSite: http.SameSiteLaxMode,
			})

			return next(c)
		}
	}
}

// ClearReferralCookie expires the ref_code cookie once it has been consumed
func ClearReferralCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     utils.ReferralCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
