package controllers

import (
	"errors"
	"net/http"

	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/HSouheill/skillnera_mlm/services"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func ok(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
	})
}

// respondError maps service errors onto the response envelope. Unexpected
// errors are logged and never leak their text.
func respondError(c echo.Context, log logrus.FieldLogger, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: verr.Message,
			Data:    map[string]string{"field": verr.Field},
		})
	case errors.Is(err, services.ErrRootNotFound):
		return fail(c, http.StatusNotFound, "Root user not found. Search by email, referral code, or user ID.")
	case errors.Is(err, services.ErrCommissionNotFound):
		return fail(c, http.StatusNotFound, "Commission not found.")
	case errors.Is(err, services.ErrOrderNotFound):
		return fail(c, http.StatusNotFound, "Order not found.")
	case errors.Is(err, services.ErrUserNotFound):
		return fail(c, http.StatusNotFound, "User not found.")
	case errors.Is(err, services.ErrReferralAlreadySet):
		return fail(c, http.StatusConflict, "Referrer is already set for this account.")
	}

	log.WithError(err).WithField("path", c.Path()).Error("request failed")
	return fail(c, http.StatusInternalServerError, "Internal server error")
}

// bindAndValidate decodes the body into req and runs the registered validator.
// When it returns false the error response has already been written.
func bindAndValidate(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(req); err != nil {
			return false, c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Validation failed",
				Data:    err.Error(),
			})
		}
	}
	return true, nil
}
