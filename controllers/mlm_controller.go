package controllers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/HSouheill/skillnera_mlm/middleware"
	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/HSouheill/skillnera_mlm/services"
	"github.com/HSouheill/skillnera_mlm/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// MLMController serves the commission admin surface and the earner dashboard
type MLMController struct {
	reports  *services.CommissionReportService
	settings *services.SettingsService
	tree     *services.ReferralTreeService
	hub      *websocket.Hub
	log      logrus.FieldLogger
}

func NewMLMController(reports *services.CommissionReportService, settings *services.SettingsService, tree *services.ReferralTreeService, hub *websocket.Hub, log logrus.FieldLogger) *MLMController {
	return &MLMController{
		reports:  reports,
		settings: settings,
		tree:     tree,
		hub:      hub,
		log:      log,
	}
}

// ListCommissions handles GET /api/admin/mlm/commissions?status=
func (mc *MLMController) ListCommissions(c echo.Context) error {
	log := middleware.LoggerFrom(c, mc.log)

	items, err := mc.reports.ListCommissions(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return respondError(c, log, err)
	}

	return ok(c, "OK", map[string]interface{}{"items": items})
}

// UpdateCommissionStatus handles PUT /api/admin/mlm/commissions/update-status
func (mc *MLMController) UpdateCommissionStatus(c echo.Context) error {
	log := middleware.LoggerFrom(c, mc.log)

	var req models.UpdateCommissionStatusRequest
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}

	commission, err := mc.reports.UpdateCommissionStatus(c.Request().Context(), req.ID, req.Status, req.Note)
	if err != nil {
		return respondError(c, log, err)
	}

	return ok(c, "Updated.", map[string]interface{}{"commission": commission})
}

// GetSettings handles GET /api/admin/mlm/settings. settings is null until the
// first save; effective is what the engine currently applies.
func (mc *MLMController) GetSettings(c echo.Context) error {
	log := middleware.LoggerFrom(c, mc.log)
	ctx := c.Request().Context()

	stored, err := mc.settings.Stored(ctx)
	if err != nil {
		return respondError(c, log, err)
	}
	effective, err := mc.settings.Load(ctx)
	if err != nil {
		return respondError(c, log, err)
	}

	return ok(c, "OK", map[string]interface{}{
		"settings":  stored,
		"effective": effective,
	})
}

// UpdateSettings handles PUT /api/admin/mlm/settings
func (mc *MLMController) UpdateSettings(c echo.Context) error {
	log := middleware.LoggerFrom(c, mc.log)

	var req models.MLMSettingsUpdate
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}

	saved, err := mc.settings.Save(c.Request().Context(), req)
	if err != nil {
		return respondError(c, log, err)
	}

	log.WithFields(logrus.Fields{
		"enabled": saved.IsEnabled,
		"levels":  len(saved.Levels),
	}).Info("mlm settings saved")

	return ok(c, "Saved.", map[string]interface{}{"settings": saved})
}

// GetReferralTree handles GET /api/admin/mlm/referral-tree
func (mc *MLMController) GetReferralTree(c echo.Context) error {
	log := middleware.LoggerFrom(c, mc.log)

	q := ParseTreeQuery(c.QueryParams())
	tree, err := mc.tree.BuildTree(c.Request().Context(), q)
	if err != nil {
		return respondError(c, log, err)
	}

	return ok(c, "OK", models.TreeResponse{Tree: tree, Meta: q})
}

// ParseTreeQuery reads root, depth, per and includeTotals and clamps them.
// Missing or non-numeric depth and per fall back to their defaults.
func ParseTreeQuery(values url.Values) models.TreeQuery {
	q := models.TreeQuery{
		Root:          values.Get("root"),
		Depth:         intParam(values.Get("depth"), services.DefaultTreeDepth),
		PerNode:       intParam(values.Get("per"), services.DefaultTreePer),
		IncludeTotals: true,
	}
	if v := values.Get("includeTotals"); v != "" {
		q.IncludeTotals = v == "1"
	}
	return services.NormalizeTreeQuery(q)
}

func intParam(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return fallback
		}
		n = int(f)
	}
	return n
}

// MyCommissions handles GET /api/mlm/my-commissions for the authenticated user
func (mc *MLMController) MyCommissions(c echo.Context) error {
	log := middleware.LoggerFrom(c, mc.log)

	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized.")
	}

	data, err := mc.reports.MyCommissions(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, log, err)
	}

	return ok(c, "OK", data)
}

// CommissionFeed handles GET /api/admin/mlm/ws
func (mc *MLMController) CommissionFeed(c echo.Context) error {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized.")
	}

	return websocket.HandleWebSocket(c, mc.hub, userID)
}
