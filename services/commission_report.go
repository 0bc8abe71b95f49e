package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/HSouheill/skillnera_mlm/utils"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecentCommissionsLimit is how many rows an earner's dashboard shows
const RecentCommissionsLimit = 5

// CommissionReportService answers read queries over the ledger and applies
// administrative status changes
type CommissionReportService struct {
	ledger CommissionLedger
	log    logrus.FieldLogger
}

func NewCommissionReportService(ledger CommissionLedger, log logrus.FieldLogger) *CommissionReportService {
	return &CommissionReportService{ledger: ledger, log: log}
}

// TotalsByStatus sums amounts per status for one earner; missing statuses report 0
func (s *CommissionReportService) TotalsByStatus(ctx context.Context, earnerID primitive.ObjectID) (models.CommissionTotals, error) {
	rows, err := s.ledger.AggregateByStatus(ctx, earnerID)
	if err != nil {
		return models.CommissionTotals{}, fmt.Errorf("aggregate commissions for %s: %w", earnerID.Hex(), err)
	}
	totals, _ := models.FoldStatusAggregates(rows)
	return totals, nil
}

// RecentForEarner returns the newest commissions of an earner with buyer and order context
func (s *CommissionReportService) RecentForEarner(ctx context.Context, earnerID primitive.ObjectID, limit int) ([]models.CommissionView, error) {
	if limit <= 0 {
		limit = RecentCommissionsLimit
	}
	rows, err := s.ledger.RecentForEarner(ctx, earnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent commissions for %s: %w", earnerID.Hex(), err)
	}
	if rows == nil {
		rows = []models.CommissionView{}
	}
	return rows, nil
}

// MyCommissions builds an earner's dashboard: totals, counts and recent rows
func (s *CommissionReportService) MyCommissions(ctx context.Context, earnerID primitive.ObjectID) (*models.MyCommissions, error) {
	rows, err := s.ledger.AggregateByStatus(ctx, earnerID)
	if err != nil {
		return nil, fmt.Errorf("aggregate commissions for %s: %w", earnerID.Hex(), err)
	}
	totals, counts := models.FoldStatusAggregates(rows)

	recent, err := s.RecentForEarner(ctx, earnerID, RecentCommissionsLimit)
	if err != nil {
		return nil, err
	}

	return &models.MyCommissions{Totals: totals, Counts: counts, Recent: recent}, nil
}

// ListCommissions returns every commission, newest first, optionally filtered by status
func (s *CommissionReportService) ListCommissions(ctx context.Context, rawStatus string) ([]models.CommissionView, error) {
	var filter *models.CommissionStatus
	if rawStatus = strings.TrimSpace(rawStatus); rawStatus != "" {
		st, err := models.ParseCommissionStatus(rawStatus)
		if err != nil {
			return nil, &ValidationError{Field: "status", Message: err.Error()}
		}
		filter = &st
	}

	rows, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list commissions: %w", err)
	}
	if rows == nil {
		rows = []models.CommissionView{}
	}
	return rows, nil
}

// UpdateCommissionStatus moves a commission to any of the four statuses.
// No transition order is enforced; payouts are reconciled out of band.
// An empty note leaves the stored note unchanged.
func (s *CommissionReportService) UpdateCommissionStatus(ctx context.Context, id, rawStatus string, note *string) (*models.Commission, error) {
	objID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, &ValidationError{Field: "id", Message: "invalid commission id"}
	}

	status, err := models.ParseCommissionStatus(rawStatus)
	if err != nil {
		return nil, &ValidationError{Field: "status", Message: err.Error()}
	}

	if note != nil {
		clean := utils.SanitizeNote(*note)
		note = &clean
		if clean == "" {
			note = nil
		}
	}

	updated, err := s.ledger.UpdateStatus(ctx, objID, status, note)
	if err != nil {
		return nil, fmt.Errorf("update commission %s: %w", id, err)
	}
	if updated == nil {
		return nil, ErrCommissionNotFound
	}

	s.log.WithFields(logrus.Fields{
		"commission": objID.Hex(),
		"status":     status,
	}).Info("commission status updated")

	return updated, nil
}
