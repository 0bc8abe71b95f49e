package services

import (
	"context"
	"fmt"
	"time"

	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/HSouheill/skillnera_mlm/utils"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SkipReason explains why an order produced no commissions. Skips are normal outcomes, not errors.
type SkipReason string

const (
	SkipDisabled       SkipReason = "disabled"
	SkipBelowMin       SkipReason = "below-min"
	SkipAlreadyCreated SkipReason = "already-created"
	SkipNoBuyer        SkipReason = "no-buyer"
	SkipNoReferrer     SkipReason = "no-referrer"
	SkipSelfReferral   SkipReason = "self-ref"
	SkipNoLevels       SkipReason = "no-levels"
)

// CommissionResult is the outcome of one engine invocation
type CommissionResult struct {
	CreatedCount int        `json:"created"`
	SkipReason   SkipReason `json:"reason,omitempty"`
}

// CommissionNotifier is told about every ledger entry the engine inserts
type CommissionNotifier interface {
	NotifyCommissionCreated(c models.Commission)
}

// CommissionEngine turns a finalized order into upline commissions
type CommissionEngine struct {
	settings SettingsLoader
	graph    ReferralGraph
	ledger   CommissionLedger
	notifier CommissionNotifier
	metrics  *Metrics
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewCommissionEngine wires the engine. notifier and metrics may be nil.
func NewCommissionEngine(settings SettingsLoader, graph ReferralGraph, ledger CommissionLedger, notifier CommissionNotifier, metrics *Metrics, log logrus.FieldLogger) *CommissionEngine {
	return &CommissionEngine{
		settings: settings,
		graph:    graph,
		ledger:   ledger,
		notifier: notifier,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// CreateCommissionsForOrder walks the buyer's upline and records one pending
// commission per active ancestor and configured level. Calling it again for the
// same order never adds rows: the (order, earner) insert is conditional.
// Only store failures are returned as errors; the result then holds the rows
// inserted before the failure.
func (e *CommissionEngine) CreateCommissionsForOrder(ctx context.Context, order models.OrderRef, eligibleAmount float64) (CommissionResult, error) {
	log := e.log.WithField("order", order.ID.Hex())

	s, err := e.settings.Load(ctx)
	if err != nil {
		e.metrics.engineError()
		return CommissionResult{}, err
	}

	if !s.IsEnabled {
		return e.skip(log, SkipDisabled), nil
	}
	if eligibleAmount < s.MinOrderAmount {
		return e.skip(log, SkipBelowMin), nil
	}

	// cheap pre-check only; the conditional insert below is what guarantees uniqueness
	if s.OneCommissionPerOrder {
		exists, err := e.ledger.ExistsForOrder(ctx, order.ID)
		if err != nil {
			e.metrics.engineError()
			return CommissionResult{}, fmt.Errorf("check existing commissions: %w", err)
		}
		if exists {
			return e.skip(log, SkipAlreadyCreated), nil
		}
	}

	if order.BuyerID == nil || order.BuyerID.IsZero() {
		return e.skip(log, SkipNoBuyer), nil
	}
	buyerID := *order.BuyerID

	buyer, err := e.graph.GetDirectReferrer(ctx, buyerID)
	if err != nil {
		e.metrics.engineError()
		return CommissionResult{}, fmt.Errorf("load buyer %s: %w", buyerID.Hex(), err)
	}
	if buyer == nil || buyer.ReferredBy == nil {
		return e.skip(log, SkipNoReferrer), nil
	}

	if s.PreventSelfReferral && *buyer.ReferredBy == buyerID {
		return e.skip(log, SkipSelfReferral), nil
	}

	maxLevels := len(s.Levels)
	if maxLevels == 0 {
		return e.skip(log, SkipNoLevels), nil
	}

	chain, err := e.UplineChain(ctx, buyer, maxLevels)
	if err != nil {
		e.metrics.engineError()
		return CommissionResult{}, err
	}

	result := CommissionResult{}
	for i, earner := range chain {
		if !earner.MLMActive {
			continue
		}
		if i >= len(s.Levels) {
			break
		}

		percent := s.Levels[i].Percent
		if percent <= 0 {
			continue
		}

		amount := utils.PercentOf(eligibleAmount, percent)
		if amount <= 0 {
			continue
		}

		now := e.now()
		entry := models.Commission{
			Order:      order.ID,
			EarnerID:   earner.ID,
			BuyerID:    buyerID,
			Level:      i + 1,
			BaseAmount: eligibleAmount,
			Percent:    percent,
			Amount:     amount,
			Status:     models.CommissionStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		inserted, err := e.ledger.InsertIfAbsent(ctx, &entry)
		if err != nil {
			e.metrics.engineError()
			return result, fmt.Errorf("insert level %d commission for %s: %w", i+1, earner.ID.Hex(), err)
		}
		if !inserted {
			continue
		}

		result.CreatedCount++
		e.metrics.created(entry.Level)
		log.WithFields(logrus.Fields{
			"earner": earner.ID.Hex(),
			"level":  entry.Level,
			"amount": amount,
		}).Info("commission created")

		if e.notifier != nil {
			e.notifier.NotifyCommissionCreated(entry)
		}
	}

	return result, nil
}

// UplineChain follows referredBy from start for at most maxLevels hops.
// A visited set of ancestor ids stops the walk on a corrupted (cyclic) graph.
func (e *CommissionEngine) UplineChain(ctx context.Context, start *models.ReferralNode, maxLevels int) ([]*models.ReferralNode, error) {
	visited := make(map[primitive.ObjectID]struct{}, maxLevels)
	chain := make([]*models.ReferralNode, 0, maxLevels)

	current := start
	for current != nil && len(chain) < maxLevels {
		if current.ReferredBy == nil {
			break
		}
		refID := *current.ReferredBy
		if _, seen := visited[refID]; seen {
			e.log.WithField("user", refID.Hex()).Warn("referral cycle detected, upline walk stopped")
			break
		}
		visited[refID] = struct{}{}

		ref, err := e.graph.GetDirectReferrer(ctx, refID)
		if err != nil {
			return nil, fmt.Errorf("load upline %s: %w", refID.Hex(), err)
		}
		if ref == nil {
			break
		}

		chain = append(chain, ref)
		current = ref
	}

	return chain, nil
}

func (e *CommissionEngine) skip(log logrus.FieldLogger, reason SkipReason) CommissionResult {
	e.metrics.skipped(reason)
	log.WithField("reason", reason).Debug("no commissions created")
	return CommissionResult{SkipReason: reason}
}
