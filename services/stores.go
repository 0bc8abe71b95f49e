package services

import (
	"context"
	"time"

	"github.com/HSouheill/skillnera_mlm/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReferralGraph is the read side of the user referral graph.
// Lookups that find nothing return (nil, nil).
type ReferralGraph interface {
	// GetDirectReferrer returns the user's own node, whose ReferredBy is the direct upline
	GetDirectReferrer(ctx context.Context, userID primitive.ObjectID) (*models.ReferralNode, error)
	// GetDirectChildren returns at most limit users referred by userID, newest first
	GetDirectChildren(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.ReferralMember, error)
	CountDirectChildren(ctx context.Context, userID primitive.ObjectID) (int64, error)
	// ResolveUserByIdentifier tries user id, then referral code, then email
	ResolveUserByIdentifier(ctx context.Context, identifier string) (*models.ReferralMember, error)
}

// ReferralWriter holds the few writes the referral flow makes on user records
type ReferralWriter interface {
	FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	FindActiveByReferralCode(ctx context.Context, code string) (*models.User, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
	// SetReferralCode sets code only when the user has none; reports whether it was set
	SetReferralCode(ctx context.Context, userID primitive.ObjectID, code string) (bool, error)
	// SetReferredBy sets the upline only when none is recorded; reports whether it was set
	SetReferredBy(ctx context.Context, userID, referrerID primitive.ObjectID, at time.Time) (bool, error)
}

// SettingsStore persists the singleton commission settings document
type SettingsStore interface {
	// Find returns nil when no settings were ever saved
	Find(ctx context.Context) (*models.MLMSettings, error)
	Upsert(ctx context.Context, set map[string]interface{}, setOnInsert map[string]interface{}) (*models.MLMSettings, error)
}

// CommissionLedger is the commission ledger
type CommissionLedger interface {
	ExistsForOrder(ctx context.Context, orderID primitive.ObjectID) (bool, error)
	// InsertIfAbsent atomically inserts c unless a row for (c.Order, c.EarnerID) exists.
	// It reports whether this call inserted the row.
	InsertIfAbsent(ctx context.Context, c *models.Commission) (bool, error)
	AggregateByStatus(ctx context.Context, earnerID primitive.ObjectID) ([]models.StatusAggregate, error)
	RecentForEarner(ctx context.Context, earnerID primitive.ObjectID, limit int) ([]models.CommissionView, error)
	List(ctx context.Context, status *models.CommissionStatus) ([]models.CommissionView, error)
	// UpdateStatus returns nil when no row has the id
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.CommissionStatus, note *string) (*models.Commission, error)
}

// OrderStore is the order collaborator's persistence
type OrderStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
}
