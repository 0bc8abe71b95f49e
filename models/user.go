// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Avatar holds the uploaded profile picture reference
type Avatar struct {
	URL      string `json:"url,omitempty" bson:"url,omitempty"`
	PublicID string `json:"public_id,omitempty" bson:"public_id,omitempty"`
}

// User model. Only the referral-relevant fields are mapped; the rest of the
// account document is owned by the auth service.
type User struct {
	ID           primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Role         string              `json:"role,omitempty" bson:"role,omitempty"` // "user", "admin"
	Name         string              `json:"name" bson:"name"`
	Email        string              `json:"email" bson:"email"`
	Avatar       *Avatar             `json:"avatar,omitempty" bson:"avatar,omitempty"`
	ReferralCode string              `json:"referralCode,omitempty" bson:"referralCode,omitempty"`
	ReferredBy   *primitive.ObjectID `json:"referredBy,omitempty" bson:"referredBy,omitempty"`
	ReferredAt   *time.Time          `json:"referredAt,omitempty" bson:"referredAt,omitempty"`
	MLMActive    bool                `json:"mlmActive" bson:"mlmActive"`
	DeletedAt    *time.Time          `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// ReferralNode is the projection the commission engine needs to walk the upline
type ReferralNode struct {
	ID         primitive.ObjectID  `json:"id" bson:"_id"`
	ReferredBy *primitive.ObjectID `json:"referredBy,omitempty" bson:"referredBy,omitempty"`
	MLMActive  bool                `json:"mlmActive" bson:"mlmActive"`
}

// ReferralMember is the projection used when rendering the referral tree
type ReferralMember struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	ReferralCode string             `json:"referralCode,omitempty" bson:"referralCode,omitempty"`
	Avatar       *Avatar            `json:"avatar,omitempty" bson:"avatar,omitempty"`
	MLMActive    bool               `json:"mlmActive" bson:"mlmActive"`
	ReferredAt   *time.Time         `json:"referredAt,omitempty" bson:"referredAt,omitempty"`
}

// AvatarURL returns the avatar url or an empty string
func (m *ReferralMember) AvatarURL() string {
	if m == nil || m.Avatar == nil {
		return ""
	}
	return m.Avatar.URL
}

// UserSummary is the display block attached to commission rows
type UserSummary struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	ReferralCode string             `json:"referralCode,omitempty" bson:"referralCode,omitempty"`
}

type ReferralRequest struct {
	ReferralCode string `json:"referralCode"`
}

// ReferralData is returned to a user asking for their own referral details
type ReferralData struct {
	ReferralCode  string `json:"referralCode"`
	ReferralLink  string `json:"referralLink"`
	ReferralCount int64  `json:"referralCount"`
	QRCode        string `json:"qrCode,omitempty"`
	MLMActive     bool   `json:"mlmActive"`
}
