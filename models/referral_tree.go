package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TreeNode is one user in a rendered referral tree
type TreeNode struct {
	ID            primitive.ObjectID `json:"id"`
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	ReferralCode  string             `json:"referralCode,omitempty"`
	Avatar        *string            `json:"avatar"`
	MLMActive     bool               `json:"mlmActive"`
	ReferredAt    *time.Time         `json:"referredAt,omitempty"`
	ChildrenCount int64              `json:"childrenCount"`
	Totals        *CommissionTotals  `json:"totals,omitempty"`
	Children      []*TreeNode        `json:"children"`
}

// TreeQuery bounds a referral tree build
type TreeQuery struct {
	Root          string `json:"root"`
	Depth         int    `json:"depth"`
	PerNode       int    `json:"per"`
	IncludeTotals bool   `json:"includeTotals"`
}

// TreeResponse is returned by the referral tree endpoint
type TreeResponse struct {
	Tree *TreeNode `json:"tree"`
	Meta TreeQuery `json:"meta"`
}
