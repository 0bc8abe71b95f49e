package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommissionLevel is the percentage paid at one depth of the upline.
// Index 0 of MLMSettings.Levels is level 1, the direct referrer.
type CommissionLevel struct {
	Level   int     `json:"level" bson:"level"`
	Percent float64 `json:"percent" bson:"percent"`
}

// MLMSettings is the singleton commission configuration document
type MLMSettings struct {
	ID                    primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	IsEnabled             bool               `json:"isEnabled" bson:"isEnabled"`
	Levels                []CommissionLevel  `json:"levels" bson:"levels"`
	MinOrderAmount        float64            `json:"minOrderAmount" bson:"minOrderAmount"`
	PreventSelfReferral   bool               `json:"preventSelfReferral" bson:"preventSelfReferral"`
	OneCommissionPerOrder bool               `json:"oneCommissionPerOrder" bson:"oneCommissionPerOrder"`
	CreatedAt             time.Time          `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt             time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// DefaultMLMSettings is used whenever no settings document has been saved yet.
// It is never written to the database on its own.
func DefaultMLMSettings() MLMSettings {
	return MLMSettings{
		IsEnabled: true,
		Levels: []CommissionLevel{
			{Level: 1, Percent: 5},
			{Level: 2, Percent: 3},
			{Level: 3, Percent: 2},
		},
		MinOrderAmount:        0,
		PreventSelfReferral:   true,
		OneCommissionPerOrder: true,
	}
}

// LevelInput is one raw level entry of a settings update; both fields may be missing
type LevelInput struct {
	Level   *int     `json:"level,omitempty"`
	Percent *float64 `json:"percent,omitempty"`
}

// MLMSettingsUpdate is a partial settings payload. Nil fields are left untouched.
type MLMSettingsUpdate struct {
	IsEnabled             *bool        `json:"isEnabled,omitempty"`
	Levels                []LevelInput `json:"levels,omitempty"`
	MinOrderAmount        *float64     `json:"minOrderAmount,omitempty" validate:"omitempty,gte=0"`
	PreventSelfReferral   *bool        `json:"preventSelfReferral,omitempty"`
	OneCommissionPerOrder *bool        `json:"oneCommissionPerOrder,omitempty"`
}

// NormalizeLevels coerces a missing level to its 1-based position, defaults a
// missing percent to 0 and drops entries with level <= 0 or a negative percent.
func NormalizeLevels(in []LevelInput) []CommissionLevel {
	out := make([]CommissionLevel, 0, len(in))
	for i, lv := range in {
		level := i + 1
		if lv.Level != nil {
			level = *lv.Level
		}
		percent := 0.0
		if lv.Percent != nil {
			percent = *lv.Percent
		}
		if level <= 0 || percent < 0 {
			continue
		}
		out = append(out, CommissionLevel{Level: level, Percent: percent})
	}
	return out
}
