package services

import (
	"context"
	"fmt"
	"time"

	"github.com/HSouheill/skillnera_mlm/models"
)

// SettingsLoader yields the settings in effect right now
type SettingsLoader interface {
	Load(ctx context.Context) (models.MLMSettings, error)
}

// SettingsService reads and writes the commission settings singleton.
// It never caches: every Load goes to the store.
type SettingsService struct {
	store    SettingsStore
	defaults models.MLMSettings
	now      func() time.Time
}

// NewSettingsService creates a settings service with the built-in defaults
func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{
		store:    store,
		defaults: models.DefaultMLMSettings(),
		now:      time.Now,
	}
}

// Load returns the stored settings, or the defaults when nothing was saved.
// The defaults are not persisted.
func (s *SettingsService) Load(ctx context.Context) (models.MLMSettings, error) {
	stored, err := s.store.Find(ctx)
	if err != nil {
		return models.MLMSettings{}, fmt.Errorf("load mlm settings: %w", err)
	}
	if stored == nil {
		return s.Defaults(), nil
	}
	return *stored, nil
}

// Stored returns the persisted document or nil
func (s *SettingsService) Stored(ctx context.Context) (*models.MLMSettings, error) {
	stored, err := s.store.Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mlm settings: %w", err)
	}
	return stored, nil
}

// Defaults returns a copy of the built-in settings
func (s *SettingsService) Defaults() models.MLMSettings {
	d := s.defaults
	d.Levels = append([]models.CommissionLevel(nil), s.defaults.Levels...)
	return d
}

// Save upserts a partial update. Supplied levels are normalized first; fields
// absent from the update keep their stored value, or get the default on first save.
func (s *SettingsService) Save(ctx context.Context, update models.MLMSettingsUpdate) (*models.MLMSettings, error) {
	if update.MinOrderAmount != nil && *update.MinOrderAmount < 0 {
		return nil, &ValidationError{Field: "minOrderAmount", Message: "must be greater than or equal to 0"}
	}

	now := s.now()
	d := s.Defaults()

	set := map[string]interface{}{"updatedAt": now}
	setOnInsert := map[string]interface{}{"createdAt": now}

	if update.IsEnabled != nil {
		set["isEnabled"] = *update.IsEnabled
	} else {
		setOnInsert["isEnabled"] = d.IsEnabled
	}

	if update.Levels != nil {
		set["levels"] = models.NormalizeLevels(update.Levels)
	} else {
		setOnInsert["levels"] = d.Levels
	}

	if update.MinOrderAmount != nil {
		set["minOrderAmount"] = *update.MinOrderAmount
	} else {
		setOnInsert["minOrderAmount"] = d.MinOrderAmount
	}

	if update.PreventSelfReferral != nil {
		set["preventSelfReferral"] = *update.PreventSelfReferral
	} else {
		setOnInsert["preventSelfReferral"] = d.PreventSelfReferral
	}

	if update.OneCommissionPerOrder != nil {
		set["oneCommissionPerOrder"] = *update.OneCommissionPerOrder
	} else {
		setOnInsert["oneCommissionPerOrder"] = d.OneCommissionPerOrder
	}

	saved, err := s.store.Upsert(ctx, set, setOnInsert)
	if err != nil {
		return nil, fmt.Errorf("save mlm settings: %w", err)
	}
	return saved, nil
}
