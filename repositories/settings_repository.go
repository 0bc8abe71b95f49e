package repositories

import (
	"context"
	"errors"

	"github.com/HSouheill/skillnera_mlm/config"
	"github.com/HSouheill/skillnera_mlm/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SettingsRepository stores the single mlm_settings document
type SettingsRepository struct {
	collection *mongo.Collection
}

func NewSettingsRepository(db *mongo.Database) *SettingsRepository {
	return &SettingsRepository{
		collection: db.Collection(config.SettingsCollection),
	}
}

// Find returns the settings document, nil when none was ever saved
func (r *SettingsRepository) Find(ctx context.Context) (*models.MLMSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var s models.MLMSettings
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert applies set to the document, creating it with setOnInsert if missing,
// and returns the document after the update
func (r *SettingsRepository) Upsert(ctx context.Context, set map[string]interface{}, setOnInsert map[string]interface{}) (*models.MLMSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M(set)}
	if len(setOnInsert) > 0 {
		update["$setOnInsert"] = bson.M(setOnInsert)
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var s models.MLMSettings
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{}, update, opts).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
