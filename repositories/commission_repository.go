package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/HSouheill/skillnera_mlm/config"
	"github.com/HSouheill/skillnera_mlm/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommissionRepository is the Mongo-backed commission ledger
type CommissionRepository struct {
	collection *mongo.Collection
}

func NewCommissionRepository(db *mongo.Database) *CommissionRepository {
	return &CommissionRepository{
		collection: db.Collection(config.CommissionsCollection),
	}
}

// ExistsForOrder reports whether any commission was recorded for the order
func (r *CommissionRepository) ExistsForOrder(ctx context.Context, orderID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"order": orderID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertIfAbsent upserts on (order, earner) with $setOnInsert so an existing row
// is never touched. Losing a race on the unique index counts as not inserted.
func (r *CommissionRepository) InsertIfAbsent(ctx context.Context, c *models.Commission) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"order": c.Order, "earner": c.EarnerID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"order":      c.Order,
			"earner":     c.EarnerID,
			"buyer":      c.BuyerID,
			"level":      c.Level,
			"baseAmount": c.BaseAmount,
			"percent":    c.Percent,
			"amount":     c.Amount,
			"status":     c.Status,
			"createdAt":  c.CreatedAt,
			"updatedAt":  c.UpdatedAt,
		},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if res.UpsertedCount == 0 {
		return false, nil
	}

	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		c.ID = id
	}
	return true, nil
}

// AggregateByStatus sums amount and counts rows per status for one earner
func (r *CommissionRepository) AggregateByStatus(ctx context.Context, earnerID primitive.ObjectID) ([]models.StatusAggregate, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"earner": earnerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$status",
			"amount": bson.M{"$sum": "$amount"},
			"count":  bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []models.StatusAggregate{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// RecentForEarner returns the earner's latest rows with order and buyer attached
func (r *CommissionRepository) RecentForEarner(ctx context.Context, earnerID primitive.ObjectID, limit int) ([]models.CommissionView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"earner": earnerID}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: int64(limit)}},
	}
	pipeline = append(pipeline, orderLookup()...)
	pipeline = append(pipeline, userLookup("buyer", "buyerInfo")...)
	return r.aggregateViews(ctx, pipeline)
}

// List returns every row, newest first, optionally filtered by status, joined
// with order, earner and buyer
func (r *CommissionRepository) List(ctx context.Context, status *models.CommissionStatus) ([]models.CommissionView, error) {
	match := bson.M{}
	if status != nil {
		match["status"] = *status
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}
	pipeline = append(pipeline, orderLookup()...)
	pipeline = append(pipeline, userLookup("earner", "earnerInfo")...)
	pipeline = append(pipeline, userLookup("buyer", "buyerInfo")...)
	return r.aggregateViews(ctx, pipeline)
}

func (r *CommissionRepository) aggregateViews(ctx context.Context, pipeline mongo.Pipeline) ([]models.CommissionView, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	views := []models.CommissionView{}
	if err := cursor.All(ctx, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// UpdateStatus sets status, and note when given, returning the updated row or
// nil when the id is unknown
func (r *CommissionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.CommissionStatus, note *string) (*models.Commission, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	set := bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}
	if note != nil {
		set["note"] = *note
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c models.Commission
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func orderLookup() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         config.OrdersCollection,
			"localField":   "order",
			"foreignField": "_id",
			"as":           "orderInfo",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$orderInfo",
			"preserveNullAndEmptyArrays": true,
		}}},
	}
}

func userLookup(localField, as string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         config.UsersCollection,
			"localField":   localField,
			"foreignField": "_id",
			"as":           as,
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$" + as,
			"preserveNullAndEmptyArrays": true,
		}}},
	}
}
