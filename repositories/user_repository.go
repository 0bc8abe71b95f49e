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

const queryTimeout = 10 * time.Second

var (
	referralNodeProjection = bson.M{"_id": 1, "referredBy": 1, "mlmActive": 1}
	memberProjection       = bson.M{
		"name":         1,
		"email":        1,
		"referralCode": 1,
		"avatar.url":   1,
		"mlmActive":    1,
		"referredAt":   1,
	}
)

// UserRepository is the referral graph over the users collection
type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection(config.UsersCollection),
	}
}

// GetDirectReferrer returns the user's node; its ReferredBy is the direct upline
func (r *UserRepository) GetDirectReferrer(ctx context.Context, userID primitive.ObjectID) (*models.ReferralNode, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var node models.ReferralNode
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}, options.FindOne().SetProjection(referralNodeProjection)).Decode(&node)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// GetDirectChildren returns up to limit users referred by userID, newest first
func (r *UserRepository) GetDirectChildren(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.ReferralMember, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().
		SetProjection(memberProjection).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"referredBy": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	children := []models.ReferralMember{}
	if err := cursor.All(ctx, &children); err != nil {
		return nil, err
	}
	return children, nil
}

// CountDirectChildren counts every user referred by userID
func (r *UserRepository) CountDirectChildren(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{"referredBy": userID})
}

// ResolveUserByIdentifier matches identifier as a user id, then a referral code, then an email
func (r *UserRepository) ResolveUserByIdentifier(ctx context.Context, identifier string) (*models.ReferralMember, error) {
	if identifier == "" {
		return nil, nil
	}

	filters := make([]bson.M, 0, 3)
	if objID, err := primitive.ObjectIDFromHex(identifier); err == nil {
		filters = append(filters, bson.M{"_id": objID})
	}
	filters = append(filters, bson.M{"referralCode": identifier}, bson.M{"email": identifier})

	for _, filter := range filters {
		member, err := r.findMember(ctx, filter)
		if err != nil {
			return nil, err
		}
		if member != nil {
			return member, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) findMember(ctx context.Context, filter bson.M) (*models.ReferralMember, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var member models.ReferralMember
	err := r.collection.FindOne(ctx, filter, options.FindOne().SetProjection(memberProjection)).Decode(&member)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByID loads a user, nil when absent
func (r *UserRepository) FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return r.findUser(ctx, bson.M{"_id": userID})
}

// FindActiveByReferralCode returns the mlm-active owner of code, nil when absent
func (r *UserRepository) FindActiveByReferralCode(ctx context.Context, code string) (*models.User, error) {
	return r.findUser(ctx, bson.M{"referralCode": code, "mlmActive": true})
}

func (r *UserRepository) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user models.User
	err := r.collection.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"password": 0})).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ReferralCodeExists reports whether any user already holds code
func (r *UserRepository) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"referralCode": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetReferralCode assigns code to a user that has none. A collision on the
// unique index is reported as not set rather than as an error.
func (r *UserRepository) SetReferralCode(ctx context.Context, userID primitive.ObjectID, code string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"_id":          userID,
		"referralCode": bson.M{"$in": bson.A{nil, ""}},
	}
	update := bson.M{
		"$set": bson.M{
			"referralCode": code,
			"updatedAt":    time.Now(),
		},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// SetReferredBy records the upline of a user that has none yet
func (r *UserRepository) SetReferredBy(ctx context.Context, userID, referrerID primitive.ObjectID, at time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"_id":        userID,
		"referredBy": nil,
	}
	update := bson.M{
		"$set": bson.M{
			"referredBy": referrerID,
			"referredAt": at,
			"updatedAt":  at,
		},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
