package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/memberdesk/accounts-api/internal/api/metrics"
	"github.com/memberdesk/accounts-api/internal/core/domain"
)

const accountCollection = "accounts"

// AccountRepository persists accounts in a single MongoDB collection.
// Token redemption relies on FindOneAndUpdate so that lookup and clear are a
// single atomic step; a concurrent second redemption of the same token sees
// no matching document.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

// EnsureIndexes creates the unique email index. Call once at startup.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

type mongoAccount struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Email             string             `bson:"email"`
	PasswordHash      string             `bson:"password_hash,omitempty"`
	FullName          string             `bson:"full_name"`
	Verified          bool               `bson:"verified"`
	VerificationToken string             `bson:"verification_token,omitempty"`
	ResetToken        string             `bson:"reset_token,omitempty"`
	ResetExpiresAt    int64              `bson:"reset_expires_at,omitempty"`
	CreatedAt         int64              `bson:"created_at"`
	UpdatedAt         int64              `bson:"updated_at"`
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	defer metrics.ObserveBackendOp("mongo", "create_account", time.Now())

	doc := mongoAccount{
		Email:             account.Email,
		PasswordHash:      account.PasswordHash,
		FullName:          account.FullName,
		Verified:          account.Verified,
		VerificationToken: account.VerificationToken,
		CreatedAt:         account.CreatedAt.Unix(),
		UpdatedAt:         account.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, fmt.Errorf("%w: insert account: %v", domain.ErrBackendUnavailable, err)
	}

	created := *account
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	defer metrics.ObserveBackendOp("mongo", "find_by_email", time.Now())

	var ma mongoAccount
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: find account: %v", domain.ErrBackendUnavailable, err)
	}
	return ma.toDomain(), nil
}

func (r *AccountRepository) SetResetToken(ctx context.Context, accountID, token string, expiresAt time.Time) error {
	defer metrics.ObserveBackendOp("mongo", "set_reset_token", time.Now())

	oid, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"reset_token":      token,
		"reset_expires_at": expiresAt.Unix(),
		"updated_at":       time.Now().UTC().Unix(),
	}})
	if err != nil {
		return fmt.Errorf("%w: set reset token: %v", domain.ErrBackendUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) FindByResetToken(ctx context.Context, token string) (*domain.Account, error) {
	defer metrics.ObserveBackendOp("mongo", "find_by_reset_token", time.Now())

	var ma mongoAccount
	filter := bson.M{"reset_token": token}
	if err := r.coll.FindOne(ctx, filter).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: find by reset token: %v", domain.ErrBackendUnavailable, err)
	}
	return ma.toDomain(), nil
}

func (r *AccountRepository) ConsumeResetToken(ctx context.Context, token, newPasswordHash string, notAfter time.Time) error {
	defer metrics.ObserveBackendOp("mongo", "consume_reset_token", time.Now())

	// The expiry guard is part of the filter: an expired or already-consumed
	// token matches nothing and the stored hash stays untouched.
	filter := bson.M{
		"reset_token":      token,
		"reset_expires_at": bson.M{"$gt": notAfter.Unix()},
	}
	update := bson.M{
		"$set":   bson.M{"password_hash": newPasswordHash, "updated_at": notAfter.Unix()},
		"$unset": bson.M{"reset_token": "", "reset_expires_at": ""},
	}

	err := r.coll.FindOneAndUpdate(ctx, filter, update).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrInvalidToken
		}
		return fmt.Errorf("%w: consume reset token: %v", domain.ErrBackendUnavailable, err)
	}
	return nil
}

func (r *AccountRepository) ConsumeVerificationToken(ctx context.Context, token string) (*domain.Account, error) {
	defer metrics.ObserveBackendOp("mongo", "consume_verification_token", time.Now())

	update := bson.M{
		"$set":   bson.M{"verified": true, "updated_at": time.Now().UTC().Unix()},
		"$unset": bson.M{"verification_token": ""},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ma mongoAccount
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"verification_token": token}, update, opts).Decode(&ma)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: consume verification token: %v", domain.ErrBackendUnavailable, err)
	}
	return ma.toDomain(), nil
}

func (ma *mongoAccount) toDomain() *domain.Account {
	acc := &domain.Account{
		ID:                ma.ID.Hex(),
		Email:             ma.Email,
		PasswordHash:      ma.PasswordHash,
		FullName:          ma.FullName,
		Verified:          ma.Verified,
		VerificationToken: ma.VerificationToken,
		ResetToken:        ma.ResetToken,
		CreatedAt:         unixToTime(ma.CreatedAt),
		UpdatedAt:         unixToTime(ma.UpdatedAt),
	}
	if ma.ResetExpiresAt != 0 {
		t := unixToTime(ma.ResetExpiresAt)
		acc.ResetExpiresAt = &t
	}
	return acc
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
