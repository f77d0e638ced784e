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

	"github.com/mapascal/records-system/internal/core/domain"
)

const userCollection = "users"

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

type mongoUser struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	Username              string             `bson:"username"`
	NIA                   string             `bson:"nia"`
	FullName              string             `bson:"full_name"`
	FieldName             string             `bson:"field_name,omitempty"`
	MembershipLevel       string             `bson:"membership_level,omitempty"`
	Role                  string             `bson:"role"`
	IsActive              bool               `bson:"is_active"`
	PasswordHash          string             `bson:"password_hash"`
	AccessTokenHash       string             `bson:"access_token_hash,omitempty"`
	AccessTokenExpiration *time.Time         `bson:"access_token_expiration,omitempty"`
	AccessTokenUsed       bool               `bson:"access_token_used"`
	CreatedAt             int64              `bson:"created_at"`
	UpdatedAt             int64              `bson:"updated_at"`
}

func toDomain(mu *mongoUser) *domain.User {
	return &domain.User{
		ID:                    mu.ID.Hex(),
		Username:              mu.Username,
		NIA:                   mu.NIA,
		FullName:              mu.FullName,
		FieldName:             mu.FieldName,
		MembershipLevel:       mu.MembershipLevel,
		Role:                  domain.Role(mu.Role),
		IsActive:              mu.IsActive,
		PasswordHash:          mu.PasswordHash,
		AccessTokenHash:       mu.AccessTokenHash,
		AccessTokenExpiration: mu.AccessTokenExpiration,
		AccessTokenUsed:       mu.AccessTokenUsed,
		CreatedAt:             unixToTime(mu.CreatedAt),
		UpdatedAt:             unixToTime(mu.UpdatedAt),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		Username:              user.Username,
		NIA:                   user.NIA,
		FullName:              user.FullName,
		FieldName:             user.FieldName,
		MembershipLevel:       user.MembershipLevel,
		Role:                  string(user.Role),
		IsActive:              user.IsActive,
		PasswordHash:          user.PasswordHash,
		AccessTokenHash:       user.AccessTokenHash,
		AccessTokenExpiration: user.AccessTokenExpiration,
		AccessTokenUsed:       user.AccessTokenUsed,
		CreatedAt:             user.CreatedAt.Unix(),
		UpdatedAt:             user.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindAdminByIdentifier matches an admin account whose username or NIA
// equals the identifier.
func (r *UserRepository) FindAdminByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{
		"role": string(domain.RoleAdmin),
		"$or": bson.A{
			bson.M{"username": identifier},
			bson.M{"nia": identifier},
		},
	})
}

func (r *UserRepository) FindMemberByNIA(ctx context.Context, nia string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"role": string(domain.RoleMember), "nia": nia})
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	update := bson.M{"$set": bson.M{
		"username":                user.Username,
		"nia":                     user.NIA,
		"full_name":               user.FullName,
		"field_name":              user.FieldName,
		"membership_level":        user.MembershipLevel,
		"role":                    string(user.Role),
		"is_active":               user.IsActive,
		"password_hash":           user.PasswordHash,
		"access_token_hash":       user.AccessTokenHash,
		"access_token_expiration": user.AccessTokenExpiration,
		"access_token_used":       user.AccessTokenUsed,
		"updated_at":              user.UpdatedAt.Unix(),
	}}

	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ListMembers(ctx context.Context) ([]domain.User, error) {
	return r.findMany(ctx,
		bson.M{"role": string(domain.RoleMember)},
		options.Find().SetSort(bson.D{{Key: "full_name", Value: 1}}),
	)
}

func (r *UserRepository) ListPendingMembers(ctx context.Context) ([]domain.User, error) {
	return r.findMany(ctx,
		bson.M{"role": string(domain.RoleMember), "is_active": false},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
}

// EnsureIndexes creates the unique indexes the registration flow relies on.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "nia", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomain(&mu), nil
}

func (r *UserRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.User, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, *toDomain(&mu))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
