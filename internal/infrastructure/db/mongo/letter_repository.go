package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mapascal/records-system/internal/core/domain"
	"github.com/mapascal/records-system/internal/core/ports"
)

const letterCollection = "letters"

type LetterRepository struct {
	coll *mongo.Collection
}

func NewLetterRepository(db *mongo.Database) *LetterRepository {
	return &LetterRepository{coll: db.Collection(letterCollection)}
}

type mongoLetter struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Direction   string             `bson:"direction"`
	Number      string             `bson:"number"`
	Counterpart string             `bson:"counterpart"`
	Date        time.Time          `bson:"date"`
	Subject     string             `bson:"subject"`
	FileName    string             `bson:"file_name"`
	UploadedBy  string             `bson:"uploaded_by"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func letterToDomain(ml *mongoLetter) *domain.Letter {
	return &domain.Letter{
		ID:          ml.ID.Hex(),
		Direction:   domain.Direction(ml.Direction),
		Number:      ml.Number,
		Counterpart: ml.Counterpart,
		Date:        ml.Date.UTC(),
		Subject:     ml.Subject,
		FileName:    ml.FileName,
		UploadedBy:  ml.UploadedBy,
		CreatedAt:   ml.CreatedAt.UTC(),
		UpdatedAt:   ml.UpdatedAt.UTC(),
	}
}

func (r *LetterRepository) Create(ctx context.Context, letter *domain.Letter) (*domain.Letter, error) {
	doc := mongoLetter{
		Direction:   string(letter.Direction),
		Number:      letter.Number,
		Counterpart: letter.Counterpart,
		Date:        letter.Date,
		Subject:     letter.Subject,
		FileName:    letter.FileName,
		UploadedBy:  letter.UploadedBy,
		CreatedAt:   letter.CreatedAt,
		UpdatedAt:   letter.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateLetter
		}
		return nil, fmt.Errorf("insert letter: %w", err)
	}

	created := *letter
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *LetterRepository) FindByID(ctx context.Context, direction domain.Direction, id string) (*domain.Letter, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrLetterNotFound
	}

	var ml mongoLetter
	err = r.coll.FindOne(ctx, bson.M{"_id": oid, "direction": string(direction)}).Decode(&ml)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLetterNotFound
		}
		return nil, fmt.Errorf("find letter: %w", err)
	}
	return letterToDomain(&ml), nil
}

func (r *LetterRepository) Update(ctx context.Context, letter *domain.Letter) error {
	oid, err := primitive.ObjectIDFromHex(letter.ID)
	if err != nil {
		return domain.ErrLetterNotFound
	}

	update := bson.M{"$set": bson.M{
		"number":      letter.Number,
		"counterpart": letter.Counterpart,
		"date":        letter.Date,
		"subject":     letter.Subject,
		"file_name":   letter.FileName,
		"updated_at":  letter.UpdatedAt,
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid, "direction": string(letter.Direction)}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateLetter
		}
		return fmt.Errorf("update letter: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrLetterNotFound
	}
	return nil
}

func (r *LetterRepository) Delete(ctx context.Context, direction domain.Direction, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrLetterNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "direction": string(direction)})
	if err != nil {
		return fmt.Errorf("delete letter: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrLetterNotFound
	}
	return nil
}

func (r *LetterRepository) List(ctx context.Context, filter ports.LetterFilter) ([]domain.Letter, int64, error) {
	query := bson.M{"direction": string(filter.Direction)}
	if filter.OwnerID != "" {
		query["uploaded_by"] = filter.OwnerID
	}
	if filter.Search != "" {
		query[filter.SearchBy] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	}

	dateRange := bson.M{}
	if !filter.DateFrom.IsZero() {
		dateRange["$gte"] = filter.DateFrom
	}
	if !filter.DateTo.IsZero() {
		dateRange["$lte"] = filter.DateTo
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count letters: %w", err)
	}

	order := -1
	if filter.SortOrder == "asc" {
		order = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: filter.SortBy, Value: order}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find letters: %w", err)
	}
	defer cur.Close(ctx)

	var letters []domain.Letter
	for cur.Next(ctx) {
		var ml mongoLetter
		if err := cur.Decode(&ml); err != nil {
			return nil, 0, fmt.Errorf("decode letter: %w", err)
		}
		letters = append(letters, *letterToDomain(&ml))
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate letters: %w", err)
	}
	return letters, total, nil
}

// EnsureIndexes creates the letter indexes: the number is unique per
// direction, and the common list filters are covered.
func (r *LetterRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "direction", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "uploaded_by", Value: 1}}},
		{Keys: bson.D{{Key: "direction", Value: 1}, {Key: "date", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
