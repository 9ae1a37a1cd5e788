// internal/app/store/donors/donorstore.go
package donorstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/donorhub/internal/app/store/sequences"
	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection and sequence name.
const Collection = "donors"

// Store is the MongoDB donor repository. National ID uniqueness is enforced
// by the uniq_donors_dni index created in the schema migrations.
type Store struct {
	c   *mongo.Collection
	seq *sequences.Store
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection), seq: sequences.New(db)}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (s *Store) Create(ctx context.Context, in models.DonorInput) (models.Donor, error) {
	id, err := s.seq.Next(ctx, Collection)
	if err != nil {
		return models.Donor{}, apperr.Wrap("donors.create: next id", err)
	}

	ts := now()
	d := models.Donor{ID: id, CreatedAt: ts, UpdatedAt: ts}
	in.Apply(&d)

	if _, err := s.c.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Donor{}, apperr.NewDuplicateNationalID()
		}
		return models.Donor{}, apperr.Wrap("donors.create", err)
	}
	return d, nil
}

func (s *Store) Update(ctx context.Context, id int64, in models.DonorInput) (models.Donor, error) {
	set := bson.M{
		"first_name":         in.FirstName,
		"last_name":          in.LastName,
		"dni":                in.NationalID,
		"birth_date":         in.BirthDate,
		"address":            in.Address,
		"phone":              in.Phone,
		"has_donated_before": in.HasDonatedBefore,
		"is_marrow_donor":    in.IsMarrowDonor,
		"updated_at":         now(),
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d models.Donor
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&d)
	switch {
	case err == nil:
		return d, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.Donor{}, apperr.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return models.Donor{}, apperr.NewDuplicateNationalID()
	default:
		return models.Donor{}, apperr.Wrap("donors.update", err)
	}
}

func (s *Store) GetByID(ctx context.Context, id int64) (models.Donor, error) {
	var d models.Donor
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Donor{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.Donor{}, apperr.Wrap("donors.get", err)
	}
	return d, nil
}

// Search matches q case-insensitively as a substring of first name, last
// name or national ID. An empty q lists every donor. Results are newest first.
func (s *Store) Search(ctx context.Context, q string) ([]models.Donor, error) {
	filter := bson.M{}
	if q = strings.TrimSpace(q); q != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"first_name": rx},
			bson.M{"last_name": rx},
			bson.M{"dni": rx},
		}
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Wrap("donors.search", err)
	}
	defer cur.Close(ctx)

	out := []models.Donor{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Wrap("donors.search", err)
	}
	return out, nil
}

// Delete removes the donor. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return apperr.Wrap("donors.delete", err)
	}
	return nil
}
