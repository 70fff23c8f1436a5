package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bizdir/company-api/internal/core/domain"
	"github.com/bizdir/company-api/internal/core/ports"
)

const collectionCompanies = "companies"

// CompanyRepository stores domain.Company documents as-is, keyed by a UUID
// string _id.
type CompanyRepository struct {
	col *mongo.Collection
}

var _ ports.CompanyRepository = (*CompanyRepository)(nil)

func NewCompanyRepository(db *mongo.Database) *CompanyRepository {
	return &CompanyRepository{col: db.Collection(collectionCompanies)}
}

// Create inserts a new company document.
func (r *CompanyRepository) Create(ctx context.Context, c *domain.Company) (*domain.Company, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := *c
	doc.ID = uuid.NewString()
	if doc.SocialLinks == nil {
		doc.SocialLinks = []string{}
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert company: %w", err)
	}
	return &doc, nil
}

// FindByID retrieves a company by id, regardless of owner.
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*domain.Company, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Company
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("find company: %w", err)
	}
	return &c, nil
}

// Update sets the mutable fields and returns the stored document. owner_id
// and created_at are never part of the update.
func (r *CompanyRepository) Update(ctx context.Context, c *domain.Company) (*domain.Company, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	socialLinks := c.SocialLinks
	if socialLinks == nil {
		socialLinks = []string{}
	}
	set := bson.M{
		"name":         c.Name,
		"description":  c.Description,
		"industry":     c.Industry,
		"logo_url":     c.LogoURL,
		"banner_url":   c.BannerURL,
		"phone":        c.Phone,
		"address":      c.Address,
		"website":      c.Website,
		"social_links": socialLinks,
		"is_verified":  c.IsVerified,
		"updated_at":   c.UpdatedAt,
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out domain.Company
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": c.ID}, bson.M{"$set": set}, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("update company: %w", err)
	}
	return &out, nil
}

// CountByOwner counts the companies owned by ownerID.
func (r *CompanyRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return n, nil
}

// List returns one page of companies, newest first, plus the total count.
func (r *CompanyRepository) List(ctx context.Context, f ports.ListCompaniesFilter) ([]*domain.Company, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(f.Page-1) * int64(f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]*domain.Company, 0, f.Limit)
	for cur.Next(ctx) {
		var c domain.Company
		if err := cur.Decode(&c); err != nil {
			return nil, 0, fmt.Errorf("decode company: %w", err)
		}
		items = append(items, &c)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}
	return items, total, nil
}

// EnsureIndexes creates the owner and recency indexes.
func (r *CompanyRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
