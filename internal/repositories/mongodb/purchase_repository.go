package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	_ repositories.PointPackageRepository = (*PointPackageRepository)(nil)
	_ repositories.PurchaseRepository     = (*PurchaseRepository)(nil)
)

// PointPackageRepository handles MongoDB operations for PointPackage
type PointPackageRepository struct {
	collection *mongo.Collection
}

// NewPointPackageRepository creates a new PointPackageRepository
func NewPointPackageRepository(db *mongo.Database) *PointPackageRepository {
	return &PointPackageRepository{
		collection: db.Collection("point_packages"),
	}
}

// Create inserts a package
func (r *PointPackageRepository) Create(ctx context.Context, pkg *models.PointPackage) error {
	if pkg.ID.IsZero() {
		pkg.ID = primitive.NewObjectID()
	}
	if pkg.CreatedAt.IsZero() {
		pkg.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, pkg)
	return translate(err)
}

// FindByID finds a package by ID
func (r *PointPackageRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PointPackage, error) {
	var pkg models.PointPackage
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pkg); err != nil {
		return nil, translate(err)
	}
	return &pkg, nil
}

// FindAll lists packages ordered by price
func (r *PointPackageRepository) FindAll(ctx context.Context, activeOnly bool) ([]*models.PointPackage, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "price", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.PointPackage](ctx, cursor)
}

// PurchaseRepository handles MongoDB operations for Purchase
type PurchaseRepository struct {
	collection *mongo.Collection
}

// NewPurchaseRepository creates a new PurchaseRepository
func NewPurchaseRepository(db *mongo.Database) *PurchaseRepository {
	return &PurchaseRepository{
		collection: db.Collection("purchases"),
	}
}

// Create inserts a purchase
func (r *PurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	if purchase.ID.IsZero() {
		purchase.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, purchase)
	return translate(err)
}

// FindByID finds a purchase by ID
func (r *PurchaseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&purchase); err != nil {
		return nil, translate(err)
	}
	return &purchase, nil
}

// FindByUserID finds a user's purchases with pagination
func (r *PurchaseRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Purchase, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions(page, limit, "createdAt"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Purchase](ctx, cursor)
}

// UpdateStatus sets the status of a purchase
func (r *PurchaseRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PurchaseStatus, reason string, at time.Time) error {
	update := bson.M{"$set": bson.M{"status": status, "failureReason": reason, "updatedAt": at}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
