package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.PointPackageRepository = (*PointPackageRepository)(nil)
	_ repositories.PurchaseRepository     = (*PurchaseRepository)(nil)
)

// PointPackageRepository stores point packages in memory
type PointPackageRepository struct {
	mu       sync.RWMutex
	packages map[primitive.ObjectID]*models.PointPackage
}

// NewPointPackageRepository creates a new PointPackageRepository
func NewPointPackageRepository() *PointPackageRepository {
	return &PointPackageRepository{packages: make(map[primitive.ObjectID]*models.PointPackage)}
}

// Create inserts a package
func (r *PointPackageRepository) Create(_ context.Context, pkg *models.PointPackage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pkg.ID.IsZero() {
		pkg.ID = primitive.NewObjectID()
	}
	if pkg.CreatedAt.IsZero() {
		pkg.CreatedAt = time.Now()
	}
	c := *pkg
	r.packages[pkg.ID] = &c
	return nil
}

// FindByID finds a package by ID
func (r *PointPackageRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.PointPackage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.packages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *p
	return &c, nil
}

// FindAll lists packages ordered by price
func (r *PointPackageRepository) FindAll(_ context.Context, activeOnly bool) ([]*models.PointPackage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.PointPackage{}
	for _, p := range r.packages {
		if activeOnly && !p.IsActive {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

// PurchaseRepository stores purchases in memory
type PurchaseRepository struct {
	mu        sync.RWMutex
	purchases map[primitive.ObjectID]*models.Purchase
}

// NewPurchaseRepository creates a new PurchaseRepository
func NewPurchaseRepository() *PurchaseRepository {
	return &PurchaseRepository{purchases: make(map[primitive.ObjectID]*models.Purchase)}
}

// Create inserts a purchase
func (r *PurchaseRepository) Create(_ context.Context, purchase *models.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if purchase.ID.IsZero() {
		purchase.ID = primitive.NewObjectID()
	}
	c := *purchase
	r.purchases[purchase.ID] = &c
	return nil
}

// FindByID finds a purchase by ID
func (r *PurchaseRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.purchases[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *p
	return &c, nil
}

// FindByUserID lists a user's purchases, newest first
func (r *PurchaseRepository) FindByUserID(_ context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Purchase{}
	for _, p := range r.purchases {
		if p.UserID == userID {
			c := *p
			out = append(out, &c)
		}
	}
	sortNewestFirst(out, func(p *models.Purchase) int64 { return p.CreatedAt.UnixNano() })
	return paginate(out, page, limit), nil
}

// UpdateStatus sets the status of a purchase
func (r *PurchaseRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.PurchaseStatus, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.Status = status
	p.FailureReason = reason
	p.UpdatedAt = at
	return nil
}
