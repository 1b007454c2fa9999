package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/utils"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/payments"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentProcessor charges a customer
type PaymentProcessor interface {
	Charge(ctx context.Context, req payments.ChargeRequest) (*payments.ChargeResponse, error)
}

// Compile-time check to ensure the payments client is a PaymentProcessor
var _ PaymentProcessor = (*payments.Client)(nil)

// PurchaseResult is returned after a completed purchase
type PurchaseResult struct {
	Purchase *models.Purchase    `json:"purchase"`
	Balance  *models.PointBalance `json:"balance"`
}

// PurchaseService sells point packages
type PurchaseService struct {
	packageRepo  repositories.PointPackageRepository
	purchaseRepo repositories.PurchaseRepository
	userRepo     repositories.UserRepository
	ledger       *LedgerService
	payments     PaymentProcessor
	notifier     Notifier
	now          func() time.Time
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(repos *repositories.Registry, ledger *LedgerService, processor PaymentProcessor, notifier Notifier) *PurchaseService {
	return &PurchaseService{
		packageRepo:  repos.Packages,
		purchaseRepo: repos.Purchases,
		userRepo:     repos.Users,
		ledger:       ledger,
		payments:     processor,
		notifier:     notifier,
		now:          time.Now,
	}
}

// ListPackages returns the packages on sale
func (s *PurchaseService) ListPackages(ctx context.Context) ([]*models.PointPackage, error) {
	packages, err := s.packageRepo.FindAll(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return packages, nil
}

// Purchase charges the user for a package and credits its points plus bonus
func (s *PurchaseService) Purchase(ctx context.Context, userID, packageID primitive.ObjectID) (*PurchaseResult, error) {
	var result *PurchaseResult
	err := s.ledger.WithUserLock(ctx, userID, func(ctx context.Context) error {
		var err error
		result, err = s.purchase(ctx, userID, packageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	p := result.Purchase
	notify(ctx, s.notifier, userID, models.NotificationPurchase, "Purchase completed",
		fmt.Sprintf("%d points were added to your balance.", p.Points),
		map[string]string{"purchaseId": p.ID.Hex(), "paymentRef": p.PaymentRef})
	return result, nil
}

func (s *PurchaseService) purchase(ctx context.Context, userID, packageID primitive.ObjectID) (*PurchaseResult, error) {
	now := s.now()
	_, status, err := loadAccess(ctx, s.userRepo, userID, now)
	if err != nil {
		return nil, err
	}
	if err := requireSubscribed(status, status.CanPurchase); err != nil {
		return nil, err
	}

	pkg, err := s.packageRepo.FindByID(ctx, packageID)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && !pkg.IsActive) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load package: %w", err)
	}

	purchase := &models.Purchase{
		UserID:     userID,
		PackageID:  packageID,
		Points:     pkg.Points + pkg.BonusPoints,
		Amount:     pkg.Price,
		Currency:   pkg.Currency,
		PaymentRef: utils.PaymentReference("PKG"),
		Status:     models.PurchaseStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	if _, err := s.payments.Charge(ctx, payments.ChargeRequest{
		Reference:   purchase.PaymentRef,
		CustomerID:  userID.Hex(),
		Amount:      pkg.Price,
		Currency:    pkg.Currency,
		Description: "Point package " + pkg.Name,
	}); err != nil {
		slog.Warn("Package payment failed", "error", err, "userId", userID.Hex(), "paymentRef", purchase.PaymentRef)
		s.fail(ctx, purchase, err.Error())
		return nil, ErrPaymentFailed
	}

	if _, err := s.ledger.Purchase(ctx, userID, purchase.Points, "Bought "+pkg.Name,
		map[string]string{"purchaseId": purchase.ID.Hex(), "paymentRef": purchase.PaymentRef}); err != nil {
		slog.Error("CRITICAL: payment captured but points not credited", "error", err, "userId", userID.Hex(), "paymentRef", purchase.PaymentRef)
		s.fail(ctx, purchase, "points credit failed")
		return nil, err
	}

	purchase.Status = models.PurchaseStatusCompleted
	purchase.UpdatedAt = s.now()
	if err := s.purchaseRepo.UpdateStatus(ctx, purchase.ID, purchase.Status, "", purchase.UpdatedAt); err != nil {
		slog.Error("Failed to mark purchase completed", "error", err, "purchaseId", purchase.ID.Hex())
	}

	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	slog.Info("Package purchased", "userId", userID.Hex(), "packageId", packageID.Hex(), "points", purchase.Points, "paymentRef", purchase.PaymentRef)
	return &PurchaseResult{Purchase: purchase, Balance: balance}, nil
}

func (s *PurchaseService) fail(ctx context.Context, purchase *models.Purchase, reason string) {
	purchase.Status = models.PurchaseStatusFailed
	purchase.FailureReason = reason
	purchase.UpdatedAt = s.now()
	if err := s.purchaseRepo.UpdateStatus(ctx, purchase.ID, purchase.Status, reason, purchase.UpdatedAt); err != nil {
		slog.Error("Failed to mark purchase failed", "error", err, "purchaseId", purchase.ID.Hex())
	}
}

// ListPurchases returns a page of the user's purchases, newest first
func (s *PurchaseService) ListPurchases(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Purchase, error) {
	purchases, err := s.purchaseRepo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return purchases, nil
}

// CreatePackage adds a point package
func (s *PurchaseService) CreatePackage(ctx context.Context, pkg *models.PointPackage) (*models.PointPackage, error) {
	if strings.TrimSpace(pkg.Name) == "" || pkg.Points <= 0 || pkg.BonusPoints < 0 || pkg.Price <= 0 {
		return nil, ErrInvalidPackage
	}
	pkg.ID = primitive.NilObjectID
	pkg.Currency = strings.ToUpper(pkg.Currency)
	pkg.CreatedAt = s.now()
	if err := s.packageRepo.Create(ctx, pkg); err != nil {
		return nil, fmt.Errorf("failed to create package: %w", err)
	}
	return pkg, nil
}
