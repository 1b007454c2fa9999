package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/metrics"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParticipationResult is returned after entering a raffle
type ParticipationResult struct {
	Participation *models.UserRaffleParticipation `json:"participation"`
	Balance       *models.PointBalance            `json:"balance"`
}

// RaffleService handles raffle entries and draws
type RaffleService struct {
	raffleRepo        repositories.RaffleRepository
	participationRepo repositories.ParticipationRepository
	userRepo          repositories.UserRepository
	ledger            *LedgerService
	notifier          Notifier
	metrics           *metrics.Metrics
	now               func() time.Time
}

// NewRaffleService creates a new RaffleService
func NewRaffleService(repos *repositories.Registry, ledger *LedgerService, notifier Notifier, m *metrics.Metrics) *RaffleService {
	return &RaffleService{
		raffleRepo:        repos.Raffles,
		participationRepo: repos.Participations,
		userRepo:          repos.Users,
		ledger:            ledger,
		notifier:          notifier,
		metrics:           m,
		now:               time.Now,
	}
}

// ListRaffles returns the active raffles visible to the user
func (s *RaffleService) ListRaffles(ctx context.Context, userID primitive.ObjectID) ([]*models.Raffle, error) {
	_, status, err := loadAccess(ctx, s.userRepo, userID, s.now())
	if err != nil {
		return nil, err
	}
	if err := requireViewer(status.CanViewRaffles); err != nil {
		return nil, err
	}
	raffles, err := s.raffleRepo.FindAll(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list raffles: %w", err)
	}
	return raffles, nil
}

// GetRaffle returns a raffle by ID
func (s *RaffleService) GetRaffle(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	raffle, err := s.raffleRepo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrRaffleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load raffle: %w", err)
	}
	return raffle, nil
}

// Participate enters the user into a raffle, paying its required points
func (s *RaffleService) Participate(ctx context.Context, userID, raffleID primitive.ObjectID) (*ParticipationResult, error) {
	var result *ParticipationResult
	var raffle *models.Raffle
	err := s.ledger.WithUserLock(ctx, userID, func(ctx context.Context) error {
		var err error
		result, raffle, err = s.participate(ctx, userID, raffleID)
		return err
	})
	if err != nil {
		s.metrics.Participation(outcome(err))
		slog.Warn("Raffle participation rejected", "userId", userID.Hex(), "raffleId", raffleID.Hex(), "error", err)
		return nil, err
	}
	s.metrics.Participation("success")

	p := result.Participation
	notify(ctx, s.notifier, userID, models.NotificationRaffle, "Raffle entry confirmed",
		fmt.Sprintf("You entered %s for %d points. Good luck!", raffle.Name, p.PointsSpent),
		map[string]string{"raffleId": raffleID.Hex(), "participationId": p.ParticipationID})
	return result, nil
}

func (s *RaffleService) participate(ctx context.Context, userID, raffleID primitive.ObjectID) (*ParticipationResult, *models.Raffle, error) {
	now := s.now()
	_, status, err := loadAccess(ctx, s.userRepo, userID, now)
	if err != nil {
		return nil, nil, err
	}
	if err := requireSubscribed(status, status.CanParticipate); err != nil {
		return nil, nil, err
	}

	raffle, err := s.GetRaffle(ctx, raffleID)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case !raffle.IsActive || raffle.Status != models.RaffleStatusOpen:
		return nil, nil, ErrRaffleInactive
	case now.After(raffle.EndDate):
		return nil, nil, ErrRaffleExpired
	case !raffle.StartDate.IsZero() && now.Before(raffle.StartDate):
		return nil, nil, ErrRaffleNotStarted
	}

	_, err = s.participationRepo.FindByRaffleAndUser(ctx, raffleID, userID)
	if err == nil {
		return nil, nil, ErrAlreadyParticipated
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check participation: %w", err)
	}
	if raffle.IsFull() {
		return nil, nil, ErrRaffleFull
	}

	before, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	hold, err := s.ledger.Reserve(ctx, userID, raffle.RequiredPoints, "Entered raffle "+raffle.Name)
	if err != nil {
		return nil, nil, err
	}

	if err := s.raffleRepo.IncrementParticipants(ctx, raffleID); err != nil {
		s.ledger.release(ctx, hold)
		if errors.Is(err, repositories.ErrConditionFailed) {
			return nil, nil, ErrRaffleFull
		}
		return nil, nil, fmt.Errorf("failed to add participant: %w", err)
	}

	participation := &models.UserRaffleParticipation{
		RaffleID:        raffleID,
		UserID:          userID,
		ParticipationID: utils.ParticipationID(raffleID),
		Status:          models.ParticipationPending,
		PointsSpent:     raffle.RequiredPoints,
		BalanceBefore:   before.Total,
		BalanceAfter:    before.Total - raffle.RequiredPoints,
		CreatedAt:       now,
	}
	if err := s.participationRepo.Create(ctx, participation); err != nil {
		s.removeParticipant(ctx, raffleID)
		s.ledger.release(ctx, hold)
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, nil, ErrAlreadyParticipated
		}
		return nil, nil, fmt.Errorf("failed to create participation: %w", err)
	}

	if _, err := s.ledger.Commit(ctx, hold.ID, map[string]string{
		"raffleId":        raffleID.Hex(),
		"participationId": participation.ParticipationID,
	}); err != nil {
		if !s.ledger.release(ctx, hold) {
			slog.Error("CRITICAL: raffle entry recorded but points not committed", "error", err, "userId", userID.Hex(), "holdId", hold.ID.Hex(), "participationId", participation.ParticipationID)
			return nil, nil, err
		}
		s.removeParticipant(ctx, raffleID)
		if derr := s.participationRepo.Delete(ctx, participation.ID); derr != nil {
			slog.Error("Failed to remove uncommitted participation", "error", derr, "participationId", participation.ParticipationID)
		}
		return nil, nil, err
	}

	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Raffle participation recorded", "userId", userID.Hex(), "raffleId", raffleID.Hex(), "participationId", participation.ParticipationID)
	return &ParticipationResult{Participation: participation, Balance: balance}, raffle, nil
}

func (s *RaffleService) removeParticipant(ctx context.Context, raffleID primitive.ObjectID) {
	if err := s.raffleRepo.DecrementParticipants(ctx, raffleID); err != nil {
		slog.Error("Failed to restore raffle participant count", "error", err, "raffleId", raffleID.Hex())
	}
}

// ListParticipations returns every raffle entry of a user, newest first
func (s *RaffleService) ListParticipations(ctx context.Context, userID primitive.ObjectID) ([]*models.UserRaffleParticipation, error) {
	participations, err := s.participationRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}
	return participations, nil
}

// CheckResults returns the user's entries that have been resolved
func (s *RaffleService) CheckResults(ctx context.Context, userID primitive.ObjectID) ([]*models.UserRaffleParticipation, error) {
	participations, err := s.ListParticipations(ctx, userID)
	if err != nil {
		return nil, err
	}
	resolved := make([]*models.UserRaffleParticipation, 0, len(participations))
	for _, p := range participations {
		if p.Status != models.ParticipationPending {
			resolved = append(resolved, p)
		}
	}
	return resolved, nil
}

// DrawRaffle picks one pending entry of an ended raffle as the winner. A drawn
// raffle whose entries were left pending is resolved again with its recorded winner.
func (s *RaffleService) DrawRaffle(ctx context.Context, raffleID primitive.ObjectID) (*models.Raffle, error) {
	raffle, err := s.GetRaffle(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	if raffle.Status == models.RaffleStatusDrawn {
		return s.resumeDraw(ctx, raffle)
	}
	return s.draw(ctx, raffle, nil)
}

// draw closes an OPEN raffle. A nil chosen entry means a random pick.
func (s *RaffleService) draw(ctx context.Context, raffle *models.Raffle, chosen *models.UserRaffleParticipation) (*models.Raffle, error) {
	now := s.now()
	if raffle.IsActive && !now.After(raffle.EndDate) {
		return nil, ErrRaffleNotEnded
	}

	logf := func(format string, args ...interface{}) {
		raffle.ExecutionLog = append(raffle.ExecutionLog, fmt.Sprintf("%s: %s", s.now().Format(time.RFC3339), fmt.Sprintf(format, args...)))
	}
	logf("Starting draw")

	pending, err := s.pendingEntries(ctx, raffle.ID)
	if err != nil {
		return nil, err
	}
	logf("Eligible participations: %d", len(pending))

	var winner *models.UserRaffleParticipation
	switch {
	case chosen != nil:
		for _, p := range pending {
			if p.ID == chosen.ID {
				winner = p
			}
		}
		if winner == nil {
			return nil, ErrParticipationNotFound
		}
		logf("Winner selected manually: participation %s", winner.ParticipationID)
	case len(pending) > 0:
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(pending))))
		if err != nil {
			return nil, fmt.Errorf("failed to pick winner: %w", err)
		}
		winner = pending[idx.Int64()]
		logf("Winner selected: participation %s", winner.ParticipationID)
	default:
		logf("No eligible participations, raffle closed without a winner")
	}
	if winner != nil {
		raffle.WinnerUserID = winner.UserID
		raffle.WinningParticipationID = winner.ID
	}
	drawnAt := now
	raffle.DrawnAt = &drawnAt
	raffle.Status = models.RaffleStatusDrawn
	logf("Draw completed")

	if err := s.raffleRepo.MarkDrawn(ctx, raffle); err != nil {
		if errors.Is(err, repositories.ErrConditionFailed) {
			return nil, ErrRaffleAlreadyDrawn
		}
		return nil, fmt.Errorf("failed to mark raffle drawn: %w", err)
	}
	if winner == nil {
		slog.Info("Raffle drawn without participants", "raffleId", raffle.ID.Hex())
		return raffle, nil
	}
	if err := s.resolve(ctx, raffle, pending, now); err != nil {
		return nil, err
	}
	return raffle, nil
}

func (s *RaffleService) resumeDraw(ctx context.Context, raffle *models.Raffle) (*models.Raffle, error) {
	pending, err := s.pendingEntries(ctx, raffle.ID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, ErrRaffleAlreadyDrawn
	}
	slog.Warn("Resolving pending entries of a drawn raffle", "raffleId", raffle.ID.Hex(), "pending", len(pending))
	if err := s.resolve(ctx, raffle, pending, s.now()); err != nil {
		return nil, err
	}
	return raffle, nil
}

func (s *RaffleService) pendingEntries(ctx context.Context, raffleID primitive.ObjectID) ([]*models.UserRaffleParticipation, error) {
	entries, err := s.participationRepo.FindByRaffleID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participations: %w", err)
	}
	pending := make([]*models.UserRaffleParticipation, 0, len(entries))
	for _, p := range entries {
		if p.Status == models.ParticipationPending {
			pending = append(pending, p)
		}
	}
	return pending, nil
}

// resolve settles the pending entries against the raffle's recorded winner and notifies them
func (s *RaffleService) resolve(ctx context.Context, raffle *models.Raffle, pending []*models.UserRaffleParticipation, at time.Time) error {
	if err := s.participationRepo.ResolveRaffle(ctx, raffle.ID, raffle.WinningParticipationID, raffle.Prize, at); err != nil {
		slog.Error("CRITICAL: raffle drawn but participations not resolved", "error", err, "raffleId", raffle.ID.Hex(), "winner", raffle.WinningParticipationID.Hex())
		return fmt.Errorf("failed to resolve participations: %w", err)
	}
	slog.Info("Raffle drawn", "raffleId", raffle.ID.Hex(), "participants", len(pending), "winnerUserId", raffle.WinnerUserID.Hex())

	for _, p := range pending {
		data := map[string]string{"raffleId": raffle.ID.Hex(), "participationId": p.ParticipationID}
		if p.ID == raffle.WinningParticipationID {
			notify(ctx, s.notifier, p.UserID, models.NotificationRaffle, "You won!",
				fmt.Sprintf("Congratulations, you won %s in %s.", raffle.Prize, raffle.Name), data)
			continue
		}
		notify(ctx, s.notifier, p.UserID, models.NotificationRaffle, "Raffle results",
			fmt.Sprintf("The %s raffle has been drawn. You did not win this time.", raffle.Name), data)
	}
	return nil
}

// MarkWinner makes one participation the winner of its raffle. An OPEN raffle
// is drawn with that entry; a drawn raffle has its previous winner replaced.
func (s *RaffleService) MarkWinner(ctx context.Context, participationID primitive.ObjectID) (*models.UserRaffleParticipation, error) {
	participation, err := s.findParticipation(ctx, participationID)
	if err != nil {
		return nil, err
	}
	raffle, err := s.GetRaffle(ctx, participation.RaffleID)
	if err != nil {
		return nil, err
	}

	if raffle.Status == models.RaffleStatusOpen {
		if _, err := s.draw(ctx, raffle, participation); err != nil {
			return nil, err
		}
		slog.Info("Raffle drawn with a manual winner", "raffleId", raffle.ID.Hex(), "participationId", participation.ParticipationID)
		return s.findParticipation(ctx, participationID)
	}
	if raffle.WinningParticipationID == participation.ID {
		return participation, nil
	}

	now := s.now()
	previousID, previousUser := raffle.WinningParticipationID, raffle.WinnerUserID
	raffle.WinnerUserID = participation.UserID
	raffle.WinningParticipationID = participation.ID
	raffle.ExecutionLog = append(raffle.ExecutionLog, fmt.Sprintf("%s: Winner overridden: participation %s", now.Format(time.RFC3339), participation.ParticipationID))
	if err := s.raffleRepo.UpdateWinner(ctx, raffle); err != nil {
		return nil, fmt.Errorf("failed to update raffle winner: %w", err)
	}
	if !previousID.IsZero() {
		if err := s.participationRepo.UpdateStatus(ctx, previousID, models.ParticipationNotWinner, "", now); err != nil {
			return nil, fmt.Errorf("failed to demote previous winner: %w", err)
		}
	}
	if err := s.participationRepo.UpdateStatus(ctx, participationID, models.ParticipationWinner, raffle.Prize, now); err != nil {
		return nil, fmt.Errorf("failed to mark winner: %w", err)
	}
	participation.Status = models.ParticipationWinner
	participation.Prize = raffle.Prize
	participation.ResolvedAt = &now

	slog.Info("Raffle winner overridden", "raffleId", raffle.ID.Hex(), "participationId", participation.ParticipationID, "userId", participation.UserID.Hex())
	data := map[string]string{"raffleId": raffle.ID.Hex(), "participationId": participation.ParticipationID}
	if !previousUser.IsZero() {
		notify(ctx, s.notifier, previousUser, models.NotificationRaffle, "Raffle results updated",
			fmt.Sprintf("The result of %s has been corrected. You did not win this time.", raffle.Name),
			map[string]string{"raffleId": raffle.ID.Hex()})
	}
	notify(ctx, s.notifier, participation.UserID, models.NotificationRaffle, "You won!",
		fmt.Sprintf("Congratulations, you won %s in %s.", raffle.Prize, raffle.Name), data)
	return participation, nil
}

func (s *RaffleService) findParticipation(ctx context.Context, id primitive.ObjectID) (*models.UserRaffleParticipation, error) {
	participation, err := s.participationRepo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrParticipationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load participation: %w", err)
	}
	return participation, nil
}

// CreateRaffle opens a new raffle
func (s *RaffleService) CreateRaffle(ctx context.Context, raffle *models.Raffle) (*models.Raffle, error) {
	if strings.TrimSpace(raffle.Name) == "" || raffle.RequiredPoints <= 0 || raffle.MaxParticipants < 0 || raffle.EndDate.IsZero() {
		return nil, ErrInvalidRaffle
	}
	if !raffle.StartDate.IsZero() && !raffle.EndDate.After(raffle.StartDate) {
		return nil, ErrInvalidRaffle
	}
	now := s.now()
	raffle.ID = primitive.NilObjectID
	raffle.Status = models.RaffleStatusOpen
	raffle.CurrentParticipants = 0
	raffle.WinnerUserID = primitive.NilObjectID
	raffle.WinningParticipationID = primitive.NilObjectID
	raffle.DrawnAt = nil
	raffle.ExecutionLog = nil
	raffle.CreatedAt = now
	raffle.UpdatedAt = now
	if err := s.raffleRepo.Create(ctx, raffle); err != nil {
		return nil, fmt.Errorf("failed to create raffle: %w", err)
	}
	slog.Info("Raffle created", "raffleId", raffle.ID.Hex(), "name", raffle.Name, "endDate", raffle.EndDate.Format(time.RFC3339))
	return raffle, nil
}
