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
	_ repositories.RaffleRepository        = (*RaffleRepository)(nil)
	_ repositories.ParticipationRepository = (*ParticipationRepository)(nil)
)

// RaffleRepository stores raffles in memory
type RaffleRepository struct {
	mu      sync.RWMutex
	raffles map[primitive.ObjectID]*models.Raffle
}

// NewRaffleRepository creates a new RaffleRepository
func NewRaffleRepository() *RaffleRepository {
	return &RaffleRepository{raffles: make(map[primitive.ObjectID]*models.Raffle)}
}

func cloneRaffle(rf *models.Raffle) *models.Raffle {
	c := *rf
	c.ExecutionLog = append([]string(nil), rf.ExecutionLog...)
	return &c
}

// Create inserts a raffle
func (r *RaffleRepository) Create(_ context.Context, raffle *models.Raffle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if raffle.ID.IsZero() {
		raffle.ID = primitive.NewObjectID()
	}
	if raffle.CreatedAt.IsZero() {
		raffle.CreatedAt = time.Now()
	}
	raffle.UpdatedAt = raffle.CreatedAt
	r.raffles[raffle.ID] = cloneRaffle(raffle)
	return nil
}

// FindByID finds a raffle by ID
func (r *RaffleRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rf, ok := r.raffles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneRaffle(rf), nil
}

// FindAll lists raffles ordered by end date
func (r *RaffleRepository) FindAll(_ context.Context, activeOnly bool) ([]*models.Raffle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Raffle{}
	for _, rf := range r.raffles {
		if activeOnly && !rf.IsActive {
			continue
		}
		out = append(out, cloneRaffle(rf))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

// IncrementParticipants adds one participant to an open raffle below its cap
func (r *RaffleRepository) IncrementParticipants(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rf, ok := r.raffles[id]
	if !ok || !rf.IsActive || rf.Status != models.RaffleStatusOpen || rf.IsFull() {
		return repositories.ErrConditionFailed
	}
	rf.CurrentParticipants++
	rf.UpdatedAt = time.Now()
	return nil
}

// DecrementParticipants removes one participant
func (r *RaffleRepository) DecrementParticipants(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rf, ok := r.raffles[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if rf.CurrentParticipants > 0 {
		rf.CurrentParticipants--
	}
	return nil
}

// MarkDrawn stores the draw result of an OPEN raffle
func (r *RaffleRepository) MarkDrawn(_ context.Context, raffle *models.Raffle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rf, ok := r.raffles[raffle.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if rf.Status != models.RaffleStatusOpen {
		return repositories.ErrConditionFailed
	}
	rf.Status = models.RaffleStatusDrawn
	rf.WinnerUserID = raffle.WinnerUserID
	rf.WinningParticipationID = raffle.WinningParticipationID
	rf.DrawnAt = raffle.DrawnAt
	rf.ExecutionLog = append([]string(nil), raffle.ExecutionLog...)
	rf.UpdatedAt = time.Now()
	return nil
}

// UpdateWinner replaces the result of a DRAWN raffle
func (r *RaffleRepository) UpdateWinner(_ context.Context, raffle *models.Raffle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rf, ok := r.raffles[raffle.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if rf.Status != models.RaffleStatusDrawn {
		return repositories.ErrConditionFailed
	}
	rf.WinnerUserID = raffle.WinnerUserID
	rf.WinningParticipationID = raffle.WinningParticipationID
	rf.ExecutionLog = append([]string(nil), raffle.ExecutionLog...)
	rf.UpdatedAt = time.Now()
	return nil
}

// ParticipationRepository stores raffle entries in memory
type ParticipationRepository struct {
	mu      sync.RWMutex
	entries map[primitive.ObjectID]*models.UserRaffleParticipation
}

// NewParticipationRepository creates a new ParticipationRepository
func NewParticipationRepository() *ParticipationRepository {
	return &ParticipationRepository{entries: make(map[primitive.ObjectID]*models.UserRaffleParticipation)}
}

// Create inserts an entry; one entry per raffle and user
func (r *ParticipationRepository) Create(_ context.Context, p *models.UserRaffleParticipation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if (e.RaffleID == p.RaffleID && e.UserID == p.UserID) || e.ParticipationID == p.ParticipationID {
			return repositories.ErrDuplicateKey
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	c := *p
	r.entries[p.ID] = &c
	return nil
}

// FindByID finds an entry by ID
func (r *ParticipationRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.UserRaffleParticipation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *e
	return &c, nil
}

// FindByRaffleAndUser finds the entry of a user in a raffle
func (r *ParticipationRepository) FindByRaffleAndUser(_ context.Context, raffleID, userID primitive.ObjectID) (*models.UserRaffleParticipation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.RaffleID == raffleID && e.UserID == userID {
			c := *e
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// FindByRaffleID lists the entries of a raffle in creation order
func (r *ParticipationRepository) FindByRaffleID(_ context.Context, raffleID primitive.ObjectID) ([]*models.UserRaffleParticipation, error) {
	return r.filter(func(e *models.UserRaffleParticipation) bool { return e.RaffleID == raffleID }, false), nil
}

// FindByUserID lists a user's entries, newest first
func (r *ParticipationRepository) FindByUserID(_ context.Context, userID primitive.ObjectID) ([]*models.UserRaffleParticipation, error) {
	return r.filter(func(e *models.UserRaffleParticipation) bool { return e.UserID == userID }, true), nil
}

func (r *ParticipationRepository) filter(match func(*models.UserRaffleParticipation) bool, newestFirst bool) []*models.UserRaffleParticipation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.UserRaffleParticipation{}
	for _, e := range r.entries {
		if match(e) {
			c := *e
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// UpdateStatus sets the outcome of a single entry
func (r *ParticipationRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.ParticipationStatus, prize string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return repositories.ErrNotFound
	}
	e.Status = status
	e.Prize = prize
	e.ResolvedAt = &at
	return nil
}

// ResolveRaffle sets the outcome of every pending entry of a raffle
func (r *ParticipationRepository) ResolveRaffle(_ context.Context, raffleID, winnerID primitive.ObjectID, prize string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.RaffleID != raffleID || e.Status != models.ParticipationPending {
			continue
		}
		resolved := at
		e.ResolvedAt = &resolved
		if e.ID == winnerID {
			e.Status = models.ParticipationWinner
			e.Prize = prize
		} else {
			e.Status = models.ParticipationNotWinner
		}
	}
	return nil
}

// Delete removes an entry
func (r *ParticipationRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}
