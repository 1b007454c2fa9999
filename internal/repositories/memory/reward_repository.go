package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.RewardRepository     = (*RewardRepository)(nil)
	_ repositories.UserRewardRepository = (*UserRewardRepository)(nil)
)

// RewardRepository stores the reward catalog in memory
type RewardRepository struct {
	mu      sync.RWMutex
	rewards map[primitive.ObjectID]*models.Reward
}

// NewRewardRepository creates a new RewardRepository
func NewRewardRepository() *RewardRepository {
	return &RewardRepository{rewards: make(map[primitive.ObjectID]*models.Reward)}
}

// Create inserts a reward
func (r *RewardRepository) Create(_ context.Context, reward *models.Reward) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reward.ID.IsZero() {
		reward.ID = primitive.NewObjectID()
	}
	if reward.CreatedAt.IsZero() {
		reward.CreatedAt = time.Now()
	}
	reward.UpdatedAt = reward.CreatedAt
	c := *reward
	r.rewards[reward.ID] = &c
	return nil
}

// FindByID finds a reward by ID
func (r *RewardRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Reward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rw, ok := r.rewards[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *rw
	return &c, nil
}

// FindByName finds a reward by exact name
func (r *RewardRepository) FindByName(_ context.Context, name string) (*models.Reward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rw := range r.rewards {
		if rw.Name == name {
			c := *rw
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// FindAll lists rewards matching the filter ordered by points required
func (r *RewardRepository) FindAll(_ context.Context, filter models.RewardFilter) ([]*models.Reward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Reward{}
	for _, rw := range r.rewards {
		if filter.ActiveOnly && !rw.IsActive {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(rw.Category, filter.Category) {
			continue
		}
		c := *rw
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PointsRequired != out[j].PointsRequired {
			return out[i].PointsRequired < out[j].PointsRequired
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Update replaces a reward
func (r *RewardRepository) Update(_ context.Context, reward *models.Reward) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rewards[reward.ID]; !ok {
		return repositories.ErrNotFound
	}
	reward.UpdatedAt = time.Now()
	c := *reward
	r.rewards[reward.ID] = &c
	return nil
}

// DecrementStock takes one unit of an active reward with stock left
func (r *RewardRepository) DecrementStock(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rw, ok := r.rewards[id]
	if !ok || !rw.IsActive || rw.Stock <= 0 {
		return repositories.ErrConditionFailed
	}
	rw.Stock--
	rw.UpdatedAt = time.Now()
	return nil
}

// IncrementStock gives one unit back
func (r *RewardRepository) IncrementStock(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rw, ok := r.rewards[id]
	if !ok {
		return repositories.ErrNotFound
	}
	rw.Stock++
	rw.UpdatedAt = time.Now()
	return nil
}

// Count returns the number of rewards
func (r *RewardRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.rewards)), nil
}

// UserRewardRepository stores redemptions in memory
type UserRewardRepository struct {
	mu          sync.RWMutex
	userRewards map[primitive.ObjectID]*models.UserReward
}

// NewUserRewardRepository creates a new UserRewardRepository
func NewUserRewardRepository() *UserRewardRepository {
	return &UserRewardRepository{userRewards: make(map[primitive.ObjectID]*models.UserReward)}
}

// Create inserts a redemption; redemption codes are unique
func (r *UserRewardRepository) Create(_ context.Context, userReward *models.UserReward) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ur := range r.userRewards {
		if ur.RedemptionCode == userReward.RedemptionCode {
			return repositories.ErrDuplicateKey
		}
	}
	if userReward.ID.IsZero() {
		userReward.ID = primitive.NewObjectID()
	}
	c := *userReward
	r.userRewards[userReward.ID] = &c
	return nil
}

// FindByID finds a redemption by ID
func (r *UserRewardRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.UserReward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ur, ok := r.userRewards[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *ur
	return &c, nil
}

// FindByUserID lists a user's redemptions, newest first
func (r *UserRewardRepository) FindByUserID(_ context.Context, userID primitive.ObjectID) ([]*models.UserReward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.UserReward{}
	for _, ur := range r.userRewards {
		if ur.UserID == userID {
			c := *ur
			out = append(out, &c)
		}
	}
	sortNewestFirst(out, func(ur *models.UserReward) int64 { return ur.RedeemedAt.UnixNano() })
	return out, nil
}

// MarkUsed flags an unused redemption as used
func (r *UserRewardRepository) MarkUsed(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ur, ok := r.userRewards[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if ur.IsUsed {
		return repositories.ErrConditionFailed
	}
	ur.IsUsed = true
	ur.UsedAt = &at
	return nil
}

// Delete removes a redemption
func (r *UserRewardRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.userRewards, id)
	return nil
}
