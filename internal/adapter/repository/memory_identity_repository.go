package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/pkg/errors"
)

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

func NewMemoryUserRepository() repository.UserRepository {
	return &memoryUserRepository{users: make(map[string]*entity.User)}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return errors.Conflict("User already exists with this email")
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	c := *user
	return &c, nil
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			c := *user
			return &c, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *memoryUserRepository) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return errors.NotFound("User", nil)
	}
	for id, other := range r.users {
		if id != user.ID && strings.EqualFold(other.Email, user.Email) {
			return errors.Conflict("Email is already taken")
		}
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.UpdatedAt = time.Now().UTC()
	*user = *existing
	return nil
}

type memoryRepairerRepository struct {
	mu        sync.RWMutex
	repairers map[string]*entity.Repairer
}

func NewMemoryRepairerRepository() repository.RepairerRepository {
	return &memoryRepairerRepository{repairers: make(map[string]*entity.Repairer)}
}

func (r *memoryRepairerRepository) Create(ctx context.Context, repairer *entity.Repairer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.repairers {
		if strings.EqualFold(existing.Email, repairer.Email) {
			return errors.Conflict("Repairer already exists")
		}
	}
	if repairer.ID == "" {
		repairer.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	repairer.CreatedAt = now
	repairer.UpdatedAt = now
	r.repairers[repairer.ID] = cloneRepairer(repairer)
	return nil
}

func (r *memoryRepairerRepository) GetByID(ctx context.Context, id string) (*entity.Repairer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	repairer, ok := r.repairers[id]
	if !ok {
		return nil, errors.NotFound("Repairer", nil)
	}
	return cloneRepairer(repairer), nil
}

func (r *memoryRepairerRepository) GetByEmail(ctx context.Context, email string) (*entity.Repairer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, repairer := range r.repairers {
		if strings.EqualFold(repairer.Email, email) {
			return cloneRepairer(repairer), nil
		}
	}
	return nil, errors.NotFound("Repairer", nil)
}

func (r *memoryRepairerRepository) AddClaimedIssue(ctx context.Context, repairerID, issueID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	repairer, ok := r.repairers[repairerID]
	if !ok {
		return errors.NotFound("Repairer", nil)
	}
	if repairer.HasClaimed(issueID) {
		return nil
	}
	repairer.Issues = append(repairer.Issues, issueID)
	repairer.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepairerRepository) ListWithLocation(ctx context.Context) ([]*entity.Repairer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Repairer, 0)
	for _, repairer := range r.repairers {
		if repairer.Location.Geo != nil {
			out = append(out, cloneRepairer(repairer))
		}
	}
	return out, nil
}
