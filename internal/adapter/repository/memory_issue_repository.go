package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/pkg/errors"
)

// memoryIssueRepository keeps issues in process memory. The claim
// compare-and-swap happens under the store mutex, so it is only atomic within
// a single server process; use the sqlite or firestore driver when running
// more than one.
type memoryIssueRepository struct {
	mu     sync.RWMutex
	issues map[string]*entity.Issue
}

func NewMemoryIssueRepository() repository.IssueRepository {
	return &memoryIssueRepository{
		issues: make(map[string]*entity.Issue),
	}
}

func (r *memoryIssueRepository) Create(ctx context.Context, issue *entity.Issue) error {
	if issue.ID == "" {
		issue.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = issue.CreatedAt

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.issues[issue.ID]; exists {
		return errors.Conflict("Issue already exists")
	}
	r.issues[issue.ID] = cloneIssue(issue)
	return nil
}

func (r *memoryIssueRepository) GetByID(ctx context.Context, id string) (*entity.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, errors.NotFound("Issue", nil)
	}
	return cloneIssue(issue), nil
}

func (r *memoryIssueRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Issue, error) {
	return r.filter(func(issue *entity.Issue) bool { return issue.UserID == userID }), nil
}

func (r *memoryIssueRepository) ListByRepairer(ctx context.Context, repairerID string) ([]*entity.Issue, error) {
	return r.filter(func(issue *entity.Issue) bool { return issue.RepairerID == repairerID }), nil
}

func (r *memoryIssueRepository) FindPendingByTypes(ctx context.Context, types []string) ([]*entity.Issue, error) {
	types = distinctTags(types)
	if len(types) == 0 {
		return []*entity.Issue{}, nil
	}
	return r.filter(func(issue *entity.Issue) bool {
		return issue.IsPending() && issue.MatchesExpertise(types)
	}), nil
}

func (r *memoryIssueRepository) ClaimPending(ctx context.Context, issueID, repairerID string, claimedAt time.Time) (*entity.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	issue, ok := r.issues[issueID]
	if !ok {
		return nil, errors.NotFound("Issue", nil)
	}
	if !issue.IsPending() {
		return nil, errors.Conflict("Issue already claimed")
	}

	issue.Status = entity.IssueStatusWorking
	issue.RepairerID = repairerID
	issue.ClaimedAt = &claimedAt
	issue.UpdatedAt = claimedAt
	return cloneIssue(issue), nil
}

func (r *memoryIssueRepository) BindChat(ctx context.Context, issueID, chatID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	issue, ok := r.issues[issueID]
	if !ok {
		return "", errors.NotFound("Issue", nil)
	}
	if issue.ChatID == "" {
		issue.ChatID = chatID
		issue.UpdatedAt = time.Now().UTC()
	}
	return issue.ChatID, nil
}

func (r *memoryIssueRepository) filter(keep func(*entity.Issue) bool) []*entity.Issue {
	r.mu.RLock()
	out := make([]*entity.Issue, 0)
	for _, issue := range r.issues {
		if keep(issue) {
			out = append(out, cloneIssue(issue))
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(out)
	return out
}
