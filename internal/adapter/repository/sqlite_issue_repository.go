package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/pkg/errors"
)

type sqliteIssueRepository struct {
	db *gorm.DB
}

func NewSQLiteIssueRepository(db *gorm.DB) repository.IssueRepository {
	return &sqliteIssueRepository{db: db}
}

func (r *sqliteIssueRepository) Create(ctx context.Context, issue *entity.Issue) error {
	if issue.ID == "" {
		issue.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = issue.CreatedAt

	if err := r.db.WithContext(ctx).Create(newIssueRow(issue)).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Conflict("Issue already exists")
		}
		return errors.Internal("Failed to create issue", err)
	}
	return nil
}

func (r *sqliteIssueRepository) GetByID(ctx context.Context, id string) (*entity.Issue, error) {
	var row issueRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Issue", err)
		}
		return nil, errors.Internal("Failed to get issue", err)
	}
	return row.toEntity(), nil
}

func (r *sqliteIssueRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Issue, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *sqliteIssueRepository) ListByRepairer(ctx context.Context, repairerID string) ([]*entity.Issue, error) {
	return r.find(r.db.WithContext(ctx).Where("repairer_id = ?", repairerID))
}

func (r *sqliteIssueRepository) FindPendingByTypes(ctx context.Context, types []string) ([]*entity.Issue, error) {
	types = distinctTags(types)
	if len(types) == 0 {
		return []*entity.Issue{}, nil
	}
	db := r.db.WithContext(ctx)
	return r.find(db.
		Where("status = ?", string(entity.IssueStatusPending)).
		Where(db.Where("device_type IN ?", types).Or("vehicle_type IN ?", types)))
}

// ClaimPending is a guarded UPDATE: the status predicate makes the write a
// compare-and-swap, and RowsAffected tells the winner from the losers.
func (r *sqliteIssueRepository) ClaimPending(ctx context.Context, issueID, repairerID string, claimedAt time.Time) (*entity.Issue, error) {
	res := r.db.WithContext(ctx).Model(&issueRow{}).
		Where("id = ? AND status = ?", issueID, string(entity.IssueStatusPending)).
		Updates(map[string]interface{}{
			"status":      string(entity.IssueStatusWorking),
			"repairer_id": repairerID,
			"claimed_at":  claimedAt,
			"updated_at":  claimedAt,
		})
	if res.Error != nil {
		return nil, errors.Internal("Failed to claim issue", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, issueID); err != nil {
			return nil, err
		}
		return nil, errors.Conflict("Issue already claimed")
	}
	return r.GetByID(ctx, issueID)
}

func (r *sqliteIssueRepository) BindChat(ctx context.Context, issueID, chatID string) (string, error) {
	res := r.db.WithContext(ctx).Model(&issueRow{}).
		Where("id = ? AND chat_id = ?", issueID, "").
		Updates(map[string]interface{}{
			"chat_id":    chatID,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return "", errors.Internal("Failed to bind chat", res.Error)
	}
	issue, err := r.GetByID(ctx, issueID)
	if err != nil {
		return "", err
	}
	return issue.ChatID, nil
}

func (r *sqliteIssueRepository) find(query *gorm.DB) ([]*entity.Issue, error) {
	var rows []issueRow
	if err := query.Order("date_reported DESC, created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, errors.Internal("Failed to query issues", err)
	}
	out := make([]*entity.Issue, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntity())
	}
	sortNewestFirst(out)
	return out, nil
}
