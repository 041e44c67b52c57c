package repository

import (
	"context"
	"time"

	"furiousrepair/internal/domain/entity"
)

type IssueRepository interface {
	Create(ctx context.Context, issue *entity.Issue) error
	GetByID(ctx context.Context, id string) (*entity.Issue, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Issue, error)
	ListByRepairer(ctx context.Context, repairerID string) ([]*entity.Issue, error)

	// FindPendingByTypes returns pending issues whose deviceType or vehicleType
	// is in types, newest dateReported first. Empty types yields nothing.
	FindPendingByTypes(ctx context.Context, types []string) ([]*entity.Issue, error)

	// ClaimPending moves the issue from pending to working and assigns the
	// repairer in one conditional write. It fails with NOT_FOUND when the issue
	// does not exist and CONFLICT when it is no longer pending.
	ClaimPending(ctx context.Context, issueID, repairerID string, claimedAt time.Time) (*entity.Issue, error)

	// BindChat records chatID on the issue unless one is already recorded, and
	// returns whichever chat id the issue ends up bound to.
	BindChat(ctx context.Context, issueID, chatID string) (string, error)
}
