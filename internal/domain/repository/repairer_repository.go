package repository

import (
	"context"

	"furiousrepair/internal/domain/entity"
)

type RepairerRepository interface {
	// Create fails with CONFLICT when the email is already registered.
	Create(ctx context.Context, repairer *entity.Repairer) error
	GetByID(ctx context.Context, id string) (*entity.Repairer, error)
	GetByEmail(ctx context.Context, email string) (*entity.Repairer, error)

	// AddClaimedIssue adds issueID to the repairer's claimed set. Adding an id
	// that is already present is a no-op.
	AddClaimedIssue(ctx context.Context, repairerID, issueID string) error

	// ListWithLocation returns repairers that registered shop coordinates.
	ListWithLocation(ctx context.Context) ([]*entity.Repairer, error)
}
