package repository

import (
	"context"

	"furiousrepair/internal/domain/entity"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	// Get returns NOT_FOUND for unknown tokens. Expiry is checked by callers.
	Get(ctx context.Context, token string) (*entity.Session, error)
	Delete(ctx context.Context, token string) error
}
