package repository

import (
	"context"

	"furiousrepair/internal/domain/entity"
)

type UserRepository interface {
	// Create fails with CONFLICT when the email is already registered.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}
