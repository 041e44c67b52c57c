package repository

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/pkg/errors"
)

type sqliteSessionRepository struct {
	db *gorm.DB
}

func NewSQLiteSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sqliteSessionRepository{db: db}
}

func (r *sqliteSessionRepository) Create(ctx context.Context, session *entity.Session) error {
	err := r.db.WithContext(ctx).Create(&sessionRow{
		Token:     session.Token,
		SubjectID: session.SubjectID,
		Role:      string(session.Role),
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	}).Error
	if err != nil {
		return errors.Internal("Failed to create session", err)
	}
	return nil
}

func (r *sqliteSessionRepository) Get(ctx context.Context, token string) (*entity.Session, error) {
	var row sessionRow
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Session", err)
		}
		return nil, errors.Internal("Failed to get session", err)
	}
	return &entity.Session{
		Token:     row.Token,
		SubjectID: row.SubjectID,
		Role:      entity.Role(row.Role),
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

func (r *sqliteSessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&sessionRow{}).Error; err != nil {
		return errors.Internal("Failed to delete session", err)
	}
	return nil
}
