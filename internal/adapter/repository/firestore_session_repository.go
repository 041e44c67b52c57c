package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/pkg/errors"
)

const sessionsCollection = "sessions"

type firestoreSessionRepository struct {
	client *firestore.Client
}

func NewFirestoreSessionRepository(client *firestore.Client) repository.SessionRepository {
	return &firestoreSessionRepository{
		client: client,
	}
}

func (r *firestoreSessionRepository) Create(ctx context.Context, session *entity.Session) error {
	_, err := r.client.Collection(sessionsCollection).Doc(session.Token).Set(ctx, session)
	if err != nil {
		return errors.Internal("Failed to create session", err)
	}
	return nil
}

func (r *firestoreSessionRepository) Get(ctx context.Context, token string) (*entity.Session, error) {
	doc, err := r.client.Collection(sessionsCollection).Doc(token).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Session", err)
		}
		return nil, errors.Internal("Failed to get session", err)
	}

	var session entity.Session
	if err := doc.DataTo(&session); err != nil {
		return nil, errors.Internal("Failed to parse session data", err)
	}
	return &session, nil
}

func (r *firestoreSessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.client.Collection(sessionsCollection).Doc(token).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return errors.Internal("Failed to delete session", err)
	}
	return nil
}
