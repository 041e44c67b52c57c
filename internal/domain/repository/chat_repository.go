package repository

import (
	"context"

	"furiousrepair/internal/domain/entity"
)

// ChatRepository stores at most one chat per issue.
type ChatRepository interface {
	// CreateIfAbsent stores chat unless its issue already has one and returns
	// the chat that is stored for the issue afterwards.
	CreateIfAbsent(ctx context.Context, chat *entity.Chat) (*entity.Chat, error)
	GetByIssueID(ctx context.Context, issueID string) (*entity.Chat, error)
	AppendMessage(ctx context.Context, issueID string, message entity.Message) (*entity.Chat, error)

	// AssignRepairer sets the chat's repairer only if it has none yet.
	AssignRepairer(ctx context.Context, issueID, repairerID string) (*entity.Chat, error)
}
