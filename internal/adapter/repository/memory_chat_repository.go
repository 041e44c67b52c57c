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

type memoryChatRepository struct {
	mu      sync.RWMutex
	byIssue map[string]*entity.Chat
}

func NewMemoryChatRepository() repository.ChatRepository {
	return &memoryChatRepository{
		byIssue: make(map[string]*entity.Chat),
	}
}

func (r *memoryChatRepository) CreateIfAbsent(ctx context.Context, chat *entity.Chat) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byIssue[chat.IssueID]; ok {
		return cloneChat(existing), nil
	}
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	chat.UpdatedAt = chat.CreatedAt
	stored := cloneChat(chat)
	r.byIssue[chat.IssueID] = stored
	return cloneChat(stored), nil
}

func (r *memoryChatRepository) GetByIssueID(ctx context.Context, issueID string) (*entity.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chat, ok := r.byIssue[issueID]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	return cloneChat(chat), nil
}

func (r *memoryChatRepository) AppendMessage(ctx context.Context, issueID string, message entity.Message) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.byIssue[issueID]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	chat.Messages = append(chat.Messages, message)
	chat.UpdatedAt = message.Timestamp
	return cloneChat(chat), nil
}

func (r *memoryChatRepository) AssignRepairer(ctx context.Context, issueID, repairerID string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.byIssue[issueID]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	if chat.RepairerID == "" {
		chat.RepairerID = repairerID
		chat.UpdatedAt = time.Now().UTC()
	}
	return cloneChat(chat), nil
}
