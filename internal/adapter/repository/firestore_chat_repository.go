package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/pkg/errors"
)

// Chats are stored at chats/{issueId}, so the document path itself enforces
// one chat per issue.
const chatsCollection = "chats"

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) CreateIfAbsent(ctx context.Context, chat *entity.Chat) (*entity.Chat, error) {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	if chat.Messages == nil {
		chat.Messages = []entity.Message{}
	}
	now := time.Now().UTC()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	chat.UpdatedAt = chat.CreatedAt

	_, err := r.client.Collection(chatsCollection).Doc(chat.IssueID).Create(ctx, chat)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return r.GetByIssueID(ctx, chat.IssueID)
		}
		return nil, errors.Internal("Failed to create chat", err)
	}
	return chat, nil
}

func (r *firestoreChatRepository) GetByIssueID(ctx context.Context, issueID string) (*entity.Chat, error) {
	doc, err := r.client.Collection(chatsCollection).Doc(issueID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}
	if chat.Messages == nil {
		chat.Messages = []entity.Message{}
	}
	return &chat, nil
}

// AppendMessage relies on ArrayUnion appending to the end of the array. Each
// message carries a unique id, so the union never drops a message.
func (r *firestoreChatRepository) AppendMessage(ctx context.Context, issueID string, message entity.Message) (*entity.Chat, error) {
	_, err := r.client.Collection(chatsCollection).Doc(issueID).Update(ctx, []firestore.Update{
		{Path: "messages", Value: firestore.ArrayUnion(message)},
		{Path: "updatedAt", Value: message.Timestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, errors.Internal("Failed to append message", err)
	}
	return r.GetByIssueID(ctx, issueID)
}

func (r *firestoreChatRepository) AssignRepairer(ctx context.Context, issueID, repairerID string) (*entity.Chat, error) {
	ref := r.client.Collection(chatsCollection).Doc(issueID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Chat", err)
			}
			return err
		}
		current, err := doc.DataAt("repairerId")
		if err == nil {
			if s, ok := current.(string); ok && s != "" {
				return nil
			}
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "repairerId", Value: repairerID},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
		return nil, errors.Internal("Failed to assign chat repairer", err)
	}
	return r.GetByIssueID(ctx, issueID)
}
