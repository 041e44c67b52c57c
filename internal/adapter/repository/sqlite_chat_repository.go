package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/pkg/errors"
)

type sqliteChatRepository struct {
	db *gorm.DB
}

func NewSQLiteChatRepository(db *gorm.DB) repository.ChatRepository {
	return &sqliteChatRepository{db: db}
}

// CreateIfAbsent relies on the unique index on chats.issue_id; a losing
// insert is dropped and the winner's chat is returned.
func (r *sqliteChatRepository) CreateIfAbsent(ctx context.Context, chat *entity.Chat) (*entity.Chat, error) {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	chat.UpdatedAt = chat.CreatedAt

	row := &chatRow{
		ID:         chat.ID,
		IssueID:    chat.IssueID,
		UserID:     chat.UserID,
		RepairerID: chat.RepairerID,
		CreatedAt:  chat.CreatedAt,
		UpdatedAt:  chat.UpdatedAt,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "issue_id"}}, DoNothing: true}).
		Create(row).Error
	if err != nil {
		return nil, errors.Internal("Failed to create chat", err)
	}
	return r.GetByIssueID(ctx, chat.IssueID)
}

func (r *sqliteChatRepository) GetByIssueID(ctx context.Context, issueID string) (*entity.Chat, error) {
	return r.load(r.db.WithContext(ctx), issueID)
}

func (r *sqliteChatRepository) AppendMessage(ctx context.Context, issueID string, message entity.Message) (*entity.Chat, error) {
	var chat *entity.Chat
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row chatRow
		if err := tx.Where("issue_id = ?", issueID).First(&row).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.NotFound("Chat", err)
			}
			return err
		}
		if err := tx.Create(&messageRow{
			ID:        message.ID,
			ChatID:    row.ID,
			Sender:    string(message.Sender),
			Message:   message.Message,
			Timestamp: message.Timestamp,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&chatRow{}).Where("id = ?", row.ID).
			Update("updated_at", message.Timestamp).Error; err != nil {
			return err
		}

		var err error
		chat, err = r.load(tx, issueID)
		return err
	})
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
		return nil, errors.Internal("Failed to append message", err)
	}
	return chat, nil
}

func (r *sqliteChatRepository) AssignRepairer(ctx context.Context, issueID, repairerID string) (*entity.Chat, error) {
	res := r.db.WithContext(ctx).Model(&chatRow{}).
		Where("issue_id = ? AND repairer_id = ?", issueID, "").
		Updates(map[string]interface{}{
			"repairer_id": repairerID,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, errors.Internal("Failed to assign chat repairer", res.Error)
	}
	return r.GetByIssueID(ctx, issueID)
}

func (r *sqliteChatRepository) load(db *gorm.DB, issueID string) (*entity.Chat, error) {
	var row chatRow
	if err := db.Where("issue_id = ?", issueID).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	var messages []messageRow
	if err := db.Where("chat_id = ?", row.ID).Order("seq ASC").Find(&messages).Error; err != nil {
		return nil, errors.Internal("Failed to get chat messages", err)
	}
	return row.toEntity(messages), nil
}
