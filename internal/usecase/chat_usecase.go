package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/internal/infrastructure/events"
	"furiousrepair/internal/infrastructure/ratelimit"
	"furiousrepair/pkg/clock"
	"furiousrepair/pkg/errors"
	"furiousrepair/pkg/logger"
)

const maxMessageLength = 2000

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	issueRepo   repository.IssueRepository
	publisher   events.Publisher
	rateLimiter *ratelimit.RateLimiter
	clock       clock.Clock
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	issueRepo repository.IssueRepository,
	publisher events.Publisher,
	rateLimiter *ratelimit.RateLimiter,
	clk clock.Clock,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		issueRepo:   issueRepo,
		publisher:   publisher,
		rateLimiter: rateLimiter,
		clock:       clk,
	}
}

// GetOrCreateChat returns the issue's chat, creating it on first access.
// Repeated and concurrent calls return the same chat. A chat opened before
// the issue was claimed picks up the repairer on the first call after.
func (uc *ChatUseCase) GetOrCreateChat(ctx context.Context, issueID string) (*entity.Chat, error) {
	issue, err := uc.issueRepo.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	chat, err := uc.chatRepo.GetByIssueID(ctx, issue.ID)
	if err != nil {
		if !errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
		chat, err = uc.chatRepo.CreateIfAbsent(ctx, &entity.Chat{
			ID:         uuid.New().String(),
			IssueID:    issue.ID,
			UserID:     issue.UserID,
			RepairerID: issue.RepairerID,
			Messages:   []entity.Message{},
			CreatedAt:  uc.clock.Now(),
		})
		if err != nil {
			return nil, err
		}
	}

	if chat.RepairerID == "" && issue.RepairerID != "" {
		chat, err = uc.chatRepo.AssignRepairer(ctx, issue.ID, issue.RepairerID)
		if err != nil {
			return nil, err
		}
	}

	if issue.ChatID != chat.ID {
		bound, err := uc.issueRepo.BindChat(ctx, issue.ID, chat.ID)
		if err != nil {
			return nil, err
		}
		if bound != chat.ID {
			return nil, errors.Internal("Chat binding mismatch", fmt.Errorf("issue %s bound to chat %s, store holds %s", issue.ID, bound, chat.ID))
		}
	}

	return chat, nil
}

// AppendMessage adds a message to the issue's existing chat. The timestamp is
// assigned here; messages keep the order in which they were appended.
func (uc *ChatUseCase) AppendMessage(ctx context.Context, issueID string, sender entity.SenderRole, text string) (*entity.Chat, error) {
	if sender != entity.SenderUser && sender != entity.SenderRepairer {
		return nil, errors.Validation("sender must be one of: user repairer")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Validation("message is required")
	}
	if len([]rune(text)) > maxMessageLength {
		return nil, errors.Validation(fmt.Sprintf("message must be at most %d characters", maxMessageLength))
	}

	message := entity.Message{
		ID:        uuid.New().String(),
		Sender:    sender,
		Message:   text,
		Timestamp: uc.clock.Now(),
	}
	chat, err := uc.chatRepo.AppendMessage(ctx, issueID, message)
	if err != nil {
		return nil, err
	}

	if err := uc.publisher.Publish(ctx, events.SubjectChatMessage, events.ChatMessage{
		IssueID:   issueID,
		ChatID:    chat.ID,
		MessageID: message.ID,
		Sender:    string(sender),
		Timestamp: message.Timestamp,
	}); err != nil {
		logger.Warn("AppendMessage: publish %s for issue %s failed: %v", events.SubjectChatMessage, issueID, err)
	}

	return chat, nil
}

// OpenChat is GetOrCreateChat for the issue's owner or claiming repairer.
func (uc *ChatUseCase) OpenChat(ctx context.Context, principal entity.Principal, issueID string) (*entity.Chat, error) {
	issue, err := authorizeIssue(ctx, uc.issueRepo, principal, issueID)
	if err != nil {
		return nil, err
	}
	return uc.GetOrCreateChat(ctx, issue.ID)
}

// SendMessage appends a message on behalf of the caller. The sender is taken
// from the caller's role, never from the request.
func (uc *ChatUseCase) SendMessage(ctx context.Context, principal entity.Principal, issueID, text string) (*entity.Chat, error) {
	issue, err := authorizeIssue(ctx, uc.issueRepo, principal, issueID)
	if err != nil {
		return nil, err
	}
	sender, err := senderFor(principal)
	if err != nil {
		return nil, err
	}

	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(principal.SubjectID, ratelimit.ActionSendMessage); !allowed {
			logger.Debug("SendMessage rate limited: %s %s must wait %v", principal.Role, principal.SubjectID, wait)
			return nil, errors.TooManyRequests("Too many messages. Please slow down")
		}
	}

	chat, err := uc.AppendMessage(ctx, issue.ID, sender, text)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, err
	}
	return chat, nil
}
