package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/pkg/errors"
)

const (
	issuesCollection = "issues"

	// Firestore caps the number of values in an "in" filter.
	firestoreInLimit = 30
)

type firestoreIssueRepository struct {
	client *firestore.Client
}

func NewFirestoreIssueRepository(client *firestore.Client) repository.IssueRepository {
	return &firestoreIssueRepository{
		client: client,
	}
}

func (r *firestoreIssueRepository) Create(ctx context.Context, issue *entity.Issue) error {
	if issue.ID == "" {
		issue.ID = r.client.Collection(issuesCollection).NewDoc().ID
	}
	now := time.Now().UTC()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = issue.CreatedAt

	_, err := r.client.Collection(issuesCollection).Doc(issue.ID).Create(ctx, issue)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("Issue already exists")
		}
		return errors.Internal("Failed to create issue", err)
	}
	return nil
}

func (r *firestoreIssueRepository) GetByID(ctx context.Context, id string) (*entity.Issue, error) {
	doc, err := r.client.Collection(issuesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Issue", err)
		}
		return nil, errors.Internal("Failed to get issue", err)
	}
	return decodeIssue(doc)
}

func (r *firestoreIssueRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Issue, error) {
	return r.list(ctx, r.client.Collection(issuesCollection).Where("userId", "==", userID))
}

func (r *firestoreIssueRepository) ListByRepairer(ctx context.Context, repairerID string) ([]*entity.Issue, error) {
	return r.list(ctx, r.client.Collection(issuesCollection).Where("repairerId", "==", repairerID))
}

// FindPendingByTypes runs one "in" query per field and chunk and merges the
// results, which avoids an OR filter and the composite index it would need.
func (r *firestoreIssueRepository) FindPendingByTypes(ctx context.Context, types []string) ([]*entity.Issue, error) {
	types = distinctTags(types)
	if len(types) == 0 {
		return []*entity.Issue{}, nil
	}

	seen := make(map[string]struct{})
	out := make([]*entity.Issue, 0)
	for _, field := range []string{"deviceType", "vehicleType"} {
		for start := 0; start < len(types); start += firestoreInLimit {
			end := start + firestoreInLimit
			if end > len(types) {
				end = len(types)
			}
			query := r.client.Collection(issuesCollection).
				Where("status", "==", string(entity.IssueStatusPending)).
				Where(field, "in", types[start:end])

			docs, err := query.Documents(ctx).GetAll()
			if err != nil {
				return nil, errors.Internal("Failed to query matching issues", err)
			}
			for _, doc := range docs {
				if _, dup := seen[doc.Ref.ID]; dup {
					continue
				}
				issue, err := decodeIssue(doc)
				if err != nil {
					return nil, err
				}
				seen[doc.Ref.ID] = struct{}{}
				out = append(out, issue)
			}
		}
	}

	sortNewestFirst(out)
	return out, nil
}

func (r *firestoreIssueRepository) ClaimPending(ctx context.Context, issueID, repairerID string, claimedAt time.Time) (*entity.Issue, error) {
	ref := r.client.Collection(issuesCollection).Doc(issueID)

	var claimed *entity.Issue
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Issue", err)
			}
			return err
		}

		issue, err := decodeIssue(doc)
		if err != nil {
			return err
		}
		if !issue.IsPending() {
			return errors.Conflict("Issue already claimed")
		}

		issue.Status = entity.IssueStatusWorking
		issue.RepairerID = repairerID
		issue.ClaimedAt = &claimedAt
		issue.UpdatedAt = claimedAt
		claimed = issue

		// The transaction aborts and retries if the document changed since
		// tx.Get, so a concurrent claimer re-reads a working issue.
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(entity.IssueStatusWorking)},
			{Path: "repairerId", Value: repairerID},
			{Path: "claimedAt", Value: claimedAt},
			{Path: "updatedAt", Value: claimedAt},
		})
	})
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) || errors.Is(err, errors.CodeConflict) {
			return nil, err
		}
		return nil, errors.Internal("Failed to claim issue", err)
	}
	return claimed, nil
}

func (r *firestoreIssueRepository) BindChat(ctx context.Context, issueID, chatID string) (string, error) {
	ref := r.client.Collection(issuesCollection).Doc(issueID)

	var bound string
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Issue", err)
			}
			return err
		}
		issue, err := decodeIssue(doc)
		if err != nil {
			return err
		}
		if issue.ChatID != "" {
			bound = issue.ChatID
			return nil
		}
		bound = chatID
		return tx.Update(ref, []firestore.Update{
			{Path: "chatId", Value: chatID},
			{Path: "updatedAt", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return "", err
		}
		return "", errors.Internal("Failed to link chat to issue", err)
	}
	return bound, nil
}

func (r *firestoreIssueRepository) list(ctx context.Context, query firestore.Query) ([]*entity.Issue, error) {
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list issues", err)
	}

	issues := make([]*entity.Issue, 0, len(docs))
	for _, doc := range docs {
		issue, err := decodeIssue(doc)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}

	sortNewestFirst(issues)
	return issues, nil
}

func decodeIssue(doc *firestore.DocumentSnapshot) (*entity.Issue, error) {
	var issue entity.Issue
	if err := doc.DataTo(&issue); err != nil {
		return nil, errors.Internal("Failed to parse issue data", err)
	}
	issue.ID = doc.Ref.ID
	return &issue, nil
}
