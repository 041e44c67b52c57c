package usecase

import (
	"context"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/pkg/errors"
)

// authorizeIssue loads the issue and checks that the caller is its owning
// user or its claiming repairer. A user probing someone else's issue sees
// NOT_FOUND; a repairer who does not hold the claim sees FORBIDDEN.
func authorizeIssue(ctx context.Context, issueRepo repository.IssueRepository, principal entity.Principal, issueID string) (*entity.Issue, error) {
	switch {
	case principal.IsUser():
		issue, err := issueRepo.GetByID(ctx, issueID)
		if err != nil {
			return nil, err
		}
		if issue.UserID != principal.SubjectID {
			return nil, errors.NotFound("Issue", nil)
		}
		return issue, nil
	case principal.IsRepairer():
		issue, err := issueRepo.GetByID(ctx, issueID)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				return nil, errors.Forbidden("Access denied", err)
			}
			return nil, err
		}
		if issue.RepairerID != principal.SubjectID {
			return nil, errors.Forbidden("Access denied", nil)
		}
		return issue, nil
	default:
		return nil, errors.Unauthorized("Unauthorized", nil)
	}
}

func senderFor(principal entity.Principal) (entity.SenderRole, error) {
	switch {
	case principal.IsUser():
		return entity.SenderUser, nil
	case principal.IsRepairer():
		return entity.SenderRepairer, nil
	default:
		return "", errors.Unauthorized("Unauthorized", nil)
	}
}
