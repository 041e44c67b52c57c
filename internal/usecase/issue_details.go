package usecase

import (
	"context"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/pkg/errors"
	"furiousrepair/pkg/logger"
)

// Party is the public face of a user or repairer attached to an issue.
type Party struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// IssueDetails is an issue with its reporter and repairer resolved.
type IssueDetails struct {
	*entity.Issue
	User     *Party `json:"user"`
	Repairer *Party `json:"repairer"`
}

type issueDetailer struct {
	userRepo     repository.UserRepository
	repairerRepo repository.RepairerRepository
}

// describe resolves parties for every issue, looking each id up once. A party
// that cannot be found is left nil rather than failing the listing.
func (d issueDetailer) describe(ctx context.Context, issues []*entity.Issue, withEmail bool) ([]*IssueDetails, error) {
	users := make(map[string]*Party)
	repairers := make(map[string]*Party)

	out := make([]*IssueDetails, 0, len(issues))
	for _, issue := range issues {
		details := &IssueDetails{Issue: issue}

		if issue.UserID != "" {
			party, ok := users[issue.UserID]
			if !ok {
				user, err := d.userRepo.GetByID(ctx, issue.UserID)
				switch {
				case err == nil:
					party = &Party{ID: user.ID, Name: user.Name}
					if withEmail {
						party.Email = user.Email
					}
				case errors.Is(err, errors.CodeNotFound):
					logger.Warn("issue %s references missing user %s", issue.ID, issue.UserID)
				default:
					return nil, err
				}
				users[issue.UserID] = party
			}
			details.User = party
		}

		if issue.RepairerID != "" {
			party, ok := repairers[issue.RepairerID]
			if !ok {
				repairer, err := d.repairerRepo.GetByID(ctx, issue.RepairerID)
				switch {
				case err == nil:
					party = &Party{ID: repairer.ID, Name: repairer.Name}
					if withEmail {
						party.Email = repairer.Email
					}
				case errors.Is(err, errors.CodeNotFound):
					logger.Warn("issue %s references missing repairer %s", issue.ID, issue.RepairerID)
				default:
					return nil, err
				}
				repairers[issue.RepairerID] = party
			}
			details.Repairer = party
		}

		out = append(out, details)
	}
	return out, nil
}

func (d issueDetailer) describeOne(ctx context.Context, issue *entity.Issue) (*IssueDetails, error) {
	details, err := d.describe(ctx, []*entity.Issue{issue}, true)
	if err != nil {
		return nil, err
	}
	return details[0], nil
}
