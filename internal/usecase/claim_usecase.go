package usecase

import (
	"context"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/internal/infrastructure/events"
	"furiousrepair/pkg/clock"
	"furiousrepair/pkg/errors"
	"furiousrepair/pkg/logger"
)

// ClaimUseCase moves issues from pending to working. The issue record is the
// source of truth for who holds an issue; the repairer's claimed set is an
// index over it that this usecase keeps in step and repairs on read.
type ClaimUseCase struct {
	issueRepo    repository.IssueRepository
	repairerRepo repository.RepairerRepository
	detailer     issueDetailer
	publisher    events.Publisher
	clock        clock.Clock
}

func NewClaimUseCase(
	issueRepo repository.IssueRepository,
	userRepo repository.UserRepository,
	repairerRepo repository.RepairerRepository,
	publisher events.Publisher,
	clk clock.Clock,
) *ClaimUseCase {
	return &ClaimUseCase{
		issueRepo:    issueRepo,
		repairerRepo: repairerRepo,
		detailer:     issueDetailer{userRepo: userRepo, repairerRepo: repairerRepo},
		publisher:    publisher,
		clock:        clk,
	}
}

// Claim assigns the issue to the calling repairer. Of any number of
// concurrent claims on one pending issue exactly one succeeds; the others get
// CONFLICT.
func (uc *ClaimUseCase) Claim(ctx context.Context, principal entity.Principal, issueID string) (*entity.Issue, error) {
	if !principal.IsRepairer() {
		return nil, errors.Unauthorized("Unauthorized", nil)
	}

	issue, err := uc.issueRepo.ClaimPending(ctx, issueID, principal.SubjectID, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := uc.repairerRepo.AddClaimedIssue(ctx, principal.SubjectID, issue.ID); err != nil {
		logger.Error("Claim: issue %s claimed by %s but claimed-set update failed: %v", issue.ID, principal.SubjectID, err)
	}

	claimedAt := uc.clock.Now()
	if issue.ClaimedAt != nil {
		claimedAt = *issue.ClaimedAt
	}
	if err := uc.publisher.Publish(ctx, events.SubjectIssueClaimed, events.IssueClaimed{
		IssueID:    issue.ID,
		UserID:     issue.UserID,
		RepairerID: issue.RepairerID,
		ClaimedAt:  claimedAt,
	}); err != nil {
		logger.Warn("Claim: publish %s for issue %s failed: %v", events.SubjectIssueClaimed, issue.ID, err)
	}

	return issue, nil
}

// ClaimedIssues lists the issues held by the repairer. It reads the issue
// store and re-adds any id the claimed set is missing.
func (uc *ClaimUseCase) ClaimedIssues(ctx context.Context, repairerID string) ([]*IssueDetails, error) {
	repairer, err := uc.repairerRepo.GetByID(ctx, repairerID)
	if err != nil {
		return nil, err
	}
	issues, err := uc.issueRepo.ListByRepairer(ctx, repairerID)
	if err != nil {
		return nil, err
	}

	uc.reindex(ctx, repairer, issues)
	return uc.detailer.describe(ctx, issues, false)
}

// ClaimedIssue returns an issue the repairer holds, or FORBIDDEN.
func (uc *ClaimUseCase) ClaimedIssue(ctx context.Context, repairerID, issueID string) (*IssueDetails, error) {
	repairer, err := uc.repairerRepo.GetByID(ctx, repairerID)
	if err != nil {
		return nil, err
	}

	issue, err := uc.issueRepo.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) && !repairer.HasClaimed(issueID) {
			return nil, errors.Forbidden("Access denied", err)
		}
		return nil, err
	}
	if issue.RepairerID != repairerID {
		return nil, errors.Forbidden("Access denied", nil)
	}

	uc.reindex(ctx, repairer, []*entity.Issue{issue})
	return uc.detailer.describeOne(ctx, issue)
}

// RebuildClaimIndex re-adds every issue the repairer holds to its claimed set
// and returns how many ids were missing.
func (uc *ClaimUseCase) RebuildClaimIndex(ctx context.Context, repairerID string) (int, error) {
	repairer, err := uc.repairerRepo.GetByID(ctx, repairerID)
	if err != nil {
		return 0, err
	}
	issues, err := uc.issueRepo.ListByRepairer(ctx, repairerID)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, issue := range issues {
		if repairer.HasClaimed(issue.ID) {
			continue
		}
		if err := uc.repairerRepo.AddClaimedIssue(ctx, repairerID, issue.ID); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func (uc *ClaimUseCase) reindex(ctx context.Context, repairer *entity.Repairer, issues []*entity.Issue) {
	for _, issue := range issues {
		if issue.RepairerID != repairer.ID || repairer.HasClaimed(issue.ID) {
			continue
		}
		logger.Debug("reindexing claimed issue %s for repairer %s", issue.ID, repairer.ID)
		if err := uc.repairerRepo.AddClaimedIssue(ctx, repairer.ID, issue.ID); err != nil {
			logger.Warn("reindex: issue %s for repairer %s failed: %v", issue.ID, repairer.ID, err)
		}
	}
}
