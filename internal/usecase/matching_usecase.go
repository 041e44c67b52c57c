package usecase

import (
	"context"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
)

type MatchingUseCase struct {
	issueRepo    repository.IssueRepository
	repairerRepo repository.RepairerRepository
	detailer     issueDetailer
}

func NewMatchingUseCase(
	issueRepo repository.IssueRepository,
	userRepo repository.UserRepository,
	repairerRepo repository.RepairerRepository,
) *MatchingUseCase {
	return &MatchingUseCase{
		issueRepo:    issueRepo,
		repairerRepo: repairerRepo,
		detailer:     issueDetailer{userRepo: userRepo, repairerRepo: repairerRepo},
	}
}

// FindMatching returns pending issues whose device or vehicle type is in
// expertise, most recently reported first. No expertise matches nothing.
func (uc *MatchingUseCase) FindMatching(ctx context.Context, expertise []string) ([]*entity.Issue, error) {
	if len(expertise) == 0 {
		return []*entity.Issue{}, nil
	}
	return uc.issueRepo.FindPendingByTypes(ctx, expertise)
}

// MatchingForRepairer runs FindMatching over the repairer's own expertise.
func (uc *MatchingUseCase) MatchingForRepairer(ctx context.Context, repairerID string) ([]*IssueDetails, error) {
	repairer, err := uc.repairerRepo.GetByID(ctx, repairerID)
	if err != nil {
		return nil, err
	}
	issues, err := uc.FindMatching(ctx, repairer.Expertise)
	if err != nil {
		return nil, err
	}
	return uc.detailer.describe(ctx, issues, false)
}
