package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/internal/infrastructure/events"
	"furiousrepair/pkg/clock"
	"furiousrepair/pkg/errors"
	"furiousrepair/pkg/logger"
)

type IssueUseCase struct {
	issueRepo repository.IssueRepository
	detailer  issueDetailer
	publisher events.Publisher
	clock     clock.Clock
}

func NewIssueUseCase(
	issueRepo repository.IssueRepository,
	userRepo repository.UserRepository,
	repairerRepo repository.RepairerRepository,
	publisher events.Publisher,
	clk clock.Clock,
) *IssueUseCase {
	return &IssueUseCase{
		issueRepo: issueRepo,
		detailer:  issueDetailer{userRepo: userRepo, repairerRepo: repairerRepo},
		publisher: publisher,
		clock:     clk,
	}
}

type ReportIssueInput struct {
	DeviceType     string
	VehicleType    string
	Description    string
	EstimatedPrice string
	Location       entity.Location
	DateReported   *time.Time
}

// ReportIssue stores a new pending issue for userID. Identical reports are
// not deduplicated.
func (uc *IssueUseCase) ReportIssue(ctx context.Context, userID string, input ReportIssueInput) (*entity.Issue, error) {
	if userID == "" {
		return nil, errors.Unauthorized("Unauthorized", nil)
	}

	deviceType := strings.TrimSpace(input.DeviceType)
	vehicleType := strings.TrimSpace(input.VehicleType)
	if deviceType == "" && vehicleType == "" {
		return nil, errors.Validation("deviceType or vehicleType is required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, errors.Validation("description is required")
	}

	now := uc.clock.Now()
	reported := now
	if input.DateReported != nil && !input.DateReported.IsZero() {
		reported = input.DateReported.UTC()
	}

	issue := &entity.Issue{
		ID:             uuid.New().String(),
		UserID:         userID,
		DeviceType:     deviceType,
		VehicleType:    vehicleType,
		Description:    description,
		EstimatedPrice: strings.TrimSpace(input.EstimatedPrice),
		Location:       input.Location,
		DateReported:   reported,
		Status:         entity.IssueStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.issueRepo.Create(ctx, issue); err != nil {
		return nil, err
	}

	if err := uc.publisher.Publish(ctx, events.SubjectIssueReported, events.IssueReported{
		IssueID:      issue.ID,
		UserID:       issue.UserID,
		DeviceType:   issue.DeviceType,
		VehicleType:  issue.VehicleType,
		DateReported: issue.DateReported,
	}); err != nil {
		logger.Warn("ReportIssue: publish %s for issue %s failed: %v", events.SubjectIssueReported, issue.ID, err)
	}

	return issue, nil
}

// ListMine returns the user's issues, newest first, with claiming repairers
// resolved.
func (uc *IssueUseCase) ListMine(ctx context.Context, userID string) ([]*IssueDetails, error) {
	issues, err := uc.issueRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.detailer.describe(ctx, issues, false)
}

// GetMine returns one of the user's issues. Issues owned by someone else are
// reported as not found.
func (uc *IssueUseCase) GetMine(ctx context.Context, userID, issueID string) (*IssueDetails, error) {
	issue, err := authorizeIssue(ctx, uc.issueRepo, entity.Principal{SubjectID: userID, Role: entity.RoleUser}, issueID)
	if err != nil {
		return nil, err
	}
	return uc.detailer.describeOne(ctx, issue)
}

// IssueLocation returns where the issue was reported, for its owner or the
// repairer holding it.
func (uc *IssueUseCase) IssueLocation(ctx context.Context, principal entity.Principal, issueID string) (*entity.Location, error) {
	issue, err := authorizeIssue(ctx, uc.issueRepo, principal, issueID)
	if err != nil {
		return nil, err
	}
	if issue.Location.Geo == nil {
		return nil, errors.NotFound("Location", nil)
	}
	location := issue.Location
	return &location, nil
}
