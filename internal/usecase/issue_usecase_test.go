package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/infrastructure/events"
	"furiousrepair/pkg/errors"
)

func TestReportIssueStartsPending(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "alice")

	issue, err := f.issueUC.ReportIssue(context.Background(), owner.SubjectID, ReportIssueInput{
		DeviceType:     " phone ",
		Description:    "Screen cracked",
		EstimatedPrice: "1500",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, issue.ID)
	assert.Equal(t, entity.IssueStatusPending, issue.Status)
	assert.Empty(t, issue.RepairerID)
	assert.Empty(t, issue.ChatID)
	assert.Equal(t, "phone", issue.DeviceType)
	assert.Equal(t, owner.SubjectID, issue.UserID)
	assert.True(t, issue.DateReported.Equal(start), "dateReported defaults to now")

	assert.Equal(t, []string{events.SubjectIssueReported}, f.events.Subjects())
	payload, ok := f.events.Events()[0].Payload.(events.IssueReported)
	require.True(t, ok)
	assert.Equal(t, issue.ID, payload.IssueID)
}

func TestReportIssueValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "alice")
	ctx := context.Background()

	_, err := f.issueUC.ReportIssue(ctx, owner.SubjectID, ReportIssueInput{Description: "no type"})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = f.issueUC.ReportIssue(ctx, owner.SubjectID, ReportIssueInput{VehicleType: "car", Description: "   "})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = f.issueUC.ReportIssue(ctx, "", ReportIssueInput{VehicleType: "car", Description: "flat tyre"})
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	assert.Empty(t, f.events.Events())
}

func TestReportIssueDoesNotDeduplicate(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "alice")

	first := f.report(t, owner, "phone", 0)
	second := f.report(t, owner, "phone", 0)
	assert.NotEqual(t, first.ID, second.ID)

	mine, err := f.issueUC.ListMine(context.Background(), owner.SubjectID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestListMineIsNewestFirstAndScopedToOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	fixer := f.repairer(t, "fixer", "laptop")

	older := f.report(t, alice, "phone", 0)
	newer := f.report(t, alice, "laptop", time.Hour)
	f.report(t, bob, "tv", 2*time.Hour)

	_, err := f.claimUC.Claim(context.Background(), fixer, newer.ID)
	require.NoError(t, err)

	mine, err := f.issueUC.ListMine(context.Background(), alice.SubjectID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)

	require.NotNil(t, mine[0].Repairer)
	assert.Equal(t, "fixer", mine[0].Repairer.Name)
	assert.Empty(t, mine[0].Repairer.Email, "listings do not expose emails")
	assert.Nil(t, mine[1].Repairer)
	require.NotNil(t, mine[1].User)
	assert.Equal(t, "alice", mine[1].User.Name)
}

func TestGetMineHidesOtherUsersIssues(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	issue := f.report(t, alice, "phone", 0)

	details, err := f.issueUC.GetMine(context.Background(), alice.SubjectID, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, issue.ID, details.ID)
	assert.Equal(t, "alice@example.com", details.User.Email)

	_, err = f.issueUC.GetMine(context.Background(), bob.SubjectID, issue.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, err = f.issueUC.GetMine(context.Background(), alice.SubjectID, "missing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestIssueLocationAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	holder := f.repairer(t, "holder", "phone")
	outsider := f.repairer(t, "outsider", "phone")
	issue := f.report(t, alice, "phone", 0)

	location, err := f.issueUC.IssueLocation(ctx, alice, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pune", location.City)
	require.NotNil(t, location.Geo)

	_, err = f.issueUC.IssueLocation(ctx, holder, issue.ID)
	assert.True(t, errors.Is(err, errors.CodeForbidden), "pending issues are not visible to repairers")

	_, err = f.claimUC.Claim(ctx, holder, issue.ID)
	require.NoError(t, err)

	_, err = f.issueUC.IssueLocation(ctx, holder, issue.ID)
	assert.NoError(t, err)
	_, err = f.issueUC.IssueLocation(ctx, outsider, issue.ID)
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	noGeo, err := f.issueUC.ReportIssue(ctx, alice.SubjectID, ReportIssueInput{VehicleType: "car", Description: "flat tyre"})
	require.NoError(t, err)
	_, err = f.issueUC.IssueLocation(ctx, alice, noGeo.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}
