package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"furiousrepair/internal/adapter/repository"
	"furiousrepair/internal/domain/entity"
	domainrepo "furiousrepair/internal/domain/repository"
	"furiousrepair/internal/infrastructure/events"
	"furiousrepair/internal/infrastructure/ratelimit"
	"furiousrepair/pkg/clock"
)

var start = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	issues    domainrepo.IssueRepository
	chats     domainrepo.ChatRepository
	users     domainrepo.UserRepository
	repairers domainrepo.RepairerRepository
	sessions  domainrepo.SessionRepository
	events    *events.Recorder
	clock     *clock.Fake
	limiter   *ratelimit.RateLimiter

	issueUC    *IssueUseCase
	claimUC    *ClaimUseCase
	matchingUC *MatchingUseCase
	chatUC     *ChatUseCase
	authUC     *AuthUseCase
	profileUC  *ProfileUseCase
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithMessageLimit(t, 1000)
}

func newFixtureWithMessageLimit(t *testing.T, perMinute int) *fixture {
	t.Helper()
	f := &fixture{
		issues:    repository.NewMemoryIssueRepository(),
		chats:     repository.NewMemoryChatRepository(),
		users:     repository.NewMemoryUserRepository(),
		repairers: repository.NewMemoryRepairerRepository(),
		sessions:  repository.NewMemorySessionRepository(),
		events:    &events.Recorder{},
		clock:     clock.NewFake(start),
	}
	f.limiter = ratelimit.NewRateLimiter(map[string]ratelimit.Policy{
		ratelimit.ActionSendMessage: ratelimit.PerMinute(perMinute),
	}, ratelimit.PerMinute(1000), f.clock)

	f.issueUC = NewIssueUseCase(f.issues, f.users, f.repairers, f.events, f.clock)
	f.claimUC = NewClaimUseCase(f.issues, f.users, f.repairers, f.events, f.clock)
	f.matchingUC = NewMatchingUseCase(f.issues, f.users, f.repairers)
	f.chatUC = NewChatUseCase(f.chats, f.issues, f.events, f.limiter, f.clock)
	f.authUC = NewAuthUseCase(f.users, f.repairers, f.sessions, NewBcryptHasher(bcrypt.MinCost), f.clock, time.Hour)
	f.profileUC = NewProfileUseCase(f.users, f.repairers)
	return f
}

func (f *fixture) user(t *testing.T, name string) entity.Principal {
	t.Helper()
	u := &entity.User{Name: name, Email: name + "@example.com", PasswordHash: "-"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return entity.Principal{SubjectID: u.ID, Role: entity.RoleUser}
}

func (f *fixture) repairer(t *testing.T, name string, expertise ...string) entity.Principal {
	t.Helper()
	r := &entity.Repairer{Name: name, Email: name + "@example.com", PasswordHash: "-", Expertise: expertise, Available: true}
	require.NoError(t, f.repairers.Create(context.Background(), r))
	return entity.Principal{SubjectID: r.ID, Role: entity.RoleRepairer}
}

// report files an issue for owner with the given device type, reported at
// start plus offset.
func (f *fixture) report(t *testing.T, owner entity.Principal, deviceType string, offset time.Duration) *entity.Issue {
	t.Helper()
	reported := start.Add(offset)
	issue, err := f.issueUC.ReportIssue(context.Background(), owner.SubjectID, ReportIssueInput{
		DeviceType:   deviceType,
		Description:  deviceType + " does not turn on",
		Location:     entity.Location{City: "Pune", State: "MH", Pin: "411001", Geo: &entity.GeoPoint{Lat: 18.52, Long: 73.85}},
		DateReported: &reported,
	})
	require.NoError(t, err)
	return issue
}
