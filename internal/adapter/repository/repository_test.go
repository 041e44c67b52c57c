package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/internal/infrastructure/sqlite"
	"furiousrepair/pkg/errors"
)

type stores struct {
	issues    repository.IssueRepository
	chats     repository.ChatRepository
	users     repository.UserRepository
	repairers repository.RepairerRepository
	sessions  repository.SessionRepository
}

// eachDriver runs fn against every driver that works without external
// services.
func eachDriver(t *testing.T, fn func(t *testing.T, s stores)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, stores{
			issues:    NewMemoryIssueRepository(),
			chats:     NewMemoryChatRepository(),
			users:     NewMemoryUserRepository(),
			repairers: NewMemoryRepairerRepository(),
			sessions:  NewMemorySessionRepository(),
		})
	})
	t.Run("sqlite", func(t *testing.T) {
		db, err := sqlite.Open(sqlite.Options{Path: filepath.Join(t.TempDir(), "repair.db")}, SQLiteModels()...)
		require.NoError(t, err)
		t.Cleanup(func() { _ = sqlite.Close(db) })

		fn(t, stores{
			issues:    NewSQLiteIssueRepository(db),
			chats:     NewSQLiteChatRepository(db),
			users:     NewSQLiteUserRepository(db),
			repairers: NewSQLiteRepairerRepository(db),
			sessions:  NewSQLiteSessionRepository(db),
		})
	})
}

var baseTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func pendingIssue(userID, deviceType string, reported time.Time) *entity.Issue {
	return &entity.Issue{
		UserID:       userID,
		DeviceType:   deviceType,
		Description:  "broken " + deviceType,
		Location:     entity.Location{City: "Pune", State: "MH", Pin: "411001"},
		DateReported: reported,
		Status:       entity.IssueStatusPending,
	}
}

func TestClaimPendingHasSingleWinner(t *testing.T) {
	eachDriver(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		issue := pendingIssue("u1", "phone", baseTime)
		require.NoError(t, s.issues.Create(ctx, issue))

		const contenders = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			winners   []string
			conflicts int
		)
		for i := 0; i < contenders; i++ {
			repairerID := uuid.New().String()
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.issues.ClaimPending(ctx, issue.ID, repairerID, baseTime.Add(time.Minute))
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					winners = append(winners, repairerID)
					return
				}
				if errors.Is(err, errors.CodeConflict) {
					conflicts++
				}
			}()
		}
		wg.Wait()

		require.Len(t, winners, 1)
		assert.Equal(t, contenders-1, conflicts)

		stored, err := s.issues.GetByID(ctx, issue.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.IssueStatusWorking, stored.Status)
		assert.Equal(t, winners[0], stored.RepairerID)
		require.NotNil(t, stored.ClaimedAt)
		assert.True(t, stored.ClaimedAt.Equal(baseTime.Add(time.Minute)))
	})
}

func TestClaimPendingErrors(t *testing.T) {
	eachDriver(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		_, err := s.issues.ClaimPending(ctx, "missing", "r1", baseTime)
		assert.True(t, errors.Is(err, errors.CodeNotFound))

		issue := pendingIssue("u1", "phone", baseTime)
		require.NoError(t, s.issues.Create(ctx, issue))
		_, err = s.issues.ClaimPending(ctx, issue.ID, "r1", baseTime)
		require.NoError(t, err)

		_, err = s.issues.ClaimPending(ctx, issue.ID, "r1", baseTime)
		assert.True(t, errors.Is(err, errors.CodeConflict), "a claimed issue cannot be claimed again, even by its claimer")
	})
}

func TestFindPendingByTypes(t *testing.T) {
	eachDriver(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		older := pendingIssue("u1", "phone", baseTime)
		newer := pendingIssue("u2", "", baseTime.Add(time.Hour))
		newer.VehicleType = "car"
		other := pendingIssue("u1", "laptop", baseTime.Add(2*time.Hour))
		claimed := pendingIssue("u1", "phone", baseTime.Add(3*time.Hour))
		for _, issue := range []*entity.Issue{older, newer, other, claimed} {
			require.NoError(t, s.issues.Create(ctx, issue))
		}
		_, err := s.issues.ClaimPending(ctx, claimed.ID, "r1", baseTime)
		require.NoError(t, err)

		found, err := s.issues.FindPendingByTypes(ctx, []string{"phone", "car", "phone", ""})
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, newer.ID, found[0].ID)
		assert.Equal(t, older.ID, found[1].ID)

		found, err = s.issues.FindPendingByTypes(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)
	})
}

func TestListByUserAndRepairer(t *testing.T) {
	eachDriver(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		first := pendingIssue("u1", "phone", baseTime)
		second := pendingIssue("u1", "tv", baseTime.Add(time.Hour))
		foreign := pendingIssue("u2", "phone", baseTime.Add(2*time.Hour))
		for _, issue := range []*entity.Issue{first, second, foreign} {
			require.NoError(t, s.issues.Create(ctx, issue))
		}
		_, err := s.issues.ClaimPending(ctx, first.ID, "r1", baseTime)
		require.NoError(t, err)

		mine, err := s.issues.ListByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, second.ID, mine[0].ID)
		assert.Equal(t, first.ID, mine[1].ID)

		claimed, err := s.issues.ListByRepairer(ctx, "r1")
		require.NoError(t, err)
		require.Len(t, claimed, 1)
		assert.Equal(t, first.ID, claimed[0].ID)

		none, err := s.issues.ListByUser(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestIssueGeoRoundTrip(t *testing.T) {
	eachDriver(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		issue := pendingIssue("u1", "phone", baseTime)
		issue.Location.Geo = &entity.GeoPoint{Lat: 18.52, Long: 73.85}
		require.NoError(t, s.issues.Create(ctx, issue))

		stored, err := s.issues.GetByID(ctx, issue.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.Location.Geo)
		assert.InDelta(t, 18.52, stored.Location.Geo.Lat, 1e-9)
		assert.InDelta(t, 73.85, stored.Location.Geo.Long, 1e-9)
		assert.Equal(t, "411001", stored.Location.Pin)
		assert.True(t, stored.DateReported.Equal(baseTime))
	})
}

func TestBindChatKeepsFirstChat(t *testing.T) {
	eachDriver(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		issue := pendingIssue("u1", "phone", baseTime)
		require.NoError(t, s.issues.Create(ctx, issue))

		bound, err := s.issues.BindChat(ctx, issue.ID, "chat-1")
		require.NoError(t, err)
		assert.Equal(t, "chat-1", bound)

		bound, err = s.issues.BindChat(ctx, issue.ID, "chat-2")
		require.NoError(t, err)
		assert.Equal(t, "chat-1", bound)

		_, err = s.issues.BindChat(ctx, "missing", "chat-3")
		assert.True(t, errors.Is(err, errors.CodeNotFound))
	})
}

func TestChatCreateIfAbsentIsIdempotent(t *testing.T) {
	eachDriver(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		var wg sync.WaitGroup
		ids := make([]string, 6)
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				chat, err := s.chats.CreateIfAbsent(ctx, &entity.Chat{IssueID: "issue-1", UserID: "u1"})
				if assert.NoError(t, err) {
					ids[i] = chat.ID
				}
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}

		chat, err := s.chats.GetByIssueID(ctx, "issue-1")
		require.NoError(t, err)
		assert.Equal(t, ids[0], chat.ID)
		assert.NotNil(t, chat.Messages)
		assert.Empty(t, chat.Messages)
	})
}

func TestChatMessagesKeepAppendOrder(t *testing.T) {
	eachDriver(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		_, err := s.chats.CreateIfAbsent(ctx, &entity.Chat{IssueID: "issue-1", UserID: "u1"})
		require.NoError(t, err)

		texts := []string{"Screen is cracked", "On my way", "Thanks"}
		senders := []entity.SenderRole{entity.SenderUser, entity.SenderRepairer, entity.SenderUser}
		for i, text := range texts {
			_, err := s.chats.AppendMessage(ctx, "issue-1", entity.Message{
				ID:        uuid.New().String(),
				Sender:    senders[i],
				Message:   text,
				Timestamp: baseTime,
			})
			require.NoError(t, err)
		}

		chat, err := s.chats.GetByIssueID(ctx, "issue-1")
		require.NoError(t, err)
		require.Len(t, chat.Messages, 3)
		for i, text := range texts {
			assert.Equal(t, text, chat.Messages[i].Message)
			assert.Equal(t, senders[i], chat.Messages[i].Sender)
		}

		_, err = s.chats.AppendMessage(ctx, "missing", entity.Message{ID: uuid.New().String(), Sender: entity.SenderUser, Message: "hi"})
		assert.True(t, errors.Is(err, errors.CodeNotFound))
	})
}

func TestChatAssignRepairerOnlyOnce(t *testing.T) {
	eachDriver(t, func(t *testing.T, s stores) {
		ctx := context.Background()
		_, err := s.chats.CreateIfAbsent(ctx, &entity.Chat{IssueID: "issue-1", UserID: "u1"})
		require.NoError(t, err)

		chat, err := s.chats.AssignRepairer(ctx, "issue-1", "r1")
		require.NoError(t, err)
		assert.Equal(t, "r1", chat.RepairerID)

		chat, err = s.chats.AssignRepairer(ctx, "issue-1", "r2")
		require.NoError(t, err)
		assert.Equal(t, "r1", chat.RepairerID)
	})
}

func TestUserEmailIsUnique(t *testing.T) {
	eachDriver(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		alice := &entity.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x"}
		require.NoError(t, s.users.Create(ctx, alice))
		require.NotEmpty(t, alice.ID)

		err := s.users.Create(ctx, &entity.User{Name: "Other", Email: "alice@example.com", PasswordHash: "y"})
		assert.True(t, errors.Is(err, errors.CodeConflict))

		bob := &entity.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "z"}
		require.NoError(t, s.users.Create(ctx, bob))

		bob.Email = "alice@example.com"
		err = s.users.Update(ctx, bob)
		assert.True(t, errors.Is(err, errors.CodeConflict))

		found, err := s.users.GetByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, found.ID)

		_, err = s.users.GetByID(ctx, "missing")
		assert.True(t, errors.Is(err, errors.CodeNotFound))
	})
}

func TestUserUpdate(t *testing.T) {
	eachDriver(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		user := &entity.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x"}
		require.NoError(t, s.users.Create(ctx, user))

		user.Name = "Alice B"
		user.Email = "alice.b@example.com"
		require.NoError(t, s.users.Update(ctx, user))

		stored, err := s.users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice B", stored.Name)
		assert.Equal(t, "alice.b@example.com", stored.Email)
		assert.Equal(t, "x", stored.PasswordHash)

		err = s.users.Update(ctx, &entity.User{ID: "missing", Name: "n", Email: "n@example.com"})
		assert.True(t, errors.Is(err, errors.CodeNotFound))
	})
}

func TestRepairerClaimedIssues(t *testing.T) {
	eachDriver(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		repairer := &entity.Repairer{
			Name:      "Fixit",
			Email:     "fixit@example.com",
			Expertise: []string{"phone", "car"},
			Available: true,
			Location:  entity.Location{City: "Pune", Geo: &entity.GeoPoint{Lat: 18.5, Long: 73.8}},
		}
		require.NoError(t, s.repairers.Create(ctx, repairer))

		err := s.repairers.Create(ctx, &entity.Repairer{Name: "Dup", Email: "fixit@example.com"})
		assert.True(t, errors.Is(err, errors.CodeConflict))

		require.NoError(t, s.repairers.AddClaimedIssue(ctx, repairer.ID, "issue-1"))
		require.NoError(t, s.repairers.AddClaimedIssue(ctx, repairer.ID, "issue-1"))
		require.NoError(t, s.repairers.AddClaimedIssue(ctx, repairer.ID, "issue-2"))

		stored, err := s.repairers.GetByEmail(ctx, "fixit@example.com")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"issue-1", "issue-2"}, stored.Issues)
		assert.Equal(t, []string{"phone", "car"}, stored.Expertise)
		assert.True(t, stored.HasClaimed("issue-2"))

		err = s.repairers.AddClaimedIssue(ctx, "missing", "issue-1")
		assert.True(t, errors.Is(err, errors.CodeNotFound))
	})
}

func TestRepairerListWithLocation(t *testing.T) {
	eachDriver(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		located := &entity.Repairer{Name: "Located", Email: "a@example.com", Location: entity.Location{Geo: &entity.GeoPoint{Lat: 1, Long: 2}}}
		unlocated := &entity.Repairer{Name: "Nowhere", Email: "b@example.com"}
		require.NoError(t, s.repairers.Create(ctx, located))
		require.NoError(t, s.repairers.Create(ctx, unlocated))

		shops, err := s.repairers.ListWithLocation(ctx)
		require.NoError(t, err)
		require.Len(t, shops, 1)
		assert.Equal(t, located.ID, shops[0].ID)
	})
}

func TestSessionLifecycle(t *testing.T) {
	eachDriver(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		session := &entity.Session{
			Token:     "token-1",
			SubjectID: "u1",
			Role:      entity.RoleUser,
			CreatedAt: baseTime,
			ExpiresAt: baseTime.Add(time.Hour),
		}
		require.NoError(t, s.sessions.Create(ctx, session))

		stored, err := s.sessions.Get(ctx, "token-1")
		require.NoError(t, err)
		assert.Equal(t, "u1", stored.SubjectID)
		assert.Equal(t, entity.RoleUser, stored.Role)
		assert.True(t, stored.ExpiresAt.Equal(session.ExpiresAt))

		require.NoError(t, s.sessions.Delete(ctx, "token-1"))
		require.NoError(t, s.sessions.Delete(ctx, "token-1"))

		_, err = s.sessions.Get(ctx, "token-1")
		assert.True(t, errors.Is(err, errors.CodeNotFound))
	})
}
