// Package app wires configuration, storage, usecases and HTTP routes into a
// runnable server.
package app

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"furiousrepair/internal/adapter/api"
	"furiousrepair/internal/adapter/api/handler"
	apimiddleware "furiousrepair/internal/adapter/api/middleware"
	"furiousrepair/internal/adapter/api/router"
	"furiousrepair/internal/adapter/repository"
	domainrepo "furiousrepair/internal/domain/repository"
	"furiousrepair/internal/infrastructure/events"
	"furiousrepair/internal/infrastructure/firebase"
	"furiousrepair/internal/infrastructure/ratelimit"
	"furiousrepair/internal/infrastructure/sqlite"
	"furiousrepair/internal/usecase"
	"furiousrepair/pkg/clock"
	"furiousrepair/pkg/config"
	"furiousrepair/pkg/logger"
)

// Stores groups the repositories of one storage driver.
type Stores struct {
	Issues    domainrepo.IssueRepository
	Chats     domainrepo.ChatRepository
	Users     domainrepo.UserRepository
	Repairers domainrepo.RepairerRepository
	Sessions  domainrepo.SessionRepository
}

type App struct {
	Echo   *echo.Echo
	Stores Stores
	Claims *usecase.ClaimUseCase

	cancel  context.CancelFunc
	closers []func() error
}

type options struct {
	clock        clock.Clock
	publisher    events.Publisher
	passwordCost int
	stores       *Stores
}

type Option func(*options)

func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clock = clk }
}

// WithPublisher replaces the publisher chosen from NATS_URL.
func WithPublisher(p events.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

func WithPasswordCost(cost int) Option {
	return func(o *options) { o.passwordCost = cost }
}

// WithStores skips driver selection and uses the given repositories.
func WithStores(s Stores) Option {
	return func(o *options) { o.stores = &s }
}

func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{
		clock:        clock.Real(),
		passwordCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(&o)
	}

	proxies, err := cfg.TrustedProxyNets()
	if err != nil {
		return nil, err
	}

	a := &App{}

	if o.stores != nil {
		a.Stores = *o.stores
	} else {
		stores, closeStores, err := OpenStores(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.Stores = stores
		a.closers = append(a.closers, closeStores)
	}

	publisher := o.publisher
	if publisher == nil {
		if cfg.NATSURL == "" {
			logger.Info("NATS_URL not set, lifecycle events are disabled")
			publisher = events.Noop{}
		} else {
			nats, err := events.Connect(cfg.NATSURL)
			if err != nil {
				a.Close()
				return nil, err
			}
			logger.Info("Publishing lifecycle events to %s", cfg.NATSURL)
			publisher = nats
			a.closers = append(a.closers, nats.Close)
		}
	}

	limiter := ratelimit.NewRateLimiter(map[string]ratelimit.Policy{
		ratelimit.ActionAuth:        ratelimit.PerMinute(cfg.AuthRateLimit),
		ratelimit.ActionSendMessage: ratelimit.PerMinute(cfg.MessageRateLimit),
	}, ratelimit.PerMinute(60), o.clock)
	cleanupCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	limiter.StartCleanupRoutine(cleanupCtx, 30*time.Minute, time.Hour)

	s := a.Stores
	authUseCase := usecase.NewAuthUseCase(s.Users, s.Repairers, s.Sessions, usecase.NewBcryptHasher(o.passwordCost), o.clock, cfg.SessionTTL)
	issueUseCase := usecase.NewIssueUseCase(s.Issues, s.Users, s.Repairers, publisher, o.clock)
	claimUseCase := usecase.NewClaimUseCase(s.Issues, s.Users, s.Repairers, publisher, o.clock)
	matchingUseCase := usecase.NewMatchingUseCase(s.Issues, s.Users, s.Repairers)
	chatUseCase := usecase.NewChatUseCase(s.Chats, s.Issues, publisher, limiter, o.clock)
	profileUseCase := usecase.NewProfileUseCase(s.Users, s.Repairers)
	a.Claims = claimUseCase

	authMiddleware := apimiddleware.NewAuthMiddleware(
		authUseCase,
		apimiddleware.NewSessionCodec(cfg.SessionSecret, o.clock),
		apimiddleware.CookieOptions{Name: cfg.SessionCookieName, Secure: cfg.CookieSecure},
	)

	e := api.NewEcho(api.ServerOptions{
		FrontendOrigin: cfg.FrontendOrigin,
		RequestLog:     !cfg.IsTest(),
		TrustedProxies: proxies,
	})
	router.Setup(e, router.Handlers{
		Auth:     handler.NewAuthHandler(authUseCase, authMiddleware),
		User:     handler.NewUserHandler(profileUseCase),
		Issue:    handler.NewIssueHandler(issueUseCase),
		Chat:     handler.NewChatHandler(chatUseCase),
		Repairer: handler.NewRepairerHandler(matchingUseCase, claimUseCase, profileUseCase),
		Health:   handler.NewHealthHandler(cfg.StorageDriver, o.clock),
	}, authMiddleware, limiter)
	a.Echo = e

	return a, nil
}

// OpenStores builds the repositories for cfg.StorageDriver. The returned
// func releases the underlying connection.
func OpenStores(ctx context.Context, cfg *config.Config) (Stores, func() error, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage; data is lost on restart and claims are only atomic within this process")
		return MemoryStores(), func() error { return nil }, nil

	case config.StorageSQLite:
		db, err := sqlite.Open(sqlite.Options{Path: cfg.SQLitePath, Debug: !cfg.IsProduction()}, repository.SQLiteModels()...)
		if err != nil {
			return Stores{}, nil, err
		}
		logger.Info("Using sqlite storage at %s", cfg.SQLitePath)
		return SQLiteStores(db), func() error { return sqlite.Close(db) }, nil

	case config.StorageFirestore:
		client, err := firebase.NewFirestoreClient(ctx, firebase.Options{
			ProjectID:       cfg.FirebaseProject,
			CredentialsJSON: cfg.FirebaseServiceAccountJSON,
			CredentialsPath: cfg.FirebaseServiceAccountPath,
		})
		if err != nil {
			return Stores{}, nil, err
		}
		logger.Info("Using firestore storage for project %s", cfg.FirebaseProject)
		return FirestoreStores(client), client.Close, nil

	default:
		return Stores{}, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func MemoryStores() Stores {
	return Stores{
		Issues:    repository.NewMemoryIssueRepository(),
		Chats:     repository.NewMemoryChatRepository(),
		Users:     repository.NewMemoryUserRepository(),
		Repairers: repository.NewMemoryRepairerRepository(),
		Sessions:  repository.NewMemorySessionRepository(),
	}
}

func SQLiteStores(db *gorm.DB) Stores {
	return Stores{
		Issues:    repository.NewSQLiteIssueRepository(db),
		Chats:     repository.NewSQLiteChatRepository(db),
		Users:     repository.NewSQLiteUserRepository(db),
		Repairers: repository.NewSQLiteRepairerRepository(db),
		Sessions:  repository.NewSQLiteSessionRepository(db),
	}
}

func FirestoreStores(client *firestore.Client) Stores {
	return Stores{
		Issues:    repository.NewFirestoreIssueRepository(client),
		Chats:     repository.NewFirestoreChatRepository(client),
		Users:     repository.NewFirestoreUserRepository(client),
		Repairers: repository.NewFirestoreRepairerRepository(client),
		Sessions:  repository.NewFirestoreSessionRepository(client),
	}
}

// Close stops background work and releases connections in reverse order.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
