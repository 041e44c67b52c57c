package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/pkg/clock"
	"furiousrepair/pkg/errors"
	"furiousrepair/pkg/logger"
)

const minPasswordLength = 6

type AuthUseCase struct {
	userRepo     repository.UserRepository
	repairerRepo repository.RepairerRepository
	sessionRepo  repository.SessionRepository
	hasher       PasswordHasher
	clock        clock.Clock
	sessionTTL   time.Duration
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	repairerRepo repository.RepairerRepository,
	sessionRepo repository.SessionRepository,
	hasher PasswordHasher,
	clk clock.Clock,
	sessionTTL time.Duration,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     userRepo,
		repairerRepo: repairerRepo,
		sessionRepo:  sessionRepo,
		hasher:       hasher,
		clock:        clk,
		sessionTTL:   sessionTTL,
	}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

type RepairerSignupInput struct {
	Name      string
	Email     string
	Password  string
	Phone     string
	Expertise []string
	Location  entity.Location
}

// Identity is the signed-in account returned to clients.
type Identity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsRepairer bool   `json:"isRepairer"`
}

type AuthResult struct {
	Identity Identity
	Session  *entity.Session
}

func (uc *AuthUseCase) SignupUser(ctx context.Context, input SignupInput) (*AuthResult, error) {
	name, email, err := checkCredentials(input.Name, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return uc.startSession(ctx, Identity{ID: user.ID, Name: user.Name, Email: user.Email}, entity.RoleUser)
}

func (uc *AuthUseCase) SigninUser(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.Unauthorized("Invalid email or password", nil)
		}
		return nil, err
	}
	if err := uc.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, errors.Unauthorized("Invalid email or password", nil)
	}

	return uc.startSession(ctx, Identity{ID: user.ID, Name: user.Name, Email: user.Email}, entity.RoleUser)
}

func (uc *AuthUseCase) SignupRepairer(ctx context.Context, input RepairerSignupInput) (*AuthResult, error) {
	name, email, err := checkCredentials(input.Name, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	repairer := &entity.Repairer{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(input.Phone),
		Expertise:    cleanExpertise(input.Expertise),
		Available:    true,
		Location:     input.Location,
		Issues:       []string{},
	}
	if err := uc.repairerRepo.Create(ctx, repairer); err != nil {
		return nil, err
	}

	return uc.startSession(ctx, Identity{ID: repairer.ID, Name: repairer.Name, Email: repairer.Email, IsRepairer: true}, entity.RoleRepairer)
}

func (uc *AuthUseCase) SigninRepairer(ctx context.Context, email, password string) (*AuthResult, error) {
	repairer, err := uc.repairerRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.Unauthorized("Invalid email or password", nil)
		}
		return nil, err
	}
	if err := uc.hasher.Compare(repairer.PasswordHash, password); err != nil {
		return nil, errors.Unauthorized("Invalid email or password", nil)
	}

	return uc.startSession(ctx, Identity{ID: repairer.ID, Name: repairer.Name, Email: repairer.Email, IsRepairer: true}, entity.RoleRepairer)
}

// Signout revokes the session. Unknown tokens are not an error.
func (uc *AuthUseCase) Signout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return uc.sessionRepo.Delete(ctx, token)
}

// Authenticate resolves a session token. Missing and expired sessions are
// UNAUTHORIZED; expired ones are removed.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, errors.Unauthorized("Unauthorized", nil)
	}
	session, err := uc.sessionRepo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.Unauthorized("Unauthorized", nil)
		}
		return nil, err
	}
	if session.Expired(uc.clock.Now()) {
		if err := uc.sessionRepo.Delete(ctx, token); err != nil {
			logger.Warn("Authenticate: failed to delete expired session: %v", err)
		}
		return nil, errors.Unauthorized("Session expired", nil)
	}
	return session, nil
}

// Me returns the identity behind principal.
func (uc *AuthUseCase) Me(ctx context.Context, principal entity.Principal) (*Identity, error) {
	switch {
	case principal.IsUser():
		user, err := uc.userRepo.GetByID(ctx, principal.SubjectID)
		if err != nil {
			return nil, err
		}
		return &Identity{ID: user.ID, Name: user.Name, Email: user.Email}, nil
	case principal.IsRepairer():
		repairer, err := uc.repairerRepo.GetByID(ctx, principal.SubjectID)
		if err != nil {
			return nil, err
		}
		return &Identity{ID: repairer.ID, Name: repairer.Name, Email: repairer.Email, IsRepairer: true}, nil
	default:
		return nil, errors.Unauthorized("Not authenticated", nil)
	}
}

func (uc *AuthUseCase) startSession(ctx context.Context, identity Identity, role entity.Role) (*AuthResult, error) {
	now := uc.clock.Now()
	session := &entity.Session{
		Token:     uuid.New().String(),
		SubjectID: identity.ID,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.sessionTTL),
	}
	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return &AuthResult{Identity: identity, Session: session}, nil
}

func checkCredentials(name, email, password string) (string, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return "", "", errors.Validation("All fields are required")
	}
	if len(password) < minPasswordLength {
		return "", "", errors.Validation("Password must be at least 6 characters")
	}
	return name, email, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cleanExpertise(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
