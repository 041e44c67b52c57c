package usecase

import (
	"context"
	"strings"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/pkg/errors"
)

type ProfileUseCase struct {
	userRepo     repository.UserRepository
	repairerRepo repository.RepairerRepository
}

func NewProfileUseCase(userRepo repository.UserRepository, repairerRepo repository.RepairerRepository) *ProfileUseCase {
	return &ProfileUseCase{
		userRepo:     userRepo,
		repairerRepo: repairerRepo,
	}
}

type UpdateProfileInput struct {
	Name  string
	Email string
}

// Shop is the public listing of a repairer with a registered location.
type Shop struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone,omitempty"`
	Expertise []string        `json:"expertise"`
	Available bool            `json:"available"`
	Location  entity.Location `json:"location"`
}

func (uc *ProfileUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" {
		return nil, errors.Validation("Name and email are required")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if other, err := uc.userRepo.GetByEmail(ctx, email); err == nil && other.ID != userID {
		return nil, errors.Conflict("Email is already taken")
	} else if err != nil && !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	user.Name = name
	user.Email = email
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *ProfileUseCase) GetRepairer(ctx context.Context, repairerID string) (*entity.Repairer, error) {
	return uc.repairerRepo.GetByID(ctx, repairerID)
}

// ShopLocation returns the repairer's registered coordinates.
func (uc *ProfileUseCase) ShopLocation(ctx context.Context, repairerID string) (*entity.GeoPoint, error) {
	repairer, err := uc.repairerRepo.GetByID(ctx, repairerID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.NotFound("Location", err)
		}
		return nil, err
	}
	if repairer.Location.Geo == nil {
		return nil, errors.NotFound("Location", nil)
	}
	geo := *repairer.Location.Geo
	return &geo, nil
}

func (uc *ProfileUseCase) AllShops(ctx context.Context) ([]Shop, error) {
	repairers, err := uc.repairerRepo.ListWithLocation(ctx)
	if err != nil {
		return nil, err
	}
	shops := make([]Shop, 0, len(repairers))
	for _, r := range repairers {
		shops = append(shops, Shop{
			ID:        r.ID,
			Name:      r.Name,
			Phone:     r.Phone,
			Expertise: r.Expertise,
			Available: r.Available,
			Location:  r.Location,
		})
	}
	return shops, nil
}
