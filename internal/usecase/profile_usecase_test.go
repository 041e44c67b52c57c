package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/pkg/errors"
)

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	f.user(t, "bob")

	user, err := f.profileUC.UpdateProfile(ctx, alice.SubjectID, UpdateProfileInput{Name: "Alice B", Email: " ALICE.B@example.com "})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", user.Name)
	assert.Equal(t, "alice.b@example.com", user.Email)

	_, err = f.profileUC.UpdateProfile(ctx, alice.SubjectID, UpdateProfileInput{Name: "Alice", Email: "bob@example.com"})
	assert.True(t, errors.Is(err, errors.CodeConflict))

	_, err = f.profileUC.UpdateProfile(ctx, alice.SubjectID, UpdateProfileInput{Name: " ", Email: "a@example.com"})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = f.profileUC.UpdateProfile(ctx, "missing", UpdateProfileInput{Name: "X", Email: "x@example.com"})
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	profile, err := f.profileUC.GetProfile(ctx, alice.SubjectID)
	require.NoError(t, err)
	assert.Equal(t, "alice.b@example.com", profile.Email)
}

func TestShopLocations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	located := &entity.Repairer{
		Name:      "Located",
		Email:     "located@example.com",
		Phone:     "555-0100",
		Expertise: []string{"phone"},
		Location:  entity.Location{City: "Pune", Geo: &entity.GeoPoint{Lat: 18.5, Long: 73.8}},
	}
	require.NoError(t, f.repairers.Create(ctx, located))
	nowhere := f.repairer(t, "nowhere", "tv")

	geo, err := f.profileUC.ShopLocation(ctx, located.ID)
	require.NoError(t, err)
	assert.InDelta(t, 18.5, geo.Lat, 1e-9)

	_, err = f.profileUC.ShopLocation(ctx, nowhere.SubjectID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, err = f.profileUC.ShopLocation(ctx, "missing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	shops, err := f.profileUC.AllShops(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "Located", shops[0].Name)
	assert.Equal(t, "555-0100", shops[0].Phone)
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(4)

	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.NoError(t, hasher.Compare(hash, "secret1"))
	assert.Error(t, hasher.Compare(hash, "secret2"))

	assert.Equal(t, bcryptHasher{cost: 10}, NewBcryptHasher(100))
}
