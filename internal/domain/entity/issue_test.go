package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIssueMatchesExpertise(t *testing.T) {
	phone := &Issue{DeviceType: "phone"}
	car := &Issue{VehicleType: "car"}

	assert.True(t, phone.MatchesExpertise([]string{"laptop", "phone"}))
	assert.False(t, phone.MatchesExpertise([]string{"laptop"}))
	assert.True(t, car.MatchesExpertise([]string{"car"}))
	assert.False(t, car.MatchesExpertise(nil))
	// An issue with no vehicle type must not match an empty tag.
	assert.False(t, phone.MatchesExpertise([]string{""}))
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: now}

	assert.True(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(-time.Second)))
}

func TestRepairerHasClaimed(t *testing.T) {
	r := &Repairer{Issues: []string{"a", "b"}}
	assert.True(t, r.HasClaimed("b"))
	assert.False(t, r.HasClaimed("c"))
}
