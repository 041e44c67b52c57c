package entity

import "time"

type IssueStatus string

const (
	IssueStatusPending IssueStatus = "pending"
	IssueStatusWorking IssueStatus = "working"
)

type GeoPoint struct {
	Lat  float64 `json:"lat" firestore:"lat"`
	Long float64 `json:"long" firestore:"long"`
}

type Location struct {
	City  string    `json:"city" firestore:"city"`
	State string    `json:"state" firestore:"state"`
	Pin   string    `json:"pin" firestore:"pin"`
	Geo   *GeoPoint `json:"geoloc,omitempty" firestore:"geoloc,omitempty"`
}

// Issue is a repair request. RepairerID is empty exactly while Status is
// pending; ChatID is empty until the first chat access and never changes after.
type Issue struct {
	ID             string      `json:"id" firestore:"id"`
	UserID         string      `json:"userId" firestore:"userId"`
	RepairerID     string      `json:"repairerId" firestore:"repairerId"`
	DeviceType     string      `json:"deviceType,omitempty" firestore:"deviceType"`
	VehicleType    string      `json:"vehicleType,omitempty" firestore:"vehicleType"`
	Description    string      `json:"description" firestore:"description"`
	EstimatedPrice string      `json:"estimatedPrice,omitempty" firestore:"estimatedPrice"`
	Location       Location    `json:"location" firestore:"location"`
	DateReported   time.Time   `json:"dateReported" firestore:"dateReported"`
	Status         IssueStatus `json:"status" firestore:"status"`
	ChatID         string      `json:"chatId" firestore:"chatId"`
	ClaimedAt      *time.Time  `json:"claimedAt,omitempty" firestore:"claimedAt,omitempty"`
	CreatedAt      time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt" firestore:"updatedAt"`
}

func (i *Issue) IsPending() bool {
	return i.Status == IssueStatusPending
}

// MatchesExpertise reports whether the issue's device or vehicle type is one
// of the given tags. Empty types never match.
func (i *Issue) MatchesExpertise(expertise []string) bool {
	for _, tag := range expertise {
		if tag == "" {
			continue
		}
		if tag == i.DeviceType || tag == i.VehicleType {
			return true
		}
	}
	return false
}
