package repository

import (
	"time"

	"furiousrepair/internal/domain/entity"
)

// SQLiteModels lists the row types the sqlite driver migrates.
func SQLiteModels() []interface{} {
	return []interface{}{
		&issueRow{},
		&chatRow{},
		&messageRow{},
		&userRow{},
		&repairerRow{},
		&repairerIssueRow{},
		&sessionRow{},
	}
}

type issueRow struct {
	ID             string `gorm:"primaryKey"`
	UserID         string `gorm:"index"`
	RepairerID     string `gorm:"index"`
	DeviceType     string `gorm:"index"`
	VehicleType    string `gorm:"index"`
	Description    string
	EstimatedPrice string
	City           string
	State          string
	Pin            string
	GeoLat         *float64
	GeoLong        *float64
	DateReported   time.Time
	Status         string `gorm:"index"`
	ChatID         string
	ClaimedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (issueRow) TableName() string { return "issues" }

func newIssueRow(issue *entity.Issue) *issueRow {
	row := &issueRow{
		ID:             issue.ID,
		UserID:         issue.UserID,
		RepairerID:     issue.RepairerID,
		DeviceType:     issue.DeviceType,
		VehicleType:    issue.VehicleType,
		Description:    issue.Description,
		EstimatedPrice: issue.EstimatedPrice,
		City:           issue.Location.City,
		State:          issue.Location.State,
		Pin:            issue.Location.Pin,
		DateReported:   issue.DateReported.UTC(),
		Status:         string(issue.Status),
		ChatID:         issue.ChatID,
		ClaimedAt:      issue.ClaimedAt,
		CreatedAt:      issue.CreatedAt,
		UpdatedAt:      issue.UpdatedAt,
	}
	row.GeoLat, row.GeoLong = splitGeo(issue.Location.Geo)
	return row
}

func (r *issueRow) toEntity() *entity.Issue {
	return &entity.Issue{
		ID:             r.ID,
		UserID:         r.UserID,
		RepairerID:     r.RepairerID,
		DeviceType:     r.DeviceType,
		VehicleType:    r.VehicleType,
		Description:    r.Description,
		EstimatedPrice: r.EstimatedPrice,
		Location: entity.Location{
			City:  r.City,
			State: r.State,
			Pin:   r.Pin,
			Geo:   joinGeo(r.GeoLat, r.GeoLong),
		},
		DateReported: r.DateReported,
		Status:       entity.IssueStatus(r.Status),
		ChatID:       r.ChatID,
		ClaimedAt:    r.ClaimedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type chatRow struct {
	ID         string `gorm:"primaryKey"`
	IssueID    string `gorm:"uniqueIndex"`
	UserID     string
	RepairerID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (chatRow) TableName() string { return "chats" }

// messageRow.Seq gives messages a total append order independent of clock
// resolution.
type messageRow struct {
	Seq       uint   `gorm:"primaryKey;autoIncrement"`
	ID        string `gorm:"uniqueIndex"`
	ChatID    string `gorm:"index"`
	Sender    string
	Message   string
	Timestamp time.Time
}

func (messageRow) TableName() string { return "messages" }

func (r *chatRow) toEntity(messages []messageRow) *entity.Chat {
	chat := &entity.Chat{
		ID:         r.ID,
		IssueID:    r.IssueID,
		UserID:     r.UserID,
		RepairerID: r.RepairerID,
		Messages:   make([]entity.Message, 0, len(messages)),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	for _, m := range messages {
		chat.Messages = append(chat.Messages, entity.Message{
			ID:        m.ID,
			Sender:    entity.SenderRole(m.Sender),
			Message:   m.Message,
			Timestamp: m.Timestamp,
		})
	}
	return chat
}

type userRow struct {
	ID           string `gorm:"primaryKey"`
	Name         string
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func (r *userRow) toEntity() *entity.User {
	return &entity.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type repairerRow struct {
	ID           string `gorm:"primaryKey"`
	Name         string
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	Phone        string
	Expertise    []string `gorm:"serializer:json"`
	Available    bool
	City         string
	State        string
	Pin          string
	GeoLat       *float64
	GeoLong      *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (repairerRow) TableName() string { return "repairers" }

func (r *repairerRow) toEntity(issues []string) *entity.Repairer {
	if issues == nil {
		issues = []string{}
	}
	expertise := r.Expertise
	if expertise == nil {
		expertise = []string{}
	}
	return &entity.Repairer{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Phone:        r.Phone,
		Expertise:    expertise,
		Available:    r.Available,
		Location: entity.Location{
			City:  r.City,
			State: r.State,
			Pin:   r.Pin,
			Geo:   joinGeo(r.GeoLat, r.GeoLong),
		},
		Issues:    issues,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// repairerIssueRow is the claimed-issue set; the composite key makes inserts
// idempotent.
type repairerIssueRow struct {
	RepairerID string `gorm:"primaryKey"`
	IssueID    string `gorm:"primaryKey"`
	CreatedAt  time.Time
}

func (repairerIssueRow) TableName() string { return "repairer_issues" }

type sessionRow struct {
	Token     string `gorm:"primaryKey"`
	SubjectID string `gorm:"index"`
	Role      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (sessionRow) TableName() string { return "sessions" }

func splitGeo(geo *entity.GeoPoint) (*float64, *float64) {
	if geo == nil {
		return nil, nil
	}
	lat, long := geo.Lat, geo.Long
	return &lat, &long
}

func joinGeo(lat, long *float64) *entity.GeoPoint {
	if lat == nil || long == nil {
		return nil
	}
	return &entity.GeoPoint{Lat: *lat, Long: *long}
}
