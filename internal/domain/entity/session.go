package entity

import "time"

type Role string

const (
	RoleUser     Role = "user"
	RoleRepairer Role = "repairer"
)

// Session is the server-side record behind a session cookie.
type Session struct {
	Token     string    `json:"-" firestore:"token"`
	SubjectID string    `json:"subjectId" firestore:"subjectId"`
	Role      Role      `json:"role" firestore:"role"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt" firestore:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Principal returns the authenticated identity carried by the session.
func (s *Session) Principal() Principal {
	return Principal{SubjectID: s.SubjectID, Role: s.Role}
}

// Principal is the caller identity handed to usecases.
type Principal struct {
	SubjectID string
	Role      Role
}

func (p Principal) IsRepairer() bool { return p.Role == RoleRepairer && p.SubjectID != "" }

func (p Principal) IsUser() bool { return p.Role == RoleUser && p.SubjectID != "" }
