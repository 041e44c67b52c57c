package entity

import "time"

// Repairer is a service provider. Issues is a derived index of the issues
// whose RepairerID is this repairer; the issue record is authoritative.
type Repairer struct {
	ID           string    `json:"id" firestore:"id"`
	Name         string    `json:"name" firestore:"name"`
	Email        string    `json:"email" firestore:"email"`
	PasswordHash string    `json:"-" firestore:"passwordHash"`
	Phone        string    `json:"phone,omitempty" firestore:"phone"`
	Expertise    []string  `json:"expertise" firestore:"expertise"`
	Available    bool      `json:"available" firestore:"available"`
	Location     Location  `json:"location" firestore:"location"`
	Issues       []string  `json:"issues" firestore:"issues"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func (r *Repairer) HasClaimed(issueID string) bool {
	for _, id := range r.Issues {
		if id == issueID {
			return true
		}
	}
	return false
}
