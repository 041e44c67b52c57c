package entity

import "time"

type SenderRole string

const (
	SenderUser     SenderRole = "user"
	SenderRepairer SenderRole = "repairer"
)

// Chat is the message thread of one issue.
type Chat struct {
	ID         string    `json:"id" firestore:"id"`
	IssueID    string    `json:"issueId" firestore:"issueId"`
	UserID     string    `json:"userId" firestore:"userId"`
	RepairerID string    `json:"repairerId" firestore:"repairerId"`
	Messages   []Message `json:"messages" firestore:"messages"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" firestore:"updatedAt"`
}
