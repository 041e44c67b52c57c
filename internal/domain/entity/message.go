package entity

import "time"

type Message struct {
	ID        string     `json:"id" firestore:"id"`
	Sender    SenderRole `json:"sender" firestore:"sender"`
	Message   string     `json:"message" firestore:"message"`
	Timestamp time.Time  `json:"timestamp" firestore:"timestamp"`
}
