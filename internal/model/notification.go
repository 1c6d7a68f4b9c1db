package model

import (
	"time"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Notification is a local, fire-and-forget message shown to the acting user.
type Notification struct {
	Channel   string             `json:"channel"`
	Title     string             `json:"title"`
	Body      string             `json:"body"`
	Recipient string             `json:"recipient,omitempty"`
	PatientID int64              `json:"patient_id,omitempty"`
	Status    NotificationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}
