package push

import (
	"context"
	"time"
)

// UserNotification is the live-delivery payload for a connected client.
type UserNotification struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"projectId"`
	ProjectName   string    `json:"projectName"`
	MilestoneID   *string   `json:"milestoneId,omitempty"`
	MilestoneName *string   `json:"milestoneName,omitempty"`
	Message       string    `json:"message"`
	IsSeen        bool      `json:"isSeen"`
	DateCreated   time.Time `json:"dateCreated"`
}

// Pusher delivers a live update to a user's connected sessions. Delivery is
// best-effort: the persisted notification rows are the durable record, and a
// push failure must never roll them back.
type Pusher interface {
	PushToUser(ctx context.Context, userID string, payload UserNotification) error
}
