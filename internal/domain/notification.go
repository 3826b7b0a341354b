package domain

import (
	"fmt"
	"strings"
	"time"
)

// Logical category names for the deferred status checks. Each maps to an
// immutable notification_categories reference row seeded at migration time.
const (
	CategoryProjectCompletionOverdue   = "project-completion-overdue"
	CategoryProjectStale               = "project-stale"
	CategoryMilestoneCompletionOverdue = "milestone-completion-overdue"
	CategoryMilestonePaymentOverdue    = "milestone-payment-overdue"
)

// CategoryNames lists every known category, in seed order.
func CategoryNames() []string {
	return []string{
		CategoryProjectCompletionOverdue,
		CategoryProjectStale,
		CategoryMilestoneCompletionOverdue,
		CategoryMilestonePaymentOverdue,
	}
}

// IsMilestoneCategory reports whether the category is scoped to a milestone
// origin rather than a project origin.
func IsMilestoneCategory(name string) bool {
	switch name {
	case CategoryMilestoneCompletionOverdue, CategoryMilestonePaymentOverdue:
		return true
	}
	return false
}

// Category is immutable reference data describing one condition kind.
type Category struct {
	ID      string
	Name    string
	Message string
}

// Notification records one confirmed occurrence of a condition becoming
// true. It is an event log entry, never mutated after creation.
type Notification struct {
	ID          string
	CategoryID  string
	ProjectID   string
	MilestoneID *string
	DateCreated time.Time
}

func (n *Notification) Validate() error {
	if strings.TrimSpace(n.CategoryID) == "" {
		return fmt.Errorf("%w: category id is required", ErrValidation)
	}
	if strings.TrimSpace(n.ProjectID) == "" {
		return fmt.Errorf("%w: project id is required", ErrValidation)
	}
	return nil
}

// NotificationLog is the per-recipient delivery record, keyed by
// (NotificationID, UserID). Only the seen flag changes after creation.
type NotificationLog struct {
	NotificationID string
	UserID         string
	IsSeen         bool
	DateCreated    time.Time
}
