package domain

import "time"

// MilestoneStatus is the derived display status of a milestone.
type MilestoneStatus string

const (
	StatusNotStarted        MilestoneStatus = "NOT_STARTED"
	StatusOngoing           MilestoneStatus = "ONGOING"
	StatusAwaitingPayment   MilestoneStatus = "AWAITING_PAYMENT"
	StatusOverduePayment    MilestoneStatus = "OVERDUE_PAYMENT"
	StatusOverdueCompletion MilestoneStatus = "OVERDUE_COMPLETION"
	StatusPaid              MilestoneStatus = "PAID"
)

func (s MilestoneStatus) String() string { return string(s) }

// DeriveMilestoneStatus resolves a milestone's status via an ordered decision
// list, first match wins. The order is a behavioral contract: branches are
// not mutually exclusive near boundary timestamps, so it must not be
// rearranged. All date comparisons are strict; the instant now equals the
// projected end, a not-completed milestone matches neither ONGOING nor
// OVERDUE_COMPLETION and falls through to NOT_STARTED. That boundary is
// intentional, inherited behavior.
func DeriveMilestoneStatus(m *Milestone, now time.Time, graceMonths int) MilestoneStatus {
	if !m.IsCompleted && m.DateProjectedEnd.After(now) && now.After(m.DateProjectedStart) {
		return StatusOngoing
	}

	if m.IsCompleted && !m.IsPaid &&
		m.DateActualEnd != nil &&
		now.After(m.DateActualEnd.AddDate(0, graceMonths, 0)) {
		return StatusOverduePayment
	}

	if m.IsCompleted && !m.IsPaid {
		return StatusAwaitingPayment
	}

	if !m.IsCompleted && m.DateProjectedEnd.Before(now) {
		return StatusOverdueCompletion
	}

	if m.IsCompleted && m.IsPaid {
		return StatusPaid
	}

	return StatusNotStarted
}
