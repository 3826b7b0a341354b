package domain

import "time"

// Re-validation rules. Each predicate takes the current entity snapshot and
// the wall-clock time and reports whether the overdue/staleness condition
// holds right now. They are evaluated at fire time against live state, never
// at schedule time: a firing job is a prompt to re-check, not a guarantee.

// ProjectCompletionOverdue holds when the project is not completed and its
// projected end date has passed.
func ProjectCompletionOverdue(p *Project, now time.Time) bool {
	return !p.IsCompleted && now.After(p.DateProjectedEnd)
}

// MilestoneCompletionOverdue holds when the milestone is not completed and
// its projected end date has passed.
func MilestoneCompletionOverdue(m *Milestone, now time.Time) bool {
	return !m.IsCompleted && now.After(m.DateProjectedEnd)
}

// MilestonePaymentOverdue holds when a completed, unpaid milestone has gone
// unpaid past the grace period following its actual end date.
func MilestonePaymentOverdue(m *Milestone, now time.Time, graceMonths int) bool {
	return m.IsCompleted &&
		!m.IsPaid &&
		m.DateActualEnd != nil &&
		now.After(m.DateActualEnd.AddDate(0, graceMonths, 0))
}

// ProjectStale holds when the project has not been updated within the
// staleness threshold.
func ProjectStale(p *Project, now time.Time, staleAfter time.Duration) bool {
	return now.After(p.DateUpdated.Add(staleAfter))
}
