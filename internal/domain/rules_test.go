package domain

import (
	"testing"
	"time"
)

var baseTime = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func TestProjectCompletionOverdue(t *testing.T) {
	t.Parallel()

	project := &Project{DateProjectedEnd: baseTime}

	if !ProjectCompletionOverdue(project, baseTime.Add(time.Hour)) {
		t.Fatal("expected overdue after projected end")
	}
	if ProjectCompletionOverdue(project, baseTime.Add(-time.Hour)) {
		t.Fatal("expected not overdue before projected end")
	}
	if ProjectCompletionOverdue(project, baseTime) {
		t.Fatal("expected not overdue at exactly projected end")
	}

	project.IsCompleted = true
	if ProjectCompletionOverdue(project, baseTime.Add(time.Hour)) {
		t.Fatal("completed project can never be completion overdue")
	}
}

func TestMilestoneCompletionOverdue(t *testing.T) {
	t.Parallel()

	milestone := &Milestone{DateProjectedEnd: baseTime}

	if !MilestoneCompletionOverdue(milestone, baseTime.Add(time.Minute)) {
		t.Fatal("expected overdue after projected end")
	}

	milestone.IsCompleted = true
	if MilestoneCompletionOverdue(milestone, baseTime.Add(time.Minute)) {
		t.Fatal("completed milestone can never be completion overdue")
	}
}

func TestMilestonePaymentOverdue(t *testing.T) {
	t.Parallel()

	actualEnd := baseTime
	milestone := &Milestone{
		IsCompleted:   true,
		IsPaid:        false,
		DateActualEnd: timePtr(actualEnd),
	}

	afterGrace := actualEnd.AddDate(0, 2, 0).Add(time.Hour)
	withinGrace := actualEnd.AddDate(0, 1, 0)

	if !MilestonePaymentOverdue(milestone, afterGrace, 2) {
		t.Fatal("expected payment overdue past grace period")
	}
	if MilestonePaymentOverdue(milestone, withinGrace, 2) {
		t.Fatal("expected not overdue within grace period")
	}

	milestone.IsPaid = true
	if MilestonePaymentOverdue(milestone, afterGrace, 2) {
		t.Fatal("paid milestone can never be payment overdue")
	}

	milestone.IsPaid = false
	milestone.IsCompleted = false
	if MilestonePaymentOverdue(milestone, afterGrace, 2) {
		t.Fatal("incomplete milestone can never be payment overdue")
	}

	milestone.IsCompleted = true
	milestone.DateActualEnd = nil
	if MilestonePaymentOverdue(milestone, afterGrace, 2) {
		t.Fatal("milestone without actual end can never be payment overdue")
	}
}

func TestProjectStale(t *testing.T) {
	t.Parallel()

	project := &Project{DateUpdated: baseTime}
	threshold := 30 * 24 * time.Hour

	if !ProjectStale(project, baseTime.Add(threshold+time.Second), threshold) {
		t.Fatal("expected stale past threshold")
	}
	if ProjectStale(project, baseTime.Add(threshold-time.Second), threshold) {
		t.Fatal("expected fresh within threshold")
	}
}
