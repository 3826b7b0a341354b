package domain

import (
	"fmt"
	"strings"
	"time"
)

// Project role names used to resolve notification recipients.
const (
	RoleCreator     = "Creator"
	RoleProjectLead = "Project Lead"
)

// Project is a tracked engagement with projected and actual date ranges.
type Project struct {
	ID                 string
	Name               string
	Description        string
	PaymentAmount      *float64
	IsCompleted        bool
	IsPaid             bool
	DateProjectedStart time.Time
	DateProjectedEnd   time.Time
	DateActualStart    *time.Time
	DateActualEnd      *time.Time
	DateCreated        time.Time
	DateUpdated        time.Time
	CreatedByID        *string
}

func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: project name is required", ErrValidation)
	}
	if p.DateProjectedEnd.Before(p.DateProjectedStart) {
		return fmt.Errorf("%w: projected end precedes projected start", ErrValidation)
	}
	return nil
}

// Milestone is a payable delivery stage within a project.
type Milestone struct {
	ID                 string
	ProjectID          string
	Name               string
	Description        string
	DateProjectedStart time.Time
	DateProjectedEnd   time.Time
	DateActualStart    *time.Time
	DateActualEnd      *time.Time
	DatePaid           *time.Time
	IsPaid             bool
	IsCompleted        bool
	PaymentPercentage  int
	DateCreated        time.Time
	DateUpdated        time.Time
	CreatedByID        string
}

func (m *Milestone) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: milestone name is required", ErrValidation)
	}
	if strings.TrimSpace(m.ProjectID) == "" {
		return fmt.Errorf("%w: project id is required", ErrValidation)
	}
	if m.DateProjectedEnd.Before(m.DateProjectedStart) {
		return fmt.Errorf("%w: projected end precedes projected start", ErrValidation)
	}
	if m.PaymentPercentage < 0 || m.PaymentPercentage > 100 {
		return fmt.Errorf("%w: payment percentage must be within [0, 100] (got %d)", ErrValidation, m.PaymentPercentage)
	}
	return nil
}

// Member links a user to a project under a role.
type Member struct {
	ProjectID  string
	UserID     string
	RoleID     string
	RoleName   string
	DateJoined time.Time
}
