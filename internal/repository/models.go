package repository

import (
	"time"

	"github.com/pmpulse/status-engine/internal/domain"
)

// UserModel is the persistence model for the users table.
type UserModel struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	FullName    string `gorm:"type:varchar(255);not null"`
	Email       string `gorm:"type:varchar(255);not null"`
	DateCreated time.Time
}

func (UserModel) TableName() string { return "users" }

// RoleModel is the persistence model for project_roles.
type RoleModel struct {
	ID   string `gorm:"type:uuid;primaryKey"`
	Name string `gorm:"type:varchar(64);not null;uniqueIndex"`
}

func (RoleModel) TableName() string { return "project_roles" }

// ProjectModel is the persistence model for the projects table.
type ProjectModel struct {
	ID                 string     `gorm:"type:uuid;primaryKey"`
	Name               string     `gorm:"type:varchar(255);not null"`
	Description        string     `gorm:"type:text;not null"`
	PaymentAmount      *float64   `gorm:"type:double precision"`
	IsCompleted        bool       `gorm:"not null;default:false"`
	IsPaid             bool       `gorm:"not null;default:false"`
	DateProjectedStart time.Time  `gorm:"type:timestamptz;not null"`
	DateProjectedEnd   time.Time  `gorm:"type:timestamptz;not null"`
	DateActualStart    *time.Time `gorm:"type:timestamptz"`
	DateActualEnd      *time.Time `gorm:"type:timestamptz"`
	DateCreated        time.Time  `gorm:"type:timestamptz;not null"`
	DateUpdated        time.Time  `gorm:"type:timestamptz;not null"`
	CreatedByID        *string    `gorm:"type:uuid"`
}

func (ProjectModel) TableName() string { return "projects" }

// MilestoneModel is the persistence model for project_milestones.
type MilestoneModel struct {
	ID                 string     `gorm:"type:uuid;primaryKey"`
	ProjectID          string     `gorm:"type:uuid;not null;index"`
	Name               string     `gorm:"type:varchar(255);not null"`
	Description        string     `gorm:"type:text;not null"`
	DateProjectedStart time.Time  `gorm:"type:timestamptz;not null"`
	DateProjectedEnd   time.Time  `gorm:"type:timestamptz;not null"`
	DateActualStart    *time.Time `gorm:"type:timestamptz"`
	DateActualEnd      *time.Time `gorm:"type:timestamptz"`
	DatePaid           *time.Time `gorm:"type:timestamptz"`
	IsPaid             bool       `gorm:"not null;default:false"`
	IsCompleted        bool       `gorm:"not null;default:false"`
	PaymentPercentage  int        `gorm:"not null;default:0"`
	DateCreated        time.Time  `gorm:"type:timestamptz;not null"`
	DateUpdated        time.Time  `gorm:"type:timestamptz;not null"`
	CreatedByID        string     `gorm:"type:uuid;not null"`
}

func (MilestoneModel) TableName() string { return "project_milestones" }

// MemberModel is the persistence model for project_members.
type MemberModel struct {
	ProjectID  string    `gorm:"type:uuid;primaryKey"`
	UserID     string    `gorm:"type:uuid;primaryKey"`
	RoleID     string    `gorm:"type:uuid;not null"`
	DateJoined time.Time `gorm:"type:timestamptz;not null"`
}

func (MemberModel) TableName() string { return "project_members" }

// CategoryModel is the persistence model for notification_categories.
// Rows are seeded reference data and never mutated at runtime.
type CategoryModel struct {
	ID      string `gorm:"type:uuid;primaryKey"`
	Name    string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Message string `gorm:"type:text;not null"`
}

func (CategoryModel) TableName() string { return "notification_categories" }

// NotificationModel is the persistence model for notifications.
type NotificationModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	CategoryID  string    `gorm:"type:uuid;not null"`
	ProjectID   string    `gorm:"type:uuid;not null;index"`
	MilestoneID *string   `gorm:"type:uuid;index"`
	DateCreated time.Time `gorm:"type:timestamptz;not null"`
}

func (NotificationModel) TableName() string { return "notifications" }

// NotificationLogModel is the persistence model for notification_logs.
type NotificationLogModel struct {
	NotificationID string    `gorm:"type:uuid;primaryKey"`
	UserID         string    `gorm:"type:uuid;primaryKey;index"`
	IsSeen         bool      `gorm:"not null;default:false"`
	DateCreated    time.Time `gorm:"type:timestamptz;not null"`
}

func (NotificationLogModel) TableName() string { return "notification_logs" }

func projectModelFromDomain(p *domain.Project) *ProjectModel {
	if p == nil {
		return nil
	}
	return &ProjectModel{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		PaymentAmount:      p.PaymentAmount,
		IsCompleted:        p.IsCompleted,
		IsPaid:             p.IsPaid,
		DateProjectedStart: p.DateProjectedStart,
		DateProjectedEnd:   p.DateProjectedEnd,
		DateActualStart:    p.DateActualStart,
		DateActualEnd:      p.DateActualEnd,
		DateCreated:        p.DateCreated,
		DateUpdated:        p.DateUpdated,
		CreatedByID:        p.CreatedByID,
	}
}

func projectModelToDomain(m *ProjectModel) *domain.Project {
	if m == nil {
		return nil
	}
	return &domain.Project{
		ID:                 m.ID,
		Name:               m.Name,
		Description:        m.Description,
		PaymentAmount:      m.PaymentAmount,
		IsCompleted:        m.IsCompleted,
		IsPaid:             m.IsPaid,
		DateProjectedStart: m.DateProjectedStart,
		DateProjectedEnd:   m.DateProjectedEnd,
		DateActualStart:    m.DateActualStart,
		DateActualEnd:      m.DateActualEnd,
		DateCreated:        m.DateCreated,
		DateUpdated:        m.DateUpdated,
		CreatedByID:        m.CreatedByID,
	}
}

func milestoneModelFromDomain(m *domain.Milestone) *MilestoneModel {
	if m == nil {
		return nil
	}
	return &MilestoneModel{
		ID:                 m.ID,
		ProjectID:          m.ProjectID,
		Name:               m.Name,
		Description:        m.Description,
		DateProjectedStart: m.DateProjectedStart,
		DateProjectedEnd:   m.DateProjectedEnd,
		DateActualStart:    m.DateActualStart,
		DateActualEnd:      m.DateActualEnd,
		DatePaid:           m.DatePaid,
		IsPaid:             m.IsPaid,
		IsCompleted:        m.IsCompleted,
		PaymentPercentage:  m.PaymentPercentage,
		DateCreated:        m.DateCreated,
		DateUpdated:        m.DateUpdated,
		CreatedByID:        m.CreatedByID,
	}
}

func milestoneModelToDomain(m *MilestoneModel) *domain.Milestone {
	if m == nil {
		return nil
	}
	return &domain.Milestone{
		ID:                 m.ID,
		ProjectID:          m.ProjectID,
		Name:               m.Name,
		Description:        m.Description,
		DateProjectedStart: m.DateProjectedStart,
		DateProjectedEnd:   m.DateProjectedEnd,
		DateActualStart:    m.DateActualStart,
		DateActualEnd:      m.DateActualEnd,
		DatePaid:           m.DatePaid,
		IsPaid:             m.IsPaid,
		IsCompleted:        m.IsCompleted,
		PaymentPercentage:  m.PaymentPercentage,
		DateCreated:        m.DateCreated,
		DateUpdated:        m.DateUpdated,
		CreatedByID:        m.CreatedByID,
	}
}

func categoryModelToDomain(m *CategoryModel) *domain.Category {
	if m == nil {
		return nil
	}
	return &domain.Category{ID: m.ID, Name: m.Name, Message: m.Message}
}

func notificationModelFromDomain(n *domain.Notification) *NotificationModel {
	if n == nil {
		return nil
	}
	return &NotificationModel{
		ID:          n.ID,
		CategoryID:  n.CategoryID,
		ProjectID:   n.ProjectID,
		MilestoneID: n.MilestoneID,
		DateCreated: n.DateCreated,
	}
}

func logModelFromDomain(l *domain.NotificationLog) *NotificationLogModel {
	if l == nil {
		return nil
	}
	return &NotificationLogModel{
		NotificationID: l.NotificationID,
		UserID:         l.UserID,
		IsSeen:         l.IsSeen,
		DateCreated:    l.DateCreated,
	}
}
