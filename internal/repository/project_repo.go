package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pmpulse/status-engine/internal/domain"
	"gorm.io/gorm"
)

// ProjectRepository provides point lookups and mutations for projects and
// their memberships. Fire callbacks use the lookups to re-resolve live state.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	Update(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, projectID, userID, roleName string, joined time.Time) error
	GetRoleMember(ctx context.Context, projectID, roleName string) (*domain.Member, error)
}

type GormProjectRepo struct {
	db *gorm.DB
}

func NewGormProjectRepo(db *gorm.DB) *GormProjectRepo {
	return &GormProjectRepo{db: db}
}

func (r *GormProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	return r.db.WithContext(ctx).Create(projectModelFromDomain(p)).Error
}

func (r *GormProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	result := r.db.WithContext(ctx).
		Model(&ProjectModel{}).
		Where("id = ?", p.ID).
		Select("*").
		Omit("id", "date_created").
		Updates(projectModelFromDomain(p))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var model ProjectModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return projectModelToDomain(&model), nil
}

// Delete removes the project row. Milestones, memberships, notifications and
// their logs go with it via ON DELETE CASCADE; pending scheduled checks must
// be canceled by the caller before this runs.
func (r *GormProjectRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&ProjectModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormProjectRepo) AddMember(ctx context.Context, projectID, userID, roleName string, joined time.Time) error {
	var role RoleModel
	err := r.db.WithContext(ctx).First(&role, "name = ?", roleName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: role %q", domain.ErrNotFound, roleName)
	}
	if err != nil {
		return err
	}

	model := &MemberModel{
		ProjectID:  projectID,
		UserID:     userID,
		RoleID:     role.ID,
		DateJoined: joined,
	}
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *GormProjectRepo) GetRoleMember(ctx context.Context, projectID, roleName string) (*domain.Member, error) {
	var row struct {
		ProjectID string
		UserID    string
		RoleID    string
		RoleName  string
	}
	err := r.db.WithContext(ctx).
		Table("project_members").
		Select("project_members.project_id, project_members.user_id, project_members.role_id, project_roles.name AS role_name").
		Joins("JOIN project_roles ON project_roles.id = project_members.role_id").
		Where("project_members.project_id = ? AND project_roles.name = ?", projectID, roleName).
		Order("project_members.date_joined ASC").
		Limit(1).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &domain.Member{
		ProjectID: row.ProjectID,
		UserID:    row.UserID,
		RoleID:    row.RoleID,
		RoleName:  row.RoleName,
	}, nil
}
