package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/pmpulse/status-engine/internal/domain"
	"gorm.io/gorm"
)

// MilestoneRepository provides lookups and mutations for project milestones.
type MilestoneRepository interface {
	Create(ctx context.Context, m *domain.Milestone) error
	Update(ctx context.Context, m *domain.Milestone) error
	GetByID(ctx context.Context, id string) (*domain.Milestone, error)
	Delete(ctx context.Context, id string) error
	ListByProjectID(ctx context.Context, projectID string) ([]domain.Milestone, error)
	Search(ctx context.Context, projectID, query string) ([]domain.Milestone, error)
}

type GormMilestoneRepo struct {
	db *gorm.DB
}

func NewGormMilestoneRepo(db *gorm.DB) *GormMilestoneRepo {
	return &GormMilestoneRepo{db: db}
}

func (r *GormMilestoneRepo) Create(ctx context.Context, m *domain.Milestone) error {
	return r.db.WithContext(ctx).Create(milestoneModelFromDomain(m)).Error
}

func (r *GormMilestoneRepo) Update(ctx context.Context, m *domain.Milestone) error {
	result := r.db.WithContext(ctx).
		Model(&MilestoneModel{}).
		Where("id = ?", m.ID).
		Select("*").
		Omit("id", "project_id", "date_created", "created_by_id").
		Updates(milestoneModelFromDomain(m))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormMilestoneRepo) GetByID(ctx context.Context, id string) (*domain.Milestone, error) {
	var model MilestoneModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return milestoneModelToDomain(&model), nil
}

// Delete removes the milestone row; its notifications cascade. Pending
// scheduled checks must be canceled by the caller before this runs.
func (r *GormMilestoneRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&MilestoneModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormMilestoneRepo) ListByProjectID(ctx context.Context, projectID string) ([]domain.Milestone, error) {
	var models []MilestoneModel
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("date_projected_start ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	milestones := make([]domain.Milestone, 0, len(models))
	for i := range models {
		milestones = append(milestones, *milestoneModelToDomain(&models[i]))
	}
	return milestones, nil
}

func (r *GormMilestoneRepo) Search(ctx context.Context, projectID, query string) ([]domain.Milestone, error) {
	tx := r.db.WithContext(ctx).Where("project_id = ?", projectID)

	query = strings.TrimSpace(query)
	if query != "" {
		pattern := "%" + query + "%"
		tx = tx.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var models []MilestoneModel
	if err := tx.Order("date_created DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	milestones := make([]domain.Milestone, 0, len(models))
	for i := range models {
		milestones = append(milestones, *milestoneModelToDomain(&models[i]))
	}
	return milestones, nil
}
