package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/pmpulse/status-engine/internal/domain"
	"gorm.io/gorm"
)

// CategoryRepository resolves notification categories. Categories are seeded
// reference rows; absence of one is an anomaly, not an expected state.
type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

// GormCategoryRepo reads notification_categories with a process-local cache;
// the table is immutable after seeding, so entries never invalidate.
type GormCategoryRepo struct {
	db *gorm.DB

	mu     sync.RWMutex
	byID   map[string]domain.Category
	byName map[string]domain.Category
}

func NewGormCategoryRepo(db *gorm.DB) *GormCategoryRepo {
	return &GormCategoryRepo{
		db:     db,
		byID:   make(map[string]domain.Category),
		byName: make(map[string]domain.Category),
	}
}

func (r *GormCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	r.mu.RLock()
	cached, ok := r.byID[id]
	r.mu.RUnlock()
	if ok {
		return &cached, nil
	}

	var model CategoryModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	category := categoryModelToDomain(&model)
	r.cache(*category)
	return category, nil
}

func (r *GormCategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	r.mu.RLock()
	cached, ok := r.byName[name]
	r.mu.RUnlock()
	if ok {
		return &cached, nil
	}

	var model CategoryModel
	err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	category := categoryModelToDomain(&model)
	r.cache(*category)
	return category, nil
}

func (r *GormCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	var models []CategoryModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(models))
	for i := range models {
		category := categoryModelToDomain(&models[i])
		r.cache(*category)
		categories = append(categories, *category)
	}
	return categories, nil
}

func (r *GormCategoryRepo) cache(c domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = c
	r.byName[c.Name] = c
}
