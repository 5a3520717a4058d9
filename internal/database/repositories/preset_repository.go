package repositories

import (
	"context"
	"errors"

	"github.com/lucsky/cuid"
	"gorm.io/gorm"

	"github.com/bbernstein/lacylights-patterns/internal/database/models"
)

// findOne returns the first row matching query, or nil when there is none.
func findOne[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (*T, error) {
	var row T
	result := db.WithContext(ctx).Where(query, args...).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &row, nil
}

// LightPresetRepository handles light preset data access.
type LightPresetRepository struct {
	db *gorm.DB
}

// NewLightPresetRepository creates a new LightPresetRepository.
func NewLightPresetRepository(db *gorm.DB) *LightPresetRepository {
	return &LightPresetRepository{db: db}
}

// FindAll returns all light presets ordered by name.
func (r *LightPresetRepository) FindAll(ctx context.Context) ([]models.LightPreset, error) {
	var presets []models.LightPreset
	result := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&presets)
	return presets, result.Error
}

// FindByID returns a light preset by ID.
func (r *LightPresetRepository) FindByID(ctx context.Context, id string) (*models.LightPreset, error) {
	return findOne[models.LightPreset](ctx, r.db, "id = ?", id)
}

// FindByName returns a light preset by name.
func (r *LightPresetRepository) FindByName(ctx context.Context, name string) (*models.LightPreset, error) {
	return findOne[models.LightPreset](ctx, r.db, "name = ?", name)
}

// FindBySyncGroup returns the presets sharing a sync group.
func (r *LightPresetRepository) FindBySyncGroup(ctx context.Context, group string) ([]models.LightPreset, error) {
	var presets []models.LightPreset
	result := r.db.WithContext(ctx).
		Where("sync_group = ?", group).
		Order("name ASC").
		Find(&presets)
	return presets, result.Error
}

// Create creates a new light preset.
func (r *LightPresetRepository) Create(ctx context.Context, preset *models.LightPreset) error {
	if preset.ID == "" {
		preset.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(preset).Error
}

// Update updates an existing light preset.
func (r *LightPresetRepository) Update(ctx context.Context, preset *models.LightPreset) error {
	return r.db.WithContext(ctx).Save(preset).Error
}

// Delete deletes a light preset by ID.
func (r *LightPresetRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.LightPreset{}, "id = ?", id).Error
}

// ReflectionPresetRepository handles reflection preset data access.
type ReflectionPresetRepository struct {
	db *gorm.DB
}

// NewReflectionPresetRepository creates a new ReflectionPresetRepository.
func NewReflectionPresetRepository(db *gorm.DB) *ReflectionPresetRepository {
	return &ReflectionPresetRepository{db: db}
}

// FindAll returns all reflection presets ordered by name.
func (r *ReflectionPresetRepository) FindAll(ctx context.Context) ([]models.ReflectionPreset, error) {
	var presets []models.ReflectionPreset
	result := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&presets)
	return presets, result.Error
}

// FindByID returns a reflection preset by ID.
func (r *ReflectionPresetRepository) FindByID(ctx context.Context, id string) (*models.ReflectionPreset, error) {
	return findOne[models.ReflectionPreset](ctx, r.db, "id = ?", id)
}

// FindByName returns a reflection preset by name.
func (r *ReflectionPresetRepository) FindByName(ctx context.Context, name string) (*models.ReflectionPreset, error) {
	return findOne[models.ReflectionPreset](ctx, r.db, "name = ?", name)
}

// Create creates a new reflection preset.
func (r *ReflectionPresetRepository) Create(ctx context.Context, preset *models.ReflectionPreset) error {
	if preset.ID == "" {
		preset.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(preset).Error
}

// Update updates an existing reflection preset.
func (r *ReflectionPresetRepository) Update(ctx context.Context, preset *models.ReflectionPreset) error {
	return r.db.WithContext(ctx).Save(preset).Error
}

// Delete deletes a reflection preset by ID.
func (r *ReflectionPresetRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.ReflectionPreset{}, "id = ?", id).Error
}

// CurvePresetRepository handles curve preset data access.
type CurvePresetRepository struct {
	db *gorm.DB
}

// NewCurvePresetRepository creates a new CurvePresetRepository.
func NewCurvePresetRepository(db *gorm.DB) *CurvePresetRepository {
	return &CurvePresetRepository{db: db}
}

// FindAll returns all curves ordered by name.
func (r *CurvePresetRepository) FindAll(ctx context.Context) ([]models.CurvePreset, error) {
	var curves []models.CurvePreset
	result := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&curves)
	return curves, result.Error
}

// FindByID returns a curve by ID.
func (r *CurvePresetRepository) FindByID(ctx context.Context, id string) (*models.CurvePreset, error) {
	return findOne[models.CurvePreset](ctx, r.db, "id = ?", id)
}

// FindByName returns a curve by name.
func (r *CurvePresetRepository) FindByName(ctx context.Context, name string) (*models.CurvePreset, error) {
	return findOne[models.CurvePreset](ctx, r.db, "name = ?", name)
}

// Create creates a new curve.
func (r *CurvePresetRepository) Create(ctx context.Context, curve *models.CurvePreset) error {
	if curve.ID == "" {
		curve.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(curve).Error
}

// Update updates an existing curve.
func (r *CurvePresetRepository) Update(ctx context.Context, curve *models.CurvePreset) error {
	return r.db.WithContext(ctx).Save(curve).Error
}

// Delete deletes a curve by ID.
func (r *CurvePresetRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.CurvePreset{}, "id = ?", id).Error
}
