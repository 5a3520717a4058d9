package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/lucsky/cuid"
	"gorm.io/gorm"

	"github.com/bbernstein/lacylights-patterns/internal/database/models"
)

// Setting keys persisted by the server.
const (
	SettingGlobalIntensity = "global_intensity"
	SettingGlobalSpeed     = "global_speed"
	SettingEnabled         = "patterns_enabled"
	SettingBroadcastAddr   = "artnet_broadcast_address"
)

// SettingRepository handles setting data access.
type SettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new SettingRepository.
func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// FindAll returns all settings.
func (r *SettingRepository) FindAll(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	result := r.db.WithContext(ctx).
		Order("key ASC").
		Find(&settings)
	return settings, result.Error
}

// FindByKey returns a setting by key.
func (r *SettingRepository) FindByKey(ctx context.Context, key string) (*models.Setting, error) {
	return findOne[models.Setting](ctx, r.db, "key = ?", key)
}

// Upsert creates or updates a setting by key.
func (r *SettingRepository) Upsert(ctx context.Context, key, value string) (*models.Setting, error) {
	var setting models.Setting

	result := r.db.WithContext(ctx).First(&setting, "key = ?", key)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		setting = models.Setting{
			ID:    cuid.New(),
			Key:   key,
			Value: value,
		}
		if err := r.db.WithContext(ctx).Create(&setting).Error; err != nil {
			return nil, err
		}
		return &setting, nil
	} else if result.Error != nil {
		return nil, result.Error
	}

	setting.Value = value
	if err := r.db.WithContext(ctx).Save(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetFloat returns a numeric setting, or def when it is missing.
func (r *SettingRepository) GetFloat(ctx context.Context, key string, def float64) (float64, error) {
	s, err := r.FindByKey(ctx, key)
	if err != nil || s == nil {
		return def, err
	}
	v, err := strconv.ParseFloat(s.Value, 64)
	if err != nil {
		return def, fmt.Errorf("setting %s: %w", key, err)
	}
	return v, nil
}

// SetFloat stores a numeric setting.
func (r *SettingRepository) SetFloat(ctx context.Context, key string, v float64) error {
	_, err := r.Upsert(ctx, key, strconv.FormatFloat(v, 'f', -1, 64))
	return err
}

// GetBool returns a boolean setting, or def when it is missing.
func (r *SettingRepository) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	s, err := r.FindByKey(ctx, key)
	if err != nil || s == nil {
		return def, err
	}
	v, err := strconv.ParseBool(s.Value)
	if err != nil {
		return def, fmt.Errorf("setting %s: %w", key, err)
	}
	return v, nil
}

// SetBool stores a boolean setting.
func (r *SettingRepository) SetBool(ctx context.Context, key string, v bool) error {
	_, err := r.Upsert(ctx, key, strconv.FormatBool(v))
	return err
}

// Delete deletes a setting by key.
func (r *SettingRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&models.Setting{}, "key = ?", key).Error
}
