package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"brandcatalog/internal/model"
)

type BrandEventRepository struct {
	db *gorm.DB
}

func NewBrandEventRepository(db *gorm.DB) *BrandEventRepository {
	return &BrandEventRepository{db: db}
}

func (r *BrandEventRepository) Create(ctx context.Context, event *model.BrandEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create brand event failed: %w", err)
	}
	return nil
}

func (r *BrandEventRepository) ListByBrandID(ctx context.Context, brandID uint, limit int) ([]model.BrandEvent, error) {
	if limit <= 0 || limit > MaxBrandEvents {
		limit = DefaultBrandEvents
	}

	var events []model.BrandEvent
	err := r.db.WithContext(ctx).
		Where("brand_id = ?", brandID).
		Order("occurred_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list brand events failed: %w", err)
	}
	return events, nil
}
