package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"brandcatalog/internal/model"
)

type BrandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

// searchScope is shared by Count and List so both see the same rows.
func searchScope(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		pattern := LikePattern(search)
		return db.Where("(name LIKE ? OR description LIKE ?)", pattern, pattern)
	}
}

func (r *BrandRepository) Count(ctx context.Context, search string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Brand{}).
		Scopes(searchScope(search)).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("count brands failed: %w", err)
	}
	return total, nil
}

func (r *BrandRepository) List(ctx context.Context, filter BrandFilter) ([]model.Brand, error) {
	var brands []model.Brand
	err := r.db.WithContext(ctx).
		Scopes(searchScope(filter.Search)).
		Order("created_at DESC").
		Order("id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&brands).Error
	if err != nil {
		return nil, fmt.Errorf("list brands failed: %w", err)
	}
	return brands, nil
}

func (r *BrandRepository) GetByID(ctx context.Context, id uint) (*model.Brand, error) {
	var brand model.Brand
	if err := r.db.WithContext(ctx).First(&brand, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get brand failed: %w", err)
	}
	return &brand, nil
}

func (r *BrandRepository) Create(ctx context.Context, brand *model.Brand) error {
	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		return fmt.Errorf("create brand failed: %w", translate(err))
	}
	return nil
}

// Update overwrites every mutable column, nulls included. It relies on
// clientFoundRows so an unchanged row still counts as matched.
func (r *BrandRepository) Update(ctx context.Context, brand *model.Brand) error {
	result := r.db.WithContext(ctx).
		Model(&model.Brand{}).
		Where("id = ?", brand.ID).
		UpdateColumns(map[string]any{
			"name":         brand.Name,
			"description":  brand.Description,
			"logo_url":     brand.LogoURL,
			"website":      brand.Website,
			"founded_year": brand.FoundedYear,
			"country":      brand.Country,
			"industry":     brand.Industry,
			"updated_at":   brand.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update brand failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BrandRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Brand{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete brand failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
