package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"brandcatalog/internal/model"
	"brandcatalog/internal/repository"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

type BrandRepository interface {
	List(ctx context.Context, filter repository.BrandFilter) ([]model.Brand, error)
	Count(ctx context.Context, search string) (int64, error)
	GetByID(ctx context.Context, id uint) (*model.Brand, error)
	Create(ctx context.Context, brand *model.Brand) error
	Update(ctx context.Context, brand *model.Brand) error
	Delete(ctx context.Context, id uint) error
}

type BrandEventPublisher interface {
	Publish(ctx context.Context, event model.BrandEvent) error
}

type BrandEventReader interface {
	ListByBrandID(ctx context.Context, brandID uint, limit int) ([]model.BrandEvent, error)
}

// BrandCache is an optional read-through cache for single brands.
type BrandCache interface {
	GetBrand(ctx context.Context, id uint) (*model.Brand, bool, error)
	SetBrand(ctx context.Context, brand *model.Brand) error
	DeleteBrand(ctx context.Context, id uint) error
}

// Actor is the authenticated caller performing a mutation.
type Actor struct {
	UserID   uint
	Username string
}

type BrandService struct {
	repo      BrandRepository
	events    BrandEventReader
	publisher BrandEventPublisher
	cache     BrandCache
	validator *Validator
	logger    *slog.Logger
	now       func() time.Time
}

// BrandInput is the request schema for create and update. Every field is
// written on update; omitted optional fields become null.
type BrandInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	LogoURL     *string `json:"logo_url" validate:"omitempty,max=2048,weburl"`
	Website     *string `json:"website" validate:"omitempty,max=2048,weburl"`
	FoundedYear *int    `json:"founded_year" validate:"omitempty,min=1800,notfuture"`
	Country     *string `json:"country" validate:"omitempty,max=50"`
	Industry    *string `json:"industry" validate:"omitempty,max=50"`
}

type ListBrandsInput struct {
	Page     int
	PageSize int
	Search   string
}

type BrandPage struct {
	Brands     []model.Brand `json:"brands"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	HasNext    bool          `json:"hasNext"`
	HasPrev    bool          `json:"hasPrev"`
}

// NewBrandService wires the service. publisher may be nil, in which case
// no audit events are emitted; events may be nil when history is not kept.
func NewBrandService(repo BrandRepository, events BrandEventReader, publisher BrandEventPublisher, validator *Validator, logger *slog.Logger) *BrandService {
	return &BrandService{
		repo:      repo,
		events:    events,
		publisher: publisher,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// UseCache enables the read cache. Cache failures are logged and fall
// through to the repository.
func (s *BrandService) UseCache(cache BrandCache) {
	s.cache = cache
}

func (s *BrandService) List(ctx context.Context, input ListBrandsInput) (*BrandPage, error) {
	page := input.Page
	if page < 1 {
		page = DefaultPage
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	search := strings.TrimSpace(input.Search)

	result := &BrandPage{
		Brands:  []model.Brand{},
		Page:    page,
		HasPrev: page > 1,
	}

	total, err := s.repo.Count(ctx, search)
	if err != nil {
		return nil, err
	}
	result.Total = total
	result.TotalPages = totalPages(total, pageSize)
	result.HasNext = page < result.TotalPages

	// Pages past the end are answered without touching the rows.
	if page > result.TotalPages {
		return result, nil
	}

	brands, err := s.repo.List(ctx, repository.BrandFilter{
		Search: search,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		return nil, err
	}
	if brands != nil {
		result.Brands = brands
	}
	return result, nil
}

func totalPages(total int64, pageSize int) int {
	size := int64(pageSize)
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return int(pages)
}

func (s *BrandService) Get(ctx context.Context, id uint) (*model.Brand, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetBrand(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "read brand cache failed", "brand_id", id, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	brand, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, ErrNotFound
	}

	if s.cache != nil {
		if err := s.cache.SetBrand(ctx, brand); err != nil {
			s.logger.WarnContext(ctx, "fill brand cache failed", "brand_id", id, "error", err)
		}
	}
	return brand, nil
}

func (s *BrandService) evict(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteBrand(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "evict brand cache failed", "brand_id", id, "error", err)
	}
}

func (s *BrandService) Create(ctx context.Context, actor Actor, input BrandInput) (*model.Brand, error) {
	input = normalizeBrandInput(input)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	now := s.timestamp()
	brand := &model.Brand{CreatedAt: now, UpdatedAt: now}
	applyBrandInput(brand, input)
	if err := s.repo.Create(ctx, brand); err != nil {
		return nil, err
	}

	s.publish(ctx, actor, model.BrandEventCreated, brand)
	return brand, nil
}

// Update checks existence before validating, so an unknown id is reported as
// ErrNotFound even when the payload is also invalid.
func (s *BrandService) Update(ctx context.Context, actor Actor, id uint, input BrandInput) (*model.Brand, error) {
	brand, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	input = normalizeBrandInput(input)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	applyBrandInput(brand, input)
	brand.UpdatedAt = s.timestamp()
	if err := s.repo.Update(ctx, brand); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted after the existence check.
			s.evict(ctx, id)
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.evict(ctx, id)

	s.publish(ctx, actor, model.BrandEventUpdated, brand)
	return brand, nil
}

func (s *BrandService) Delete(ctx context.Context, actor Actor, id uint) error {
	brand, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.evict(ctx, id)
			return ErrNotFound
		}
		return err
	}
	s.evict(ctx, id)

	s.publish(ctx, actor, model.BrandEventDeleted, brand)
	return nil
}

// History returns the newest audit events of an existing brand. Deleted
// brands report ErrNotFound even though their events are retained.
func (s *BrandService) History(ctx context.Context, id uint, limit int) ([]model.BrandEvent, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.events == nil {
		return []model.BrandEvent{}, nil
	}
	return s.events.ListByBrandID(ctx, id, limit)
}

func (s *BrandService) publish(ctx context.Context, actor Actor, action string, brand *model.Brand) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(brand)
	if err != nil {
		s.logger.WarnContext(ctx, "marshal brand event payload failed", "brand_id", brand.ID, "error", err)
		payload = nil
	}
	event := model.BrandEvent{
		BrandID:       brand.ID,
		Action:        action,
		ActorID:       actor.UserID,
		ActorUsername: actor.Username,
		Payload:       payload,
		OccurredAt:    s.timestamp(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish brand event failed", "brand_id", brand.ID, "action", action, "error", err)
	}
}

// timestamp is truncated to the millisecond precision of the DATETIME(3)
// columns so returned values equal what a later read yields.
func (s *BrandService) timestamp() time.Time {
	return s.now().Truncate(time.Millisecond)
}

func normalizeBrandInput(in BrandInput) BrandInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = optionalString(in.Description)
	in.LogoURL = optionalString(in.LogoURL)
	in.Website = optionalString(in.Website)
	in.Country = optionalString(in.Country)
	in.Industry = optionalString(in.Industry)
	return in
}

func optionalString(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func applyBrandInput(brand *model.Brand, in BrandInput) {
	brand.Name = in.Name
	brand.Description = in.Description
	brand.LogoURL = in.LogoURL
	brand.Website = in.Website
	brand.FoundedYear = in.FoundedYear
	brand.Country = in.Country
	brand.Industry = in.Industry
}
