// Package memory implements in-memory repositories for development and testing.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"brandcatalog/internal/model"
	"brandcatalog/internal/repository"
)

// --- Users ---

type UserRepository struct {
	mu     sync.Mutex
	users  []model.User
	nextID uint
}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users = append(r.users, *user)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == login || u.Email == login {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

// --- Brands ---

type BrandRepository struct {
	mu     sync.Mutex
	brands []model.Brand
	nextID uint
}

func NewBrandRepository() *BrandRepository {
	return &BrandRepository{}
}

// matches mirrors the case-insensitive collation of the MySQL columns.
func matches(b model.Brand, search string) bool {
	if search == "" {
		return true
	}
	term := strings.ToLower(search)
	if strings.Contains(strings.ToLower(b.Name), term) {
		return true
	}
	return b.Description != nil && strings.Contains(strings.ToLower(*b.Description), term)
}

func (r *BrandRepository) Count(ctx context.Context, search string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int64
	for _, b := range r.brands {
		if matches(b, search) {
			total++
		}
	}
	return total, nil
}

func (r *BrandRepository) List(ctx context.Context, filter repository.BrandFilter) ([]model.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	selected := make([]model.Brand, 0, len(r.brands))
	for _, b := range r.brands {
		if matches(b, filter.Search) {
			selected = append(selected, cloneBrand(b))
		}
	}
	sort.Slice(selected, func(i, j int) bool {
		if !selected[i].CreatedAt.Equal(selected[j].CreatedAt) {
			return selected[i].CreatedAt.After(selected[j].CreatedAt)
		}
		return selected[i].ID > selected[j].ID
	})

	if filter.Offset >= len(selected) {
		return []model.Brand{}, nil
	}
	end := len(selected)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	return selected[filter.Offset:end], nil
}

func (r *BrandRepository) GetByID(ctx context.Context, id uint) (*model.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.index(id); i >= 0 {
		found := cloneBrand(r.brands[i])
		return &found, nil
	}
	return nil, nil
}

func (r *BrandRepository) Create(ctx context.Context, brand *model.Brand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	brand.ID = r.nextID
	r.brands = append(r.brands, cloneBrand(*brand))
	return nil
}

func (r *BrandRepository) Update(ctx context.Context, brand *model.Brand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(brand.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	updated := cloneBrand(*brand)
	updated.CreatedAt = r.brands[i].CreatedAt
	r.brands[i] = updated
	return nil
}

func (r *BrandRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.brands = append(r.brands[:i], r.brands[i+1:]...)
	return nil
}

func (r *BrandRepository) index(id uint) int {
	for i, b := range r.brands {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// cloneBrand copies the optional fields so callers never share pointers
// with the stored row.
func cloneBrand(b model.Brand) model.Brand {
	b.Description = cloneString(b.Description)
	b.LogoURL = cloneString(b.LogoURL)
	b.Website = cloneString(b.Website)
	b.Country = cloneString(b.Country)
	b.Industry = cloneString(b.Industry)
	if b.FoundedYear != nil {
		year := *b.FoundedYear
		b.FoundedYear = &year
	}
	return b
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// --- Brand events ---

type BrandEventRepository struct {
	mu     sync.Mutex
	events []model.BrandEvent
	nextID uint
}

func NewBrandEventRepository() *BrandEventRepository {
	return &BrandEventRepository{}
}

func (r *BrandEventRepository) Create(ctx context.Context, event *model.BrandEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	event.ID = r.nextID
	r.events = append(r.events, *event)
	return nil
}

func (r *BrandEventRepository) ListByBrandID(ctx context.Context, brandID uint, limit int) ([]model.BrandEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > repository.MaxBrandEvents {
		limit = repository.DefaultBrandEvents
	}
	out := []model.BrandEvent{}
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		if r.events[i].BrandID == brandID {
			out = append(out, r.events[i])
		}
	}
	return out, nil
}
