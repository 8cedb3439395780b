package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"brandcatalog/internal/model"
)

const (
	SeedUsername = "admin"
	SeedEmail    = "admin@example.com"
	SeedPassword = "admin123"
)

type brandCounter interface {
	Count(ctx context.Context, search string) (int64, error)
	Create(ctx context.Context, brand *model.Brand) error
}

// Seeder fills empty tables with a development account and sample brands.
type Seeder struct {
	users  UserRepository
	brands brandCounter
	logger *slog.Logger
	now    func() time.Time
}

func NewSeeder(users UserRepository, brands brandCounter, logger *slog.Logger) *Seeder {
	return &Seeder{users: users, brands: brands, logger: logger, now: time.Now}
}

func (s *Seeder) Seed(ctx context.Context) error {
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users failed: %w", err)
	}
	if userCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password failed: %w", err)
		}
		if err := s.users.Create(ctx, &model.User{
			Username:     SeedUsername,
			Email:        SeedEmail,
			PasswordHash: string(hash),
		}); err != nil {
			return fmt.Errorf("create seed user failed: %w", err)
		}
		s.logger.InfoContext(ctx, "seeded default account", "username", SeedUsername)
	}

	brandCount, err := s.brands.Count(ctx, "")
	if err != nil {
		return fmt.Errorf("count brands failed: %w", err)
	}
	if brandCount > 0 {
		return nil
	}

	// Spread creation times so the newest-first order is stable.
	base := s.now().Truncate(time.Millisecond)
	for i, b := range sampleBrands() {
		b.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		b.UpdatedAt = b.CreatedAt
		if err := s.brands.Create(ctx, &b); err != nil {
			return fmt.Errorf("create seed brand %q failed: %w", b.Name, err)
		}
	}
	s.logger.InfoContext(ctx, "seeded sample brands", "count", len(sampleBrands()))
	return nil
}

func sampleBrands() []model.Brand {
	return []model.Brand{
		{
			Name:        "Apple",
			Description: strPtr("American maker of personal computers, tablets and phones"),
			LogoURL:     strPtr("https://upload.wikimedia.org/wikipedia/commons/f/fa/Apple_logo_black.svg"),
			Website:     strPtr("https://www.apple.com"),
			FoundedYear: intPtr(1976),
			Country:     strPtr("USA"),
			Industry:    strPtr("Technology"),
		},
		{
			Name:        "Nike",
			Description: strPtr("American maker of sportswear and footwear"),
			LogoURL:     strPtr("https://upload.wikimedia.org/wikipedia/commons/a/a6/Nike_Logo.svg"),
			Website:     strPtr("https://www.nike.com"),
			FoundedYear: intPtr(1964),
			Country:     strPtr("USA"),
			Industry:    strPtr("Sports"),
		},
		{
			Name:        "Coca-Cola",
			Description: strPtr("American maker of soft drinks"),
			LogoURL:     strPtr("https://upload.wikimedia.org/wikipedia/commons/c/ce/Coca-Cola_logo.svg"),
			Website:     strPtr("https://www.coca-cola.com"),
			FoundedYear: intPtr(1886),
			Country:     strPtr("USA"),
			Industry:    strPtr("Beverages"),
		},
	}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
