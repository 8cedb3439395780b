package model

import "time"

// Brand is a catalog entry. Optional columns are nullable and serialize as null.
type Brand struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;index" json:"name"`
	Description *string   `gorm:"size:500" json:"description"`
	LogoURL     *string   `gorm:"column:logo_url;size:2048" json:"logo_url"`
	Website     *string   `gorm:"size:2048" json:"website"`
	FoundedYear *int      `json:"founded_year"`
	Country     *string   `gorm:"size:50" json:"country"`
	Industry    *string   `gorm:"size:50" json:"industry"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
