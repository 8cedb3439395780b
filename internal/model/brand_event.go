package model

import (
	"encoding/json"
	"time"
)

const (
	BrandEventCreated = "created"
	BrandEventUpdated = "updated"
	BrandEventDeleted = "deleted"
)

// BrandEvent is one entry of the brand audit trail.
type BrandEvent struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	BrandID       uint            `gorm:"not null;index" json:"brand_id"`
	Action        string          `gorm:"size:16;not null" json:"action"`
	ActorID       uint            `json:"actor_id"`
	ActorUsername string          `gorm:"size:30" json:"actor_username"`
	Payload       json.RawMessage `gorm:"type:json" json:"payload,omitempty"`
	OccurredAt    time.Time       `gorm:"not null" json:"occurred_at"`
}
