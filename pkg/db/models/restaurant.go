package models

import (
	"time"

	"github.com/canteenhub/canteen-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Restaurant represents a canteen venue staff accounts are assigned to.
type Restaurant struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string         `gorm:"column:name;type:text;not null;uniqueIndex"`
	Address      string         `gorm:"column:address;type:text;not null"`
	ImageURL     string         `gorm:"column:image_url;type:text;not null"`
	WorkingHours pq.StringArray `gorm:"column:working_hours;type:text[];not null"`
	Location     types.Point    `gorm:"column:location;type:jsonb;not null"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
