// Package schema provides database schema models for the plant
// catalog and the tables the import pipeline writes into.
package schema

import (
	"time"
)

// Plant is one catalog taxonomy entry, shared across users.
type Plant struct {
	// ID is UUID v5 generated from the canonical taxonomy string, so
	// persisting the same taxonomy twice is idempotent.
	ID string `gorm:"type:uuid;primaryKey"`

	Family  string `gorm:"type:varchar(100);not null;index"`
	Genus   string `gorm:"type:varchar(100);not null;index"`
	Species string `gorm:"type:varchar(100);not null;index"`

	// Cultivar is NULL rather than empty when absent.
	Cultivar *string `gorm:"type:varchar(100)"`

	CommonName string `gorm:"type:varchar(255);not null;index"`

	// Verified marks entries that went through manual curation.
	Verified bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlantInstance is one owned plant of one user.
type PlantInstance struct {
	ID string `gorm:"type:uuid;primaryKey"`

	PlantID string `gorm:"type:uuid;not null;index"`
	Plant   Plant  `gorm:"foreignKey:PlantID"`

	UserID string `gorm:"type:varchar(64);not null;index"`

	Nickname           *string `gorm:"type:varchar(100)"`
	Location           *string `gorm:"type:varchar(100)"`
	FertilizerSchedule *string `gorm:"type:varchar(100)"`

	AcquiredOn     *time.Time
	LastFertilized *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Propagation is one propagation attempt, optionally linked to the
// parent instance it was taken from.
type Propagation struct {
	ID string `gorm:"type:uuid;primaryKey"`

	PlantID string `gorm:"type:uuid;not null;index"`
	Plant   Plant  `gorm:"foreignKey:PlantID"`

	UserID string `gorm:"type:varchar(64);not null;index"`

	// ParentInstanceID is set only for internal sources.
	ParentInstanceID *string        `gorm:"type:uuid;index"`
	ParentInstance   *PlantInstance `gorm:"foreignKey:ParentInstanceID"`

	SourceType     string  `gorm:"type:varchar(16);not null"`
	ExternalSource *string `gorm:"type:varchar(32)"`

	DateStarted *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
