package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionStatus defines where a pending submission is in the review process.
type SubmissionStatus string

const (
	// StatusPending means the submission is waiting for an admin decision.
	StatusPending SubmissionStatus = "pending"

	// StatusApproved means the submission was copied into the games table.
	StatusApproved SubmissionStatus = "approved"

	// StatusRejected is final. There is no path back to pending.
	StatusRejected SubmissionStatus = "rejected"
)

// PendingGame is a user submission awaiting admin review.
// At most one row per CatalogID may be in StatusPending; the partial unique
// index enforces it under concurrent submitters.
type PendingGame struct {
	UUIDModel
	CatalogID       int    `gorm:"not null;uniqueIndex:idx_pending_games_open,where:status = 'pending'"`
	Slug            string `gorm:"size:255;not null;index"`
	Name            string `gorm:"size:255;not null"`
	Description     string
	BackgroundImage string `gorm:"size:1024"`
	Genres          datatypes.JSON
	Platforms       datatypes.JSON
	Rating          float64
	Released        string `gorm:"size:32"`
	Website         string `gorm:"size:1024"`

	SubmittedBy string           `gorm:"size:255;not null;index"`
	SubmittedAt time.Time        `gorm:"index"`
	Status      SubmissionStatus `gorm:"size:20;not null;default:'pending';index"`
	AdminNotes  string
}
