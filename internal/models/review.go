package models

import "time"

// Review is an immutable user review. GameID holds the catalog id and is not
// checked against the games table.
type Review struct {
	ID         uint      `gorm:"primaryKey"`
	GameID     int       `gorm:"not null;index:idx_reviews_game_created,priority:1"`
	Username   string    `gorm:"size:255;not null"`
	ReviewText string    `gorm:"not null"`
	Rating     int       `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5"`
	CreatedAt  time.Time `gorm:"index:idx_reviews_game_created,priority:2"`
}
