package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Game is an approved catalog entry. CatalogID is the RAWG game id and
// is the join key shared with PendingGame and Review.
type Game struct {
	UUIDModel
	CatalogID       int    `gorm:"not null;uniqueIndex"`
	Slug            string `gorm:"size:255;not null;index"`
	Name            string `gorm:"size:255;not null"`
	Description     string
	BackgroundImage string `gorm:"size:1024"`
	Genres          datatypes.JSON
	Platforms       datatypes.JSON
	Rating          float64
	Released        string    `gorm:"size:32"`
	Website         string    `gorm:"size:1024"`
	AddedAt         time.Time `gorm:"index"`

	Contributors []GameContributor `gorm:"foreignKey:GameID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// GameContributor credits a user with adding or confirming a game.
// The composite primary key makes the contributor list a set.
type GameContributor struct {
	GameID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"primaryKey;size:255"`
	CreatedAt time.Time
}

// Usernames returns the contributor usernames in the order they were loaded.
func (g *Game) Usernames() []string {
	names := make([]string, 0, len(g.Contributors))
	for _, c := range g.Contributors {
		names = append(names, c.Username)
	}
	return names
}

// HasContributor reports whether username is already credited on the game.
func (g *Game) HasContributor(username string) bool {
	for _, c := range g.Contributors {
		if c.Username == username {
			return true
		}
	}
	return false
}
