package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"questlog/backend/internal/database"
	"questlog/backend/internal/hub"
	"questlog/backend/internal/rawg"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: database.NewLogger(), TranslateError: true})
	require.NoError(t, err)

	// Every connection to :memory: is its own database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// fakeCatalog serves games from a map keyed by slug.
type fakeCatalog struct {
	games map[string]*rawg.Game
	err   error
}

func (f *fakeCatalog) GetGame(_ context.Context, slug string) (*rawg.Game, error) {
	if f.err != nil {
		return nil, f.err
	}
	game, ok := f.games[slug]
	if !ok {
		return nil, rawg.ErrNotFound
	}
	return game, nil
}

// recordingPublisher keeps every broadcast event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []hub.Event
}

func (p *recordingPublisher) Broadcast(_ string, event hub.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// steppingClock returns a time one second later on every call.
func steppingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}
