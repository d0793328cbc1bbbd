package services

import (
	"context"
	"fmt"
	"sort"

	"questlog/backend/internal/models"

	"gorm.io/gorm"
)

// LeaderboardSize is the number of contributors Top returns.
const LeaderboardSize = 20

// LeaderboardEntry is one contributor and the number of games crediting them.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Count    int    `json:"count"`
}

// LeaderboardService ranks contributors. It is computed on every call.
type LeaderboardService struct {
	db *gorm.DB
}

// NewLeaderboardService creates a LeaderboardService.
func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{db: db}
}

// Top loads every approved game and tallies its contributors.
func (s *LeaderboardService) Top(ctx context.Context) ([]LeaderboardEntry, error) {
	var games []models.Game
	if err := s.db.WithContext(ctx).Preload("Contributors").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}

	lists := make([][]string, 0, len(games))
	for i := range games {
		lists = append(lists, games[i].Usernames())
	}
	return Tally(lists, LeaderboardSize), nil
}

// Tally counts usernames across contributor lists and returns at most limit
// entries ordered by count, then username.
func Tally(lists [][]string, limit int) []LeaderboardEntry {
	counts := make(map[string]int)
	for _, list := range lists {
		for _, username := range list {
			if username != "" {
				counts[username]++
			}
		}
	}

	entries := make([]LeaderboardEntry, 0, len(counts))
	for username, count := range counts {
		entries = append(entries, LeaderboardEntry{Username: username, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Username < entries[j].Username
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
