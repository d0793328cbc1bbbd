package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTally(t *testing.T) {
	entries := Tally([][]string{{"a", "b"}, {"a"}}, LeaderboardSize)
	assert.Equal(t, []LeaderboardEntry{{Username: "a", Count: 2}, {Username: "b", Count: 1}}, entries)
}

func TestTally_TiesAndEmptyNames(t *testing.T) {
	entries := Tally([][]string{{"zed", ""}, {"amy"}}, 10)
	assert.Equal(t, []LeaderboardEntry{{Username: "amy", Count: 1}, {Username: "zed", Count: 1}}, entries)
}

func TestTally_TruncatesToLimit(t *testing.T) {
	var lists [][]string
	for i := 0; i < 30; i++ {
		lists = append(lists, []string{fmt.Sprintf("user%02d", i)})
	}
	assert.Len(t, Tally(lists, LeaderboardSize), LeaderboardSize)
}

func TestLeaderboardTop(t *testing.T) {
	db := setupTestDB(t)
	seedApprovedGame(t, db, 1, "a", "b")
	seedApprovedGame(t, db, 2, "a")

	entries, err := NewLeaderboardService(db).Top(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []LeaderboardEntry{{Username: "a", Count: 2}, {Username: "b", Count: 1}}, entries)
}
