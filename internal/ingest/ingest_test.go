package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"questlog/backend/internal/rawg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLister serves lastPage pages of two games each.
type fakeLister struct {
	lastPage int
	failOn   int
	calls    []int
}

func (f *fakeLister) ListGames(_ context.Context, page, pageSize int) (*rawg.Page, error) {
	f.calls = append(f.calls, page)
	if page == f.failOn {
		return nil, rawg.ErrUpstream
	}

	p := &rawg.Page{Count: f.lastPage * 2}
	for i := 0; i < 2; i++ {
		p.Results = append(p.Results, json.RawMessage(fmt.Sprintf(`{"id":%d}`, page*10+i)))
	}
	if page < f.lastPage {
		next := fmt.Sprintf("https://api.rawg.io/api/games?page=%d", page+1)
		p.Next = &next
	}
	return p, nil
}

func readIDs(t *testing.T, path string) []int {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var games []struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(data, &games))
	ids := make([]int, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	return ids
}

func TestRun_MergesWithExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "allGames.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1}]`), 0o644))

	lister := &fakeLister{lastPage: 10}
	res, err := Run(context.Background(), lister, Options{StartPage: 2, EndPage: 3, PageSize: 40, Path: path})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Added)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, []int{2, 3}, lister.calls)
	assert.Equal(t, []int{1, 20, 21, 30, 31}, readIDs(t, path))
}

func TestRun_StopsWhenNoNextPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allGames.json")

	lister := &fakeLister{lastPage: 2}
	res, err := Run(context.Background(), lister, Options{StartPage: 1, EndPage: 5, PageSize: 40, Path: path})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, lister.calls)
	assert.Equal(t, 4, res.Total)
}

func TestRun_FetchErrorLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allGames.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1}]`), 0o644))

	lister := &fakeLister{lastPage: 5, failOn: 2}
	_, err := Run(context.Background(), lister, Options{StartPage: 1, EndPage: 3, PageSize: 40, Path: path})
	assert.True(t, errors.Is(err, rawg.ErrUpstream))
	assert.Equal(t, []int{1}, readIDs(t, path))
}

func TestRun_ValidatesOptions(t *testing.T) {
	lister := &fakeLister{lastPage: 1}
	ctx := context.Background()

	_, err := Run(ctx, lister, Options{StartPage: 0, EndPage: 1, PageSize: 40, Path: "x"})
	assert.Error(t, err)
	_, err = Run(ctx, lister, Options{StartPage: 3, EndPage: 2, PageSize: 40, Path: "x"})
	assert.Error(t, err)
	_, err = Run(ctx, lister, Options{StartPage: 1, EndPage: 2, PageSize: 41, Path: "x"})
	assert.Error(t, err)
	_, err = Run(ctx, lister, Options{StartPage: 1, EndPage: 2, PageSize: 40})
	assert.Error(t, err)
	assert.Empty(t, lister.calls)
}
