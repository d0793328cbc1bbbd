package rawg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/games/portal-2", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":4200,"slug":"portal-2","name":"Portal 2","description":"<p>Puzzles</p>","description_raw":"Puzzles","background_image":"img","genres":[{"id":1,"name":"Puzzle","slug":"puzzle"}],"rating":4.6}`))
	})
	mux.HandleFunc("/games/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"id":1}`))
	})
	mux.HandleFunc("/games/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/games", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "40", r.URL.Query().Get("page_size"))
		w.Write([]byte(`{"count":2,"next":null,"results":[{"id":1,"name":"A"},{"id":2,"name":"B"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetGame(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL+"/", "k", time.Second)

	game, err := c.GetGame(context.Background(), "portal-2")
	require.NoError(t, err)
	assert.Equal(t, 4200, game.ID)
	assert.Equal(t, "Puzzles", game.PlainDescription())
	assert.JSONEq(t, `[{"id":1,"name":"Puzzle","slug":"puzzle"}]`, string(game.Genres))
}

func TestGetGame_NotFound(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, "k", time.Second)

	_, err := c.GetGame(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetGame_UpstreamErrors(t *testing.T) {
	srv := newTestServer(t)

	_, err := NewClient(srv.URL, "k", time.Second).GetGame(context.Background(), "broken")
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = NewClient(srv.URL, "k", 50*time.Millisecond).GetGame(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestListGames(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, "k", time.Second)

	page, err := c.ListGames(context.Background(), 2, 40)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
	assert.Nil(t, page.Next)
	assert.Len(t, page.Results, 2)
}
