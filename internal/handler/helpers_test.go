package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"questlog/backend/internal/database"
	"questlog/backend/internal/hub"
	"questlog/backend/internal/rawg"
	"questlog/backend/internal/services"
	"questlog/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const catalogPortal2 = `{
	"id": 42,
	"slug": "portal-2",
	"name": "Portal 2",
	"description": "<p>Puzzles.</p>",
	"description_raw": "Puzzles.",
	"background_image": "https://img/portal2.jpg",
	"genres": [{"id": 2, "name": "Shooter", "slug": "shooter"}],
	"platforms": [{"platform": {"id": 4, "name": "PC", "slug": "pc"}}],
	"rating": 4.6,
	"released": "2011-04-18",
	"website": "http://www.thinkwithportals.com/"
}`

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	tokens *jwt.Manager
	events *hub.Hub
}

// newCatalogServer fakes the catalog API: portal-2 exists, boom fails,
// everything else is missing.
func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/games/portal-2":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(catalogPortal2))
		case "/games/boom":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: database.NewLogger(), TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func setupTestEnv(t *testing.T, recommender Recommender) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	tokens := jwt.NewManager("test-secret", time.Hour)
	catalog := rawg.NewClient(newCatalogServer(t).URL, "test-key", time.Second)
	events := hub.NewHub()

	h := New(Deps{
		Auth:        services.NewAuthService(db, tokens, true),
		Games:       services.NewGameService(db, catalog, events),
		Reviews:     services.NewReviewService(db),
		Leaderboard: services.NewLeaderboardService(db),
		Catalog:     catalog,
		Recommender: recommender,
		Events:      events,
	})

	router := gin.New()
	RegisterRoutes(router, h, tokens)
	return &testEnv{router: router, db: db, tokens: tokens, events: events}
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) token(t *testing.T, id uint, username string, isAdmin bool) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(id, username, username+"@x.com", isAdmin)
	require.NoError(t, err)
	return token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func gameData(id int, slug, name string) gin.H {
	return gin.H{"gameData": gin.H{
		"id":               id,
		"slug":             slug,
		"name":             name,
		"background_image": "u",
	}}
}
