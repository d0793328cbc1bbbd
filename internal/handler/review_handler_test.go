package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviews(t *testing.T) {
	env := setupTestEnv(t, nil)
	kai := env.token(t, 1, "kai", false)
	mia := env.token(t, 2, "mia", false)

	w := env.do(http.MethodPost, "/add-review", "", gin.H{"gameId": 5, "reviewText": "great", "rating": 5})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/add-review", kai, gin.H{"gameId": 5, "reviewText": "great", "rating": 5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"Review submitted successfully"}`, w.Body.String())

	w = env.do(http.MethodPost, "/add-review", mia, gin.H{"gameId": 5, "reviewText": "meh", "rating": 2})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodGet, "/reviews/5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reviews := decode[[]ReviewResponse](t, w)
	require.Len(t, reviews, 2)
	assert.Equal(t, "mia", reviews[0].Username)
	assert.Equal(t, "kai", reviews[1].Username)
	assert.Equal(t, 5, reviews[1].Rating)

	w = env.do(http.MethodGet, "/reviews-count/5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":2}`, w.Body.String())

	w = env.do(http.MethodGet, "/reviews/6", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestReviews_Validation(t *testing.T) {
	env := setupTestEnv(t, nil)
	kai := env.token(t, 1, "kai", false)

	w := env.do(http.MethodPost, "/add-review", kai, gin.H{"gameId": 5, "reviewText": "", "rating": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Game ID, review text, and rating are required"}`, w.Body.String())

	w = env.do(http.MethodPost, "/add-review", kai, gin.H{"gameId": 5, "reviewText": "wow", "rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Rating must be between 1 and 5"}`, w.Body.String())

	w = env.do(http.MethodPost, "/add-review", kai, gin.H{"gameId": 5, "reviewText": "wow", "rating": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Game ID, review text, and rating are required"}`, w.Body.String())

	w = env.do(http.MethodPost, "/add-review", kai, gin.H{"gameId": 5, "reviewText": "wow", "rating": 4.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Rating must be an integer between 1 and 5"}`, w.Body.String())

	w = env.do(http.MethodPost, "/add-review", kai, gin.H{"reviewText": "", "rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Game ID, review text, and rating are required"}`, w.Body.String())

	w = env.do(http.MethodGet, "/reviews-count/5", "", nil)
	assert.JSONEq(t, `{"count":0}`, w.Body.String())

	w = env.do(http.MethodGet, "/reviews/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid game ID"}`, w.Body.String())

	w = env.do(http.MethodGet, "/reviews-count/0", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
