package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"questlog/backend/internal/hub"
	"questlog/backend/internal/recommend"
	"questlog/backend/internal/services"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CatalogProxy returns catalog documents unchanged.
type CatalogProxy interface {
	GetGameRaw(ctx context.Context, slug string) (json.RawMessage, error)
}

// Recommender ranks catalog games against a preference.
type Recommender interface {
	Recommend(genre, platform string, topK int, alpha float64) []recommend.Recommendation
}

// Handler serves the HTTP API.
type Handler struct {
	auth        *services.AuthService
	games       *services.GameService
	reviews     *services.ReviewService
	leaderboard *services.LeaderboardService
	catalog     CatalogProxy
	recommender Recommender
	events      *hub.Hub
}

// Deps lists everything the handlers need. Recommender may be nil when no
// games file has been ingested yet.
type Deps struct {
	Auth        *services.AuthService
	Games       *services.GameService
	Reviews     *services.ReviewService
	Leaderboard *services.LeaderboardService
	Catalog     CatalogProxy
	Recommender Recommender
	Events      *hub.Hub
}

// New creates a Handler.
func New(d Deps) *Handler {
	return &Handler{
		auth:        d.Auth,
		games:       d.Games,
		reviews:     d.Reviews,
		leaderboard: d.Leaderboard,
		catalog:     d.Catalog,
		recommender: d.Recommender,
		events:      d.Events,
	}
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// MessageResponse represents a plain success message.
type MessageResponse struct {
	Message string `json:"message" example:"Game approved successfully"`
}

// respondError writes the message of a service error with its status, or
// fallback with a 500 for anything unexpected.
func respondError(c *gin.Context, err error, fallback string) {
	var se *services.Error
	if errors.As(err, &se) {
		c.JSON(statusFor(se.Kind), gin.H{"error": se.Message})
		return
	}

	_ = c.Error(err)
	if sentryHub := sentrygin.GetHubFromContext(c); sentryHub != nil {
		sentryHub.CaptureException(err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(kind, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(kind, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, services.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// validationErrors returns the binding tag failures in err, or nil when the
// body failed to decode at all.
func validationErrors(err error) validator.ValidationErrors {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return nil
}

func failedTag(err error, tag string) bool {
	for _, fe := range validationErrors(err) {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}
