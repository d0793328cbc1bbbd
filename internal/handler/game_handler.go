package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"questlog/backend/internal/auth"
	"questlog/backend/internal/models"
	"questlog/backend/internal/rawg"
	"questlog/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// region --- DTOs ---

// SaveGameInput wraps a game picked from the catalog.
type SaveGameInput struct {
	GameData *services.GameData `json:"gameData"`
}

// AddYoursInput names the catalog game an admin adds directly.
type AddYoursInput struct {
	GameName string `json:"gamename" binding:"required" example:"portal-2"`
}

// FetchGameInput names the catalog game to proxy.
type FetchGameInput struct {
	Slug string `json:"slug" binding:"required" example:"portal-2"`
}

// GameResponse is an approved game. ID is the catalog id; InternalID is the
// id admin endpoints take.
type GameResponse struct {
	InternalID      uuid.UUID       `json:"_id"`
	ID              int             `json:"id"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	BackgroundImage string          `json:"background_image"`
	Genres          json.RawMessage `json:"genres" swaggertype:"array,object"`
	Platforms       json.RawMessage `json:"platforms" swaggertype:"array,object"`
	Rating          float64         `json:"rating"`
	Released        string          `json:"released"`
	AddedBy         []string        `json:"addedBy"`
	AddedAt         time.Time       `json:"addedAt"`
	Website         string          `json:"website"`
}

// PendingGameResponse is a submission awaiting or past review.
type PendingGameResponse struct {
	InternalID      uuid.UUID       `json:"_id"`
	ID              int             `json:"id"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	BackgroundImage string          `json:"background_image"`
	Genres          json.RawMessage `json:"genres" swaggertype:"array,object"`
	Platforms       json.RawMessage `json:"platforms" swaggertype:"array,object"`
	Rating          float64         `json:"rating"`
	Released        string          `json:"released"`
	Website         string          `json:"website"`
	SubmittedBy     string          `json:"submittedBy"`
	SubmittedAt     time.Time       `json:"submittedAt"`
	Status          string          `json:"status" example:"pending"`
	AdminNotes      string          `json:"adminNotes,omitempty"`
}

// GameDataResponse pairs a message with the affected game.
type GameDataResponse struct {
	Message string       `json:"message"`
	Data    GameResponse `json:"data"`
}

func newGameResponse(game models.Game) GameResponse {
	return GameResponse{
		InternalID:      game.ID,
		ID:              game.CatalogID,
		Slug:            game.Slug,
		Name:            game.Name,
		Description:     game.Description,
		BackgroundImage: game.BackgroundImage,
		Genres:          rawList(game.Genres),
		Platforms:       rawList(game.Platforms),
		Rating:          game.Rating,
		Released:        game.Released,
		AddedBy:         game.Usernames(),
		AddedAt:         game.AddedAt,
		Website:         game.Website,
	}
}

func newGameResponses(games []models.Game) []GameResponse {
	response := make([]GameResponse, 0, len(games))
	for _, game := range games {
		response = append(response, newGameResponse(game))
	}
	return response
}

func newPendingGameResponse(p models.PendingGame) PendingGameResponse {
	return PendingGameResponse{
		InternalID:      p.ID,
		ID:              p.CatalogID,
		Slug:            p.Slug,
		Name:            p.Name,
		Description:     p.Description,
		BackgroundImage: p.BackgroundImage,
		Genres:          rawList(p.Genres),
		Platforms:       rawList(p.Platforms),
		Rating:          p.Rating,
		Released:        p.Released,
		Website:         p.Website,
		SubmittedBy:     p.SubmittedBy,
		SubmittedAt:     p.SubmittedAt,
		Status:          string(p.Status),
		AdminNotes:      p.AdminNotes,
	}
}

func newRecordResponse(rec *services.Record) interface{} {
	if rec.Pending != nil {
		return newPendingGameResponse(*rec.Pending)
	}
	return newGameResponse(*rec.Game)
}

func rawList(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("[]")
	}
	return json.RawMessage(b)
}

// endregion

// region --- Submission Handlers ---

// SaveGame godoc
// @Summary      Submit a game for approval
// @Description  Credits the caller on an approved game with the same catalog id, reports an open submission, or opens a new one.
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SaveGameInput true "Catalog game"
// @Success      200  {object}  MessageResponse "Already approved or already pending"
// @Success      201  {object}  MessageResponse "Submitted for approval"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /save-game [post]
func (h *Handler) SaveGame(c *gin.Context) {
	claims, _ := auth.CurrentUser(c)

	var input SaveGameInput
	if err := c.ShouldBindJSON(&input); err != nil || input.GameData == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Game data required"})
		return
	}

	outcome, err := h.games.Submit(c.Request.Context(), *input.GameData, claims.Username)
	if err != nil {
		respondError(c, err, "Failed to submit game for approval")
		return
	}

	switch outcome {
	case services.OutcomeContributorAdded:
		c.JSON(http.StatusOK, gin.H{"message": "Game already exists. Your username added as contributor."})
	case services.OutcomeAlreadyPending:
		c.JSON(http.StatusOK, gin.H{"message": "Game is already pending admin approval."})
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "Game submitted for admin approval"})
	}
}

// AddYours godoc
// @Summary      Add a catalog game directly (admin)
// @Description  Fetches the game from the catalog and approves it without review.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body AddYoursInput true "Catalog slug or name"
// @Success      200  {object}  GameDataResponse "Game existed, caller credited"
// @Success      201  {object}  GameDataResponse "Game added"
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      500  {object}  ErrorResponse "Catalog fetch failed"
// @Router       /addyours [post]
func (h *Handler) AddYours(c *gin.Context) {
	claims, _ := auth.CurrentUser(c)

	var input AddYoursInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Game name is required"})
		return
	}

	result, err := h.games.DirectAdd(c.Request.Context(), input.GameName, claims.Username)
	if err != nil {
		respondError(c, err, "Internal server error")
		return
	}

	if !result.Created {
		c.JSON(http.StatusOK, GameDataResponse{Message: "Game exists. Username added.", Data: newGameResponse(*result.Game)})
		return
	}
	c.JSON(http.StatusCreated, GameDataResponse{Message: "Game added successfully!", Data: newGameResponse(*result.Game)})
}

// endregion

// region --- Public Handlers ---

// SuggestedGames godoc
// @Summary      List approved games
// @Description  Every approved game, most recently added first.
// @Tags         games
// @Produce      json
// @Success      200  {array}   GameResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /suggested-games [get]
func (h *Handler) SuggestedGames(c *gin.Context) {
	games, err := h.games.Suggested(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch games")
		return
	}
	c.JSON(http.StatusOK, newGameResponses(games))
}

// YourSuggested godoc
// @Summary      List games you contributed
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   GameResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /yoursuggested [get]
func (h *Handler) YourSuggested(c *gin.Context) {
	claims, _ := auth.CurrentUser(c)

	games, err := h.games.ContributedBy(c.Request.Context(), claims.Username)
	if err != nil {
		respondError(c, err, "Failed to fetch your suggested games")
		return
	}
	c.JSON(http.StatusOK, newGameResponses(games))
}

// Leaderboard godoc
// @Summary      Top contributors
// @Description  The 20 users credited on the most approved games.
// @Tags         games
// @Produce      json
// @Success      200  {array}   services.LeaderboardEntry
// @Failure      500  {object}  ErrorResponse
// @Router       /leaderboard [get]
func (h *Handler) Leaderboard(c *gin.Context) {
	entries, err := h.leaderboard.Top(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch leaderboard")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GameDetails godoc
// @Summary      Get a stored game by slug
// @Description  Looks in approved games first and falls back to submissions.
// @Tags         games
// @Produce      json
// @Param        slug path      string  true  "Game slug"
// @Success      200  {object}  GameResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /game-details/{slug} [get]
func (h *Handler) GameDetails(c *gin.Context) {
	rec, err := h.games.Details(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "Failed to fetch game from database")
		return
	}
	c.JSON(http.StatusOK, newRecordResponse(rec))
}

// FetchGameDetails godoc
// @Summary      Proxy a game from the catalog
// @Description  Returns the catalog document for a slug unchanged.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        input body FetchGameInput true "Catalog slug"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /fetch-game-details [post]
func (h *Handler) FetchGameDetails(c *gin.Context) {
	var input FetchGameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing slug"})
		return
	}

	body, err := h.catalog.GetGameRaw(c.Request.Context(), input.Slug)
	if errors.Is(err, rawg.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("slug", input.Slug).Warn("Fetch-game-details error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch game details"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// BrowseGames godoc
// @Summary      Browse approved games
// @Description  Paginated list of approved games with an optional case-insensitive name filter.
// @Tags         games
// @Produce      json
// @Param        q     query     string  false  "Search query for game name"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[GameResponse]
// @Failure      500   {object}  ErrorResponse
// @Router       /games [get]
func (h *Handler) BrowseGames(c *gin.Context) {
	page, limit := pageParams(c)

	games, total, err := h.games.Browse(c.Request.Context(), c.Query("q"), page, limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve games")
		return
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(newGameResponses(games), total, page, limit))
}

// endregion
