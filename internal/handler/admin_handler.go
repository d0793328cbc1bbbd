package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"questlog/backend/internal/hub"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// region --- DTOs ---

// RejectInput carries optional reviewer notes.
type RejectInput struct {
	AdminNotes string `json:"adminNotes" example:"Duplicate entry"`
}

// EditInput carries the fields to change. Unknown keys are ignored.
type EditInput struct {
	UpdatedGame map[string]json.RawMessage `json:"updatedGame" swaggertype:"object"`
}

// endregion

// region --- Review Queue Handlers ---

// PendingGames godoc
// @Summary      List open submissions
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   PendingGameResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /admin/pending-games [get]
func (h *Handler) PendingGames(c *gin.Context) {
	pending, err := h.games.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch pending games")
		return
	}

	response := make([]PendingGameResponse, 0, len(pending))
	for _, p := range pending {
		response = append(response, newPendingGameResponse(p))
	}
	c.JSON(http.StatusOK, response)
}

// ApproveGame godoc
// @Summary      Approve a submission
// @Description  Promotes the submission to an approved game credited to its submitter. If the game was approved meanwhile, the submission is rejected instead.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Submission ID"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse "Not pending or already approved"
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /admin/approve-game/{id} [post]
func (h *Handler) ApproveGame(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if _, err := h.games.Approve(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to approve game")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game approved successfully"})
}

// RejectGame godoc
// @Summary      Reject a submission
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true   "Submission ID"
// @Param        input body      RejectInput  false  "Reviewer notes"
// @Success      200   {object}  MessageResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /admin/reject-game/{id} [post]
func (h *Handler) RejectGame(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var input RejectInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if _, err := h.games.Reject(c.Request.Context(), id, input.AdminNotes); err != nil {
		respondError(c, err, "Failed to reject game")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game rejected successfully"})
}

// EditGame godoc
// @Summary      Edit a submission or an approved game
// @Description  Looks up submissions first, then approved games. Only descriptive fields can change.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string     true  "Submission or game ID"
// @Param        input body      EditInput  true  "Fields to change"
// @Success      200   {object}  GameDataResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /admin/edit-game/{id} [put]
func (h *Handler) EditGame(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var input EditInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Updated game data is required"})
		return
	}

	rec, err := h.games.Edit(c.Request.Context(), id, input.UpdatedGame)
	if err != nil {
		respondError(c, err, "Failed to update game")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game updated successfully", "data": newRecordResponse(rec)})
}

// endregion

// region --- Event Stream ---

// AdminEvents godoc
// @Summary      Stream review-queue events
// @Description  Server-sent events for submissions, approvals, rejections and direct adds.
// @Tags         admin
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200  {string}  string "event stream"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/events [get]
func (h *Handler) AdminEvents(c *gin.Context) {
	client := h.events.Subscribe(hub.AdminTopic)
	defer h.events.Unsubscribe(hub.AdminTopic, client)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	logrus.WithField("subscribers", h.events.Subscribers(hub.AdminTopic)).Debug("Admin event stream opened")

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client:
			if !ok {
				return
			}
			c.SSEvent("message", string(msg))
			c.Writer.Flush()
		}
	}
}

// endregion

func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}
