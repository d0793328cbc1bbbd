package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"questlog/backend/internal/auth"
	"questlog/backend/internal/models"
	"questlog/backend/internal/services"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// ReviewResponse is a stored review.
type ReviewResponse struct {
	ID         uint      `json:"_id"`
	GameID     int       `json:"gameId"`
	Username   string    `json:"username"`
	ReviewText string    `json:"reviewText"`
	Rating     int       `json:"rating" example:"4"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CountResponse carries a review count.
type CountResponse struct {
	Count int64 `json:"count" example:"3"`
}

func newReviewResponse(r models.Review) ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		GameID:     r.GameID,
		Username:   r.Username,
		ReviewText: r.ReviewText,
		Rating:     r.Rating,
		CreatedAt:  r.CreatedAt,
	}
}

// endregion

// AddReview godoc
// @Summary      Review a game
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body services.ReviewInput true "Review"
// @Success      201  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /add-review [post]
func (h *Handler) AddReview(c *gin.Context) {
	claims, _ := auth.CurrentUser(c)

	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": reviewBindMessage(err)})
		return
	}

	if _, err := h.reviews.Add(c.Request.Context(), input, claims.Username); err != nil {
		respondError(c, err, "Failed to submit review")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Review submitted successfully"})
}

// GetReviews godoc
// @Summary      List the reviews of a game
// @Tags         reviews
// @Produce      json
// @Param        gameId path      int  true  "Catalog game ID"
// @Success      200    {array}   ReviewResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Router       /reviews/{gameId} [get]
func (h *Handler) GetReviews(c *gin.Context) {
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}

	reviews, err := h.reviews.List(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err, "Failed to fetch reviews")
		return
	}

	response := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		response = append(response, newReviewResponse(r))
	}
	c.JSON(http.StatusOK, response)
}

// ReviewsCount godoc
// @Summary      Count the reviews of a game
// @Tags         reviews
// @Produce      json
// @Param        gameId path      int  true  "Catalog game ID"
// @Success      200    {object}  CountResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      500    {object}  ErrorResponse
// @Router       /reviews-count/{gameId} [get]
func (h *Handler) ReviewsCount(c *gin.Context) {
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}

	count, err := h.reviews.Count(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err, "Failed to count reviews")
		return
	}
	c.JSON(http.StatusOK, CountResponse{Count: count})
}

func gameIDParam(c *gin.Context) (int, bool) {
	gameID, err := strconv.Atoi(c.Param("gameId"))
	if err != nil || gameID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return 0, false
	}
	return gameID, true
}

func reviewBindMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field == "rating":
		return "Rating must be an integer between 1 and 5"
	case failedTag(err, "required"):
		return "Game ID, review text, and rating are required"
	case failedTag(err, "min"), failedTag(err, "max"):
		return "Rating must be between 1 and 5"
	default:
		return "Game ID, review text, and rating are required"
	}
}
