package handler

import (
	"net/http"

	"questlog/backend/internal/recommend"

	"github.com/gin-gonic/gin"
)

// RecommendInput is a content-based recommendation query.
type RecommendInput struct {
	Genre    string   `json:"genre" example:"Action"`
	Platform string   `json:"platform" example:"PC"`
	TopK     *int     `json:"topK,omitempty" example:"20"`
	Alpha    *float64 `json:"alpha,omitempty" example:"0.8"`
}

// Recommend godoc
// @Summary      Recommend catalog games
// @Description  Ranks ingested catalog games by similarity to a genre and platform, blended with their rating.
// @Tags         recommendations
// @Accept       json
// @Produce      json
// @Param        input body RecommendInput true "Preferences"
// @Success      200  {array}   recommend.Recommendation
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/recommend [post]
func (h *Handler) Recommend(c *gin.Context) {
	if h.recommender == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recommendations unavailable"})
		return
	}

	var input RecommendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	topK := recommend.DefaultTopK
	if input.TopK != nil && *input.TopK > 0 {
		topK = *input.TopK
	}
	alpha := recommend.DefaultAlpha
	if input.Alpha != nil && *input.Alpha >= 0 && *input.Alpha <= 1 {
		alpha = *input.Alpha
	}

	results := h.recommender.Recommend(input.Genre, input.Platform, topK, alpha)
	if results == nil {
		results = []recommend.Recommendation{}
	}
	c.JSON(http.StatusOK, results)
}
