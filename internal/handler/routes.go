package handler

import (
	"net/http"

	"questlog/backend/internal/auth"
	"questlog/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes mounts every endpoint on router.
func RegisterRoutes(router *gin.Engine, h *Handler, tokens *jwt.Manager) {
	requireUser := auth.AuthMiddleware(tokens)
	requireAdmin := auth.AdminMiddleware()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Auth routes
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.GET("/check-user", h.CheckUser)
	router.POST("/make-admin", requireUser, h.MakeAdmin)

	// Game routes
	router.GET("/suggested-games", h.SuggestedGames)
	router.GET("/games", h.BrowseGames)
	router.GET("/leaderboard", h.Leaderboard)
	router.POST("/fetch-game-details", h.FetchGameDetails)
	router.GET("/game-details/:slug", h.GameDetails)
	router.POST("/save-game", requireUser, h.SaveGame)
	router.GET("/yoursuggested", requireUser, h.YourSuggested)
	router.POST("/addyours", requireUser, requireAdmin, h.AddYours)

	// Review routes
	router.POST("/add-review", requireUser, h.AddReview)
	router.GET("/reviews/:gameId", h.GetReviews)
	router.GET("/reviews-count/:gameId", h.ReviewsCount)

	router.POST("/api/recommend", h.Recommend)

	// Admin routes (protected by auth and admin check)
	adminRoutes := router.Group("/admin")
	adminRoutes.Use(requireUser, requireAdmin)
	{
		adminRoutes.GET("/pending-games", h.PendingGames)
		adminRoutes.POST("/approve-game/:id", h.ApproveGame)
		adminRoutes.POST("/reject-game/:id", h.RejectGame)
		adminRoutes.PUT("/edit-game/:id", h.EditGame)
		adminRoutes.GET("/events", h.AdminEvents)
	}
}
