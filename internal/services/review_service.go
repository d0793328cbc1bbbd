package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"questlog/backend/internal/models"

	"gorm.io/gorm"
)

const (
	minRating = 1
	maxRating = 5
)

// ReviewInput is a new review as sent by a client.
type ReviewInput struct {
	GameID     int    `json:"gameId" binding:"required"`
	ReviewText string `json:"reviewText" binding:"required"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
}

// ReviewService stores and lists reviews. Reviews cannot be edited or deleted.
type ReviewService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewReviewService creates a ReviewService.
func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db, now: time.Now}
}

// Add stores a review by username. The game id is not checked against the
// games table.
func (s *ReviewService) Add(ctx context.Context, input ReviewInput, username string) (*models.Review, error) {
	if input.GameID == 0 || strings.TrimSpace(input.ReviewText) == "" || input.Rating == 0 {
		return nil, newError(ErrValidation, "Game ID, review text, and rating are required")
	}
	if input.Rating < minRating || input.Rating > maxRating {
		return nil, newError(ErrValidation, fmt.Sprintf("Rating must be between %d and %d", minRating, maxRating))
	}

	review := models.Review{
		GameID:     input.GameID,
		Username:   username,
		ReviewText: input.ReviewText,
		Rating:     input.Rating,
		CreatedAt:  s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return &review, nil
}

// List returns the reviews of a game, most recent first.
func (s *ReviewService) List(ctx context.Context, gameID int) ([]models.Review, error) {
	if gameID == 0 {
		return nil, newError(ErrValidation, "Invalid game ID")
	}

	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("created_at DESC").Order("id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// Count returns how many reviews a game has.
func (s *ReviewService) Count(ctx context.Context, gameID int) (int64, error) {
	if gameID == 0 {
		return 0, newError(ErrValidation, "Invalid game ID")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Review{}).Where("game_id = ?", gameID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}
