package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"questlog/backend/internal/models"
	"questlog/backend/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService owns user accounts and token issuance.
type AuthService struct {
	db             *gorm.DB
	tokens         *jwt.Manager
	allowMakeAdmin bool
}

// NewAuthService creates an AuthService. allowMakeAdmin enables the
// development-only MakeAdmin escape hatch.
func NewAuthService(db *gorm.DB, tokens *jwt.Manager, allowMakeAdmin bool) *AuthService {
	return &AuthService{db: db, tokens: tokens, allowMakeAdmin: allowMakeAdmin}
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token string
	User  models.User
}

// Register creates a user with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, newError(ErrValidation, "All fields are required")
	}

	db := s.db.WithContext(ctx)

	// Taken names and store failures are reported the same way.
	var count int64
	if err := db.Model(&models.User{}).Where("username = ? OR email = ?", username, email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if count > 0 {
		return nil, newError(ErrValidation, "Username already taken or invalid data")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, newError(ErrValidation, "Username already taken or invalid data")
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, newError(ErrValidation, "Username already taken or invalid data")
	}
	return &user, nil
}

// Login authenticates by username or email. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (*LoginResult, error) {
	if strings.TrimSpace(usernameOrEmail) == "" || password == "" {
		return nil, newError(ErrValidation, "All fields are required")
	}

	user, err := s.findByLogin(ctx, strings.TrimSpace(usernameOrEmail))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newError(ErrInvalidCredentials, "Invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, newError(ErrInvalidCredentials, "Invalid credentials")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Email, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &LoginResult{Token: token, User: *user}, nil
}

// CheckUser looks a user up by username or email.
func (s *AuthService) CheckUser(ctx context.Context, login string) (*models.User, error) {
	if strings.TrimSpace(login) == "" {
		return nil, newError(ErrValidation, "Login query is required")
	}
	return s.findByLogin(ctx, strings.TrimSpace(login))
}

// MakeAdmin grants the admin flag to userID. Tokens issued before the call
// keep their old flag until the user logs in again.
func (s *AuthService) MakeAdmin(ctx context.Context, userID uint) error {
	if !s.allowMakeAdmin {
		return newError(ErrForbidden, "Not available in production")
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("is_admin", true)
	if result.Error != nil {
		return fmt.Errorf("update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return newError(ErrNotFound, "User not found")
	}
	return nil
}

func (s *AuthService) findByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ? OR username = ?", login, login).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
