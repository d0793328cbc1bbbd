package handler

import (
	"net/http"

	"questlog/backend/internal/auth"
	"questlog/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Username string `json:"username" binding:"required" example:"kai"`
	Email    string `json:"email" binding:"required,email" example:"kai@x.com"`
	Password string `json:"password" binding:"required" example:"pw123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	UsernameOrEmail string `json:"usernameOrEmail" binding:"required" example:"kai@x.com"`
	Password        string `json:"password" binding:"required" example:"pw123"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	Username string `json:"username" example:"kai"`
	Email    string `json:"email" example:"kai@x.com"`
	IsAdmin  bool   `json:"isAdmin"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Message string       `json:"message" example:"Login successful"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

func newUserResponse(user models.User) UserResponse {
	return UserResponse{
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	}
}

// endregion

// region --- Auth Handlers ---

// Register godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse "Missing fields, taken name or invalid data"
// @Router       /register [post]
func (h *Handler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		if !failedTag(err, "required") && failedTag(err, "email") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	if _, err := h.auth.Register(c.Request.Context(), input.Username, input.Email, input.Password); err != nil {
		respondError(c, err, "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// Login godoc
// @Summary      Log in a user
// @Description  Authenticates with username or email and password, and returns a token valid for 7 days.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  LoginResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /login [post]
func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), input.UsernameOrEmail, input.Password)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token:   result.Token,
		User:    newUserResponse(result.User),
	})
}

// endregion

// region --- User Handlers ---

// CheckUser godoc
// @Summary      Check if a user exists
// @Tags         users
// @Produce      json
// @Param        login query     string  true  "Username or email"
// @Success      200   {object}  UserResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /check-user [get]
func (h *Handler) CheckUser(c *gin.Context) {
	user, err := h.auth.CheckUser(c.Request.Context(), c.Query("login"))
	if err != nil {
		respondError(c, err, "Server error")
		return
	}

	c.JSON(http.StatusOK, newUserResponse(*user))
}

// MakeAdmin godoc
// @Summary      Grant yourself admin (development only)
// @Description  Disabled when APP_ENV is production. Log in again to receive a token with the admin flag.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Not available in production"
// @Failure      404  {object}  ErrorResponse
// @Router       /make-admin [post]
func (h *Handler) MakeAdmin(c *gin.Context) {
	claims, _ := auth.CurrentUser(c)

	if err := h.auth.MakeAdmin(c.Request.Context(), claims.ID); err != nil {
		respondError(c, err, "Failed to make user admin")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User is now an admin (DEVELOPMENT ONLY)"})
}

// endregion
