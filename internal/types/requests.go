package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/tastebase/backend/internal/models"
)

// RegisterRequest is the payload for account creation
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the payload for authentication
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries a freshly issued token and the account it belongs to
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the serializable view of an account
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// RecipeAuthor is the expanded creator reference on recipe responses. Email
// is only populated on single-recipe lookups.
type RecipeAuthor struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
}

// RecipeResponse annotates a recipe with its like count and whether the
// current viewer has liked it (always false for anonymous viewers).
type RecipeResponse struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Instructions string       `json:"instructions"`
	Category     string       `json:"category"`
	CookingTime  int          `json:"cooking_time"`
	Ingredients  []string     `json:"ingredients"`
	ImageURL     string       `json:"image_url,omitempty"`
	CreatedBy    RecipeAuthor `json:"created_by"`
	Likes        int          `json:"likes"`
	LikedByUser  bool         `json:"liked_by_user"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// LikeResponse reports the like state after a toggle
type LikeResponse struct {
	RecipeID    uuid.UUID `json:"recipe_id"`
	LikedByUser bool      `json:"liked_by_user"`
	Likes       int       `json:"likes"`
}
