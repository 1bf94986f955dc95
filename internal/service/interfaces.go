package service

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"

	"github.com/tastebase/backend/internal/models"
	"github.com/tastebase/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	RevokeToken(ctx context.Context, token string) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	List(ctx context.Context, category string, viewer *uuid.UUID) ([]types.RecipeResponse, error)
	Search(ctx context.Context, q string, viewer *uuid.UUID) ([]types.RecipeResponse, error)
	Latest(ctx context.Context, viewer *uuid.UUID) ([]types.RecipeResponse, error)
	ListByAuthor(ctx context.Context, author uuid.UUID) ([]types.RecipeResponse, error)
	ListFavorites(ctx context.Context, userID uuid.UUID, q string) ([]types.RecipeResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe) error
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleLike(ctx context.Context, recipeID, userID uuid.UUID) (bool, int, error)
}

// IMediaService defines the interface for the external media store
type IMediaService interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, url string) error
}
