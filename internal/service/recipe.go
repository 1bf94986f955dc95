package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebase/backend/internal/models"
	"github.com/tastebase/backend/internal/types"
)

const latestLimit = 3

// RecipeService handles recipe persistence and like bookkeeping.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

func (s *RecipeService) baseQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Preload("CreatedBy").
		Preload("Likes")
}

// List returns all recipes, optionally filtered by exact category, newest
// first. The viewer, when present, drives the liked_by_user annotation.
func (s *RecipeService) List(ctx context.Context, category string, viewer *uuid.UUID) ([]types.RecipeResponse, error) {
	query := s.baseQuery(ctx)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var recipes []models.Recipe
	if err := query.Order("created_at DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return s.toResponses(recipes, viewer), nil
}

// Search matches the query case-insensitively against recipe titles.
func (s *RecipeService) Search(ctx context.Context, q string, viewer *uuid.UUID) ([]types.RecipeResponse, error) {
	query := s.baseQuery(ctx)
	if q != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var recipes []models.Recipe
	if err := query.Order("created_at DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return s.toResponses(recipes, viewer), nil
}

// Latest returns the three most recently created recipes.
func (s *RecipeService) Latest(ctx context.Context, viewer *uuid.UUID) ([]types.RecipeResponse, error) {
	var recipes []models.Recipe
	if err := s.baseQuery(ctx).Order("created_at DESC").Limit(latestLimit).Find(&recipes).Error; err != nil {
		return nil, err
	}
	return s.toResponses(recipes, viewer), nil
}

// ListByAuthor returns the recipes created by the given user.
func (s *RecipeService) ListByAuthor(ctx context.Context, author uuid.UUID) ([]types.RecipeResponse, error) {
	var recipes []models.Recipe
	if err := s.baseQuery(ctx).
		Where("created_by_id = ?", author).
		Order("created_at DESC").
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return s.toResponses(recipes, &author), nil
}

// ListFavorites returns the recipes the user has liked, optionally filtered
// by a title substring.
func (s *RecipeService) ListFavorites(ctx context.Context, userID uuid.UUID, q string) ([]types.RecipeResponse, error) {
	query := s.baseQuery(ctx).
		Joins("JOIN recipe_likes ON recipe_likes.recipe_id = recipes.id").
		Where("recipe_likes.user_id = ?", userID)
	if q != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var recipes []models.Recipe
	if err := query.Order("recipes.created_at DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return s.toResponses(recipes, &userID), nil
}

// Get retrieves a recipe with its creator and likes loaded.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.baseQuery(ctx).First(&recipe, "recipes.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Create persists a new recipe.
func (s *RecipeService) Create(ctx context.Context, recipe *models.Recipe) error {
	return s.db.WithContext(ctx).Create(recipe).Error
}

// Update saves modified recipe fields.
func (s *RecipeService) Update(ctx context.Context, recipe *models.Recipe) error {
	return s.db.WithContext(ctx).Save(recipe).Error
}

// Delete removes a recipe and its likes.
func (s *RecipeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
}

// ToggleLike flips the user's membership in the recipe's like set and
// reports the new state and count. Returns gorm.ErrRecordNotFound for an
// absent recipe.
func (s *RecipeService) ToggleLike(ctx context.Context, recipeID, userID uuid.UUID) (bool, int, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return false, 0, err
	}

	liked := false
	var like models.RecipeLike
	err := s.db.WithContext(ctx).
		Where("recipe_id = ? AND user_id = ?", recipeID, userID).
		First(&like).Error
	switch {
	case err == nil:
		if err := s.db.WithContext(ctx).Delete(&like).Error; err != nil {
			return false, 0, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		newLike := models.RecipeLike{RecipeID: recipeID, UserID: userID}
		if err := s.db.WithContext(ctx).Create(&newLike).Error; err != nil {
			// A concurrent like already inserted the row; the unique index
			// keeps the set duplicate-free either way.
			var check models.RecipeLike
			if lookupErr := s.db.WithContext(ctx).
				Where("recipe_id = ? AND user_id = ?", recipeID, userID).
				First(&check).Error; lookupErr != nil {
				return false, 0, err
			}
		}
		liked = true
	default:
		return false, 0, err
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.RecipeLike{}).
		Where("recipe_id = ?", recipeID).
		Count(&count).Error; err != nil {
		return false, 0, err
	}

	return liked, int(count), nil
}

// ToResponse annotates a single recipe for the given viewer. Email on the
// creator is only exposed when includeEmail is set (single-recipe lookups).
func (s *RecipeService) ToResponse(recipe *models.Recipe, viewer *uuid.UUID, includeEmail bool) types.RecipeResponse {
	resp := types.RecipeResponse{
		ID:           recipe.ID,
		Title:        recipe.Title,
		Instructions: recipe.Instructions,
		Category:     recipe.Category,
		CookingTime:  recipe.CookingTime,
		Ingredients:  []string(recipe.Ingredients),
		ImageURL:     recipe.ImageURL,
		Likes:        len(recipe.Likes),
		CreatedAt:    recipe.CreatedAt,
		UpdatedAt:    recipe.UpdatedAt,
		CreatedBy: types.RecipeAuthor{
			ID:       recipe.CreatedByID,
			Username: recipe.CreatedBy.Username,
		},
	}
	if resp.Ingredients == nil {
		resp.Ingredients = []string{}
	}
	if includeEmail {
		resp.CreatedBy.Email = recipe.CreatedBy.Email
	}
	if viewer != nil {
		for _, like := range recipe.Likes {
			if like.UserID == *viewer {
				resp.LikedByUser = true
				break
			}
		}
	}
	return resp
}

func (s *RecipeService) toResponses(recipes []models.Recipe, viewer *uuid.UUID) []types.RecipeResponse {
	out := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, s.ToResponse(&recipes[i], viewer, false))
	}
	return out
}
