package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tastebase/backend/internal/middleware"
	"github.com/tastebase/backend/internal/models"
	"github.com/tastebase/backend/internal/service"
	"github.com/tastebase/backend/internal/types"
)

// RecipeHandler exposes the recipe catalog: listing, search, CRUD and likes.
type RecipeHandler struct {
	recipes *service.RecipeService
	auth    *service.AuthService
	media   service.IMediaService
}

func NewRecipeHandler(recipes *service.RecipeService, auth *service.AuthService, media service.IMediaService) *RecipeHandler {
	return &RecipeHandler{
		recipes: recipes,
		auth:    auth,
		media:   media,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.RequireAuth(h.auth)
	optionalAuth := middleware.OptionalAuth(h.auth)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.ListRecipes)
		recipes.GET("/latest", optionalAuth, h.LatestRecipes)
		recipes.GET("/search/query", optionalAuth, h.SearchRecipes)
		recipes.GET("/my", requireAuth, h.MyRecipes)
		recipes.GET("/favorites", requireAuth, h.FavoriteRecipes)
		recipes.GET("/:id", optionalAuth, h.GetRecipe)
		recipes.POST("", requireAuth, h.CreateRecipe)
		recipes.POST("/:id/like", requireAuth, h.ToggleLike)
		recipes.PUT("/:id", requireAuth, h.UpdateRecipe)
		recipes.DELETE("/:id", requireAuth, h.DeleteRecipe)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.List(c.Request.Context(), c.Query("category"), viewerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	recipes, err := h.recipes.Search(c.Request.Context(), c.Query("q"), viewerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search recipes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) LatestRecipes(c *gin.Context) {
	recipes, err := h.recipes.Latest(c.Request.Context(), viewerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) MyRecipes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	recipes, err := h.recipes.ListByAuthor(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) FavoriteRecipes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	recipes, err := h.recipes.ListFavorites(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipe"})
		return
	}

	c.JSON(http.StatusOK, h.recipes.ToResponse(recipe, viewerID(c), true))
}

func (h *RecipeHandler) ToggleLike(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	liked, count, err := h.recipes.ToggleLike(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		return
	}

	c.JSON(http.StatusOK, types.LikeResponse{
		RecipeID:    id,
		LikedByUser: liked,
		Likes:       count,
	})
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected multipart form data"})
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	instructions := strings.TrimSpace(c.PostForm("instructions"))
	category := strings.TrimSpace(c.PostForm("category"))
	ingredients, _ := types.DecodeIngredients(form.Value).Normalize()

	if title == "" || instructions == "" || category == "" || len(ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, instructions, category and at least one ingredient are required"})
		return
	}
	if !models.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category " + category})
		return
	}

	cookingTime := 0
	if raw := c.PostForm("cooking_time"); raw != "" {
		cookingTime, err = strconv.Atoi(raw)
		if err != nil || cookingTime < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cooking_time"})
			return
		}
	}

	recipe := models.Recipe{
		Title:        title,
		Instructions: instructions,
		Category:     category,
		CookingTime:  cookingTime,
		Ingredients:  models.JSONStringArray(ingredients),
		CreatedByID:  userID,
	}

	if file, ferr := c.FormFile("image"); ferr == nil {
		url, uerr := h.media.Upload(c.Request.Context(), file)
		if uerr != nil {
			logrus.WithError(uerr).Error("image upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
			return
		}
		recipe.ImageURL = url
	}

	if err := h.recipes.Create(c.Request.Context(), &recipe); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
		return
	}

	created, err := h.recipes.Get(c.Request.Context(), recipe.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipe"})
		return
	}

	c.JSON(http.StatusCreated, h.recipes.ToResponse(created, &userID, false))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipe"})
		return
	}

	if !canModify(c, recipe) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not allowed to modify this recipe"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected multipart form data"})
		return
	}

	// Partial update: absent fields are left untouched.
	if v, present := c.GetPostForm("title"); present {
		v = strings.TrimSpace(v)
		if v == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title must not be blank"})
			return
		}
		recipe.Title = v
	}
	if v, present := c.GetPostForm("instructions"); present {
		v = strings.TrimSpace(v)
		if v == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "instructions must not be blank"})
			return
		}
		recipe.Instructions = v
	}
	if v, present := c.GetPostForm("category"); present {
		v = strings.TrimSpace(v)
		if !models.ValidCategory(v) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category " + v})
			return
		}
		recipe.Category = v
	}
	if v, present := c.GetPostForm("cooking_time"); present {
		cookingTime, cerr := strconv.Atoi(v)
		if cerr != nil || cookingTime < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cooking_time"})
			return
		}
		recipe.CookingTime = cookingTime
	}
	if ingredients, present := types.DecodeIngredients(form.Value).Normalize(); present {
		recipe.Ingredients = models.JSONStringArray(ingredients)
	}

	// Image lifecycle: stage the new asset first, commit the reference, and
	// only then garbage-collect the replaced one so a failed save never
	// orphans the stored record.
	previousImage := ""
	if file, ferr := c.FormFile("image"); ferr == nil {
		url, uerr := h.media.Upload(c.Request.Context(), file)
		if uerr != nil {
			logrus.WithError(uerr).Error("image upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
			return
		}
		previousImage = recipe.ImageURL
		recipe.ImageURL = url
	} else if c.PostForm("clearImage") == "true" {
		previousImage = recipe.ImageURL
		recipe.ImageURL = ""
	}

	if err := h.recipes.Update(c.Request.Context(), recipe); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recipe"})
		return
	}

	if previousImage != "" {
		h.deleteImageBestEffort(c, recipe.ID, previousImage)
	}

	updated, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipe"})
		return
	}

	c.JSON(http.StatusOK, h.recipes.ToResponse(updated, &userID, false))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipe"})
		return
	}

	if !canModify(c, recipe) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not allowed to modify this recipe"})
		return
	}

	if recipe.ImageURL != "" {
		h.deleteImageBestEffort(c, recipe.ID, recipe.ImageURL)
	}

	if err := h.recipes.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe deleted successfully",
		"id":      id.String(),
	})
}

// deleteImageBestEffort removes a media asset, logging failures without
// surfacing them to the caller.
func (h *RecipeHandler) deleteImageBestEffort(c *gin.Context, recipeID uuid.UUID, imageURL string) {
	if err := h.media.Delete(c.Request.Context(), imageURL); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"recipe_id": recipeID,
			"image_url": imageURL,
		}).Warn("failed to delete recipe image")
	}
}

// canModify enforces the owner-or-admin rule for update and delete.
func canModify(c *gin.Context, recipe *models.Recipe) bool {
	userID, ok := currentUserID(c)
	if !ok {
		return false
	}
	if userID == recipe.CreatedByID {
		return true
	}
	role, _ := c.Get(middleware.ContextUserRole)
	return role == models.RoleAdmin
}
