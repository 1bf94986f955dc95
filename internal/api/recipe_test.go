package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tastebase/backend/internal/models"
)

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateRecipe(t *testing.T) {
	router, deps := SetupTestRouter(t)
	user, token := CreateTestUser(t, deps, models.RoleUser)

	body, contentType := MultipartBody(t, [][2]string{
		{"title", "Pasta"},
		{"instructions", "Boil."},
		{"category", "Dinner"},
		{"cooking_time", "20"},
		{"ingredients", `["pasta","salt"]`},
	}, "", nil)

	w := DoMultipart(router, "POST", "/api/v1/recipes", token, body, contentType)
	require.Equal(t, 201, w.Code, w.Body.String())

	resp := decodeJSON(t, w)
	assert.Equal(t, "Pasta", resp["title"])
	assert.Equal(t, "Dinner", resp["category"])
	assert.Equal(t, float64(0), resp["likes"])
	assert.Equal(t, false, resp["liked_by_user"])

	createdBy := resp["created_by"].(map[string]interface{})
	assert.Equal(t, user.ID.String(), createdBy["id"])
	assert.Equal(t, user.Username, createdBy["username"])

	ingredients := resp["ingredients"].([]interface{})
	assert.Equal(t, []interface{}{"pasta", "salt"}, ingredients)
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	router, _ := SetupTestRouter(t)

	body, contentType := MultipartBody(t, [][2]string{{"title", "Pasta"}}, "", nil)
	w := DoMultipart(router, "POST", "/api/v1/recipes", "", body, contentType)
	assert.Equal(t, 401, w.Code)
}

func TestCreateRecipeMissingFields(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, token := CreateTestUser(t, deps, models.RoleUser)

	cases := []struct {
		name   string
		fields [][2]string
	}{
		{"no title", [][2]string{{"instructions", "Boil."}, {"category", "Dinner"}, {"ingredients", "pasta"}}},
		{"no instructions", [][2]string{{"title", "Pasta"}, {"category", "Dinner"}, {"ingredients", "pasta"}}},
		{"no category", [][2]string{{"title", "Pasta"}, {"instructions", "Boil."}, {"ingredients", "pasta"}}},
		{"no ingredients", [][2]string{{"title", "Pasta"}, {"instructions", "Boil."}, {"category", "Dinner"}}},
		{"blank ingredients", [][2]string{{"title", "Pasta"}, {"instructions", "Boil."}, {"category", "Dinner"}, {"ingredients", "   "}}},
		{"bad category", [][2]string{{"title", "Pasta"}, {"instructions", "Boil."}, {"category", "Elevenses"}, {"ingredients", "pasta"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, contentType := MultipartBody(t, tc.fields, "", nil)
			w := DoMultipart(router, "POST", "/api/v1/recipes", token, body, contentType)
			assert.Equal(t, 400, w.Code, w.Body.String())
		})
	}
}

func TestCreateRecipeIngredientEncodings(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, token := CreateTestUser(t, deps, models.RoleUser)

	base := [][2]string{
		{"title", "Pasta"},
		{"instructions", "Boil."},
		{"category", "Dinner"},
	}

	encodings := map[string][][2]string{
		"json array":   {{"ingredients", `["pasta","salt"]`}},
		"native array": {{"ingredients", "pasta"}, {"ingredients", "salt"}},
		"indexed keys": {{"ingredients[1]", "salt"}, {"ingredients[0]", "pasta"}},
	}

	for name, extra := range encodings {
		t.Run(name, func(t *testing.T) {
			body, contentType := MultipartBody(t, append(append([][2]string{}, base...), extra...), "", nil)
			w := DoMultipart(router, "POST", "/api/v1/recipes", token, body, contentType)
			require.Equal(t, 201, w.Code, w.Body.String())

			resp := decodeJSON(t, w)
			assert.Equal(t, []interface{}{"pasta", "salt"}, resp["ingredients"].([]interface{}))
		})
	}

	t.Run("single scalar", func(t *testing.T) {
		body, contentType := MultipartBody(t, append(append([][2]string{}, base...), [2]string{"ingredients", "pasta"}), "", nil)
		w := DoMultipart(router, "POST", "/api/v1/recipes", token, body, contentType)
		require.Equal(t, 201, w.Code, w.Body.String())

		resp := decodeJSON(t, w)
		assert.Equal(t, []interface{}{"pasta"}, resp["ingredients"].([]interface{}))
	})
}

func TestCreateRecipeWithImage(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, token := CreateTestUser(t, deps, models.RoleUser)

	deps.Media.On("Upload", mock.Anything, mock.Anything).
		Return("https://bucket.s3.amazonaws.com/recipe-images/a.jpg", nil).Once()

	body, contentType := MultipartBody(t, [][2]string{
		{"title", "Pasta"},
		{"instructions", "Boil."},
		{"category", "Dinner"},
		{"ingredients", "pasta"},
	}, "photo.jpg", []byte("fake image bytes"))

	w := DoMultipart(router, "POST", "/api/v1/recipes", token, body, contentType)
	require.Equal(t, 201, w.Code, w.Body.String())

	resp := decodeJSON(t, w)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/recipe-images/a.jpg", resp["image_url"])
	deps.Media.AssertExpectations(t)
}

func TestToggleLike(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, ownerToken := CreateTestUser(t, deps, models.RoleUser)
	_, likerToken := CreateTestUser(t, deps, models.RoleUser)

	created := simpleRecipe(t, router, deps, ownerToken, "Pasta")
	id := created["id"].(string)

	// First toggle likes
	w := DoRequest(router, "POST", "/api/v1/recipes/"+id+"/like", likerToken)
	require.Equal(t, 200, w.Code, w.Body.String())
	resp := decodeJSON(t, w)
	assert.Equal(t, true, resp["liked_by_user"])
	assert.Equal(t, float64(1), resp["likes"])

	// Second toggle unlikes, returning to the original state
	w = DoRequest(router, "POST", "/api/v1/recipes/"+id+"/like", likerToken)
	require.Equal(t, 200, w.Code)
	resp = decodeJSON(t, w)
	assert.Equal(t, false, resp["liked_by_user"])
	assert.Equal(t, float64(0), resp["likes"])
}

func TestToggleLikeErrors(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, token := CreateTestUser(t, deps, models.RoleUser)

	w := DoRequest(router, "POST", "/api/v1/recipes/not-a-uuid/like", token)
	assert.Equal(t, 400, w.Code)

	w = DoRequest(router, "POST", "/api/v1/recipes/"+uuid.NewString()+"/like", token)
	assert.Equal(t, 404, w.Code)

	w = DoRequest(router, "POST", "/api/v1/recipes/"+uuid.NewString()+"/like", "")
	assert.Equal(t, 401, w.Code)
}

func TestGetRecipe(t *testing.T) {
	router, deps := SetupTestRouter(t)
	owner, token := CreateTestUser(t, deps, models.RoleUser)

	created := simpleRecipe(t, router, deps, token, "Pasta")
	id := created["id"].(string)

	// Anonymous lookup: creator expanded with email, liked_by_user false
	w := DoRequest(router, "GET", "/api/v1/recipes/"+id, "")
	require.Equal(t, 200, w.Code, w.Body.String())
	resp := decodeJSON(t, w)
	assert.Equal(t, "Pasta", resp["title"])
	assert.Equal(t, false, resp["liked_by_user"])
	createdBy := resp["created_by"].(map[string]interface{})
	assert.Equal(t, owner.Username, createdBy["username"])
	assert.Equal(t, owner.Email, createdBy["email"])
}

func TestGetRecipeErrors(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := DoRequest(router, "GET", "/api/v1/recipes/not-a-uuid", "")
	assert.Equal(t, 400, w.Code)

	w = DoRequest(router, "GET", "/api/v1/recipes/"+uuid.NewString(), "")
	assert.Equal(t, 404, w.Code)
}

func TestListRecipes(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, token := CreateTestUser(t, deps, models.RoleUser)

	simpleRecipeWithCategory(t, router, deps, token, "Oats", "Breakfast")
	simpleRecipeWithCategory(t, router, deps, token, "Pasta", "Dinner")
	simpleRecipeWithCategory(t, router, deps, token, "Stew", "Dinner")

	w := DoRequest(router, "GET", "/api/v1/recipes", "")
	require.Equal(t, 200, w.Code)
	resp := decodeJSON(t, w)
	assert.Len(t, resp["recipes"].([]interface{}), 3)

	w = DoRequest(router, "GET", "/api/v1/recipes?category=Dinner", "")
	require.Equal(t, 200, w.Code)
	resp = decodeJSON(t, w)
	recipes := resp["recipes"].([]interface{})
	require.Len(t, recipes, 2)
	for _, r := range recipes {
		assert.Equal(t, "Dinner", r.(map[string]interface{})["category"])
	}
}

func TestSearchRecipes(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, token := CreateTestUser(t, deps, models.RoleUser)

	simpleRecipe(t, router, deps, token, "Spaghetti Carbonara")
	simpleRecipe(t, router, deps, token, "Lemon Posset")

	w := DoRequest(router, "GET", "/api/v1/recipes/search/query?q=CARBO", "")
	require.Equal(t, 200, w.Code)
	resp := decodeJSON(t, w)
	recipes := resp["recipes"].([]interface{})
	require.Len(t, recipes, 1)
	assert.Equal(t, "Spaghetti Carbonara", recipes[0].(map[string]interface{})["title"])
}

func TestLatestRecipes(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, token := CreateTestUser(t, deps, models.RoleUser)

	for _, title := range []string{"One", "Two", "Three", "Four", "Five"} {
		simpleRecipe(t, router, deps, token, title)
	}

	w := DoRequest(router, "GET", "/api/v1/recipes/latest", "")
	require.Equal(t, 200, w.Code)
	resp := decodeJSON(t, w)
	assert.Len(t, resp["recipes"].([]interface{}), 3)
}

func TestMyRecipes(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, tokenA := CreateTestUser(t, deps, models.RoleUser)
	_, tokenB := CreateTestUser(t, deps, models.RoleUser)

	simpleRecipe(t, router, deps, tokenA, "Mine")
	simpleRecipe(t, router, deps, tokenB, "Theirs")

	w := DoRequest(router, "GET", "/api/v1/recipes/my", tokenA)
	require.Equal(t, 200, w.Code)
	resp := decodeJSON(t, w)
	recipes := resp["recipes"].([]interface{})
	require.Len(t, recipes, 1)
	assert.Equal(t, "Mine", recipes[0].(map[string]interface{})["title"])

	w = DoRequest(router, "GET", "/api/v1/recipes/my", "")
	assert.Equal(t, 401, w.Code)
}

func TestFavoriteRecipes(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, ownerToken := CreateTestUser(t, deps, models.RoleUser)
	_, likerToken := CreateTestUser(t, deps, models.RoleUser)

	pasta := simpleRecipe(t, router, deps, ownerToken, "Pasta")
	simpleRecipe(t, router, deps, ownerToken, "Stew")

	w := DoRequest(router, "POST", "/api/v1/recipes/"+pasta["id"].(string)+"/like", likerToken)
	require.Equal(t, 200, w.Code)

	w = DoRequest(router, "GET", "/api/v1/recipes/favorites", likerToken)
	require.Equal(t, 200, w.Code)
	resp := decodeJSON(t, w)
	recipes := resp["recipes"].([]interface{})
	require.Len(t, recipes, 1)
	fav := recipes[0].(map[string]interface{})
	assert.Equal(t, "Pasta", fav["title"])
	assert.Equal(t, true, fav["liked_by_user"])

	// Title substring filter over the favorites set
	w = DoRequest(router, "GET", "/api/v1/recipes/favorites?q=stew", likerToken)
	require.Equal(t, 200, w.Code)
	resp = decodeJSON(t, w)
	assert.Empty(t, resp["recipes"].([]interface{}))
}

func TestUpdateRecipePartial(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, token := CreateTestUser(t, deps, models.RoleUser)

	created := createWithIngredients(t, router, deps, token, "Pasta", []string{"pasta", "salt"})
	id := created["id"].(string)

	// Only the title changes; ingredients are untouched without the key
	body, contentType := MultipartBody(t, [][2]string{{"title", "Pasta Nuova"}}, "", nil)
	w := DoMultipart(router, "PUT", "/api/v1/recipes/"+id, token, body, contentType)
	require.Equal(t, 200, w.Code, w.Body.String())

	resp := decodeJSON(t, w)
	assert.Equal(t, "Pasta Nuova", resp["title"])
	assert.Equal(t, []interface{}{"pasta", "salt"}, resp["ingredients"].([]interface{}))

	// An ingredients key with only blanks clears to the filtered empty set
	body, contentType = MultipartBody(t, [][2]string{{"ingredients", "  "}}, "", nil)
	w = DoMultipart(router, "PUT", "/api/v1/recipes/"+id, token, body, contentType)
	require.Equal(t, 200, w.Code, w.Body.String())

	resp = decodeJSON(t, w)
	assert.Empty(t, resp["ingredients"].([]interface{}))
}

func TestUpdateRecipeOwnership(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, ownerToken := CreateTestUser(t, deps, models.RoleUser)
	_, otherToken := CreateTestUser(t, deps, models.RoleUser)
	_, adminToken := CreateTestUser(t, deps, models.RoleAdmin)

	created := simpleRecipe(t, router, deps, ownerToken, "Pasta")
	id := created["id"].(string)

	body, contentType := MultipartBody(t, [][2]string{{"title", "Hijacked"}}, "", nil)
	w := DoMultipart(router, "PUT", "/api/v1/recipes/"+id, otherToken, body, contentType)
	assert.Equal(t, 401, w.Code)

	// The admin role succeeds regardless of ownership
	body, contentType = MultipartBody(t, [][2]string{{"title", "Moderated"}}, "", nil)
	w = DoMultipart(router, "PUT", "/api/v1/recipes/"+id, adminToken, body, contentType)
	require.Equal(t, 200, w.Code, w.Body.String())
	resp := decodeJSON(t, w)
	assert.Equal(t, "Moderated", resp["title"])
}

func TestUpdateRecipeImageReplacement(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, token := CreateTestUser(t, deps, models.RoleUser)

	oldURL := "https://bucket.s3.amazonaws.com/recipe-images/old.jpg"
	newURL := "https://bucket.s3.amazonaws.com/recipe-images/new.jpg"

	deps.Media.On("Upload", mock.Anything, mock.Anything).Return(oldURL, nil).Once()
	body, contentType := MultipartBody(t, [][2]string{
		{"title", "Pasta"},
		{"instructions", "Boil."},
		{"category", "Dinner"},
		{"ingredients", "pasta"},
	}, "old.jpg", []byte("old"))
	w := DoMultipart(router, "POST", "/api/v1/recipes", token, body, contentType)
	require.Equal(t, 201, w.Code, w.Body.String())
	id := decodeJSON(t, w)["id"].(string)

	// Replacing stages the new upload, then garbage-collects the old asset
	deps.Media.On("Upload", mock.Anything, mock.Anything).Return(newURL, nil).Once()
	deps.Media.On("Delete", mock.Anything, oldURL).Return(nil).Once()

	body, contentType = MultipartBody(t, nil, "new.jpg", []byte("new"))
	w = DoMultipart(router, "PUT", "/api/v1/recipes/"+id, token, body, contentType)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, newURL, decodeJSON(t, w)["image_url"])
	deps.Media.AssertExpectations(t)
}

func TestUpdateRecipeClearImage(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, token := CreateTestUser(t, deps, models.RoleUser)

	url := "https://bucket.s3.amazonaws.com/recipe-images/a.jpg"
	deps.Media.On("Upload", mock.Anything, mock.Anything).Return(url, nil).Once()

	body, contentType := MultipartBody(t, [][2]string{
		{"title", "Pasta"},
		{"instructions", "Boil."},
		{"category", "Dinner"},
		{"ingredients", "pasta"},
	}, "a.jpg", []byte("img"))
	w := DoMultipart(router, "POST", "/api/v1/recipes", token, body, contentType)
	require.Equal(t, 201, w.Code, w.Body.String())
	id := decodeJSON(t, w)["id"].(string)

	deps.Media.On("Delete", mock.Anything, url).Return(nil).Once()

	body, contentType = MultipartBody(t, [][2]string{{"clearImage", "true"}}, "", nil)
	w = DoMultipart(router, "PUT", "/api/v1/recipes/"+id, token, body, contentType)
	require.Equal(t, 200, w.Code, w.Body.String())

	resp := decodeJSON(t, w)
	_, hasImage := resp["image_url"]
	assert.False(t, hasImage, "cleared image should be omitted from the response")
	deps.Media.AssertExpectations(t)
}

func TestDeleteRecipe(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, ownerToken := CreateTestUser(t, deps, models.RoleUser)
	_, otherToken := CreateTestUser(t, deps, models.RoleUser)

	created := simpleRecipe(t, router, deps, ownerToken, "Pasta")
	id := created["id"].(string)

	w := DoRequest(router, "DELETE", "/api/v1/recipes/"+id, otherToken)
	assert.Equal(t, 401, w.Code)

	w = DoRequest(router, "DELETE", "/api/v1/recipes/"+id, ownerToken)
	require.Equal(t, 200, w.Code, w.Body.String())

	// Repeated delete reports not-found, not success
	w = DoRequest(router, "DELETE", "/api/v1/recipes/"+id, ownerToken)
	assert.Equal(t, 404, w.Code)

	w = DoRequest(router, "GET", "/api/v1/recipes/"+id, "")
	assert.Equal(t, 404, w.Code)
}

func TestDeleteRecipeMediaFailureIsSwallowed(t *testing.T) {
	router, deps := SetupTestRouter(t)
	_, token := CreateTestUser(t, deps, models.RoleUser)

	url := "https://bucket.s3.amazonaws.com/recipe-images/a.jpg"
	deps.Media.On("Upload", mock.Anything, mock.Anything).Return(url, nil).Once()

	body, contentType := MultipartBody(t, [][2]string{
		{"title", "Pasta"},
		{"instructions", "Boil."},
		{"category", "Dinner"},
		{"ingredients", "pasta"},
	}, "a.jpg", []byte("img"))
	w := DoMultipart(router, "POST", "/api/v1/recipes", token, body, contentType)
	require.Equal(t, 201, w.Code)
	id := decodeJSON(t, w)["id"].(string)

	deps.Media.On("Delete", mock.Anything, url).Return(assert.AnError).Once()

	w = DoRequest(router, "DELETE", "/api/v1/recipes/"+id, token)
	assert.Equal(t, 200, w.Code, "media delete failure must not block the delete")
	deps.Media.AssertExpectations(t)
}

func simpleRecipe(t *testing.T, router *gin.Engine, deps *TestDeps, token, title string) map[string]interface{} {
	return simpleRecipeWithCategory(t, router, deps, token, title, "Dinner")
}

func simpleRecipeWithCategory(t *testing.T, router *gin.Engine, deps *TestDeps, token, title, category string) map[string]interface{} {
	t.Helper()
	body, contentType := MultipartBody(t, [][2]string{
		{"title", title},
		{"instructions", "Cook it."},
		{"category", category},
		{"ingredients", `["something","something else"]`},
	}, "", nil)
	w := DoMultipart(router, "POST", "/api/v1/recipes", token, body, contentType)
	require.Equal(t, 201, w.Code, w.Body.String())
	return decodeJSON(t, w)
}

func createWithIngredients(t *testing.T, router *gin.Engine, deps *TestDeps, token, title string, ingredients []string) map[string]interface{} {
	t.Helper()
	encoded, err := json.Marshal(ingredients)
	require.NoError(t, err)
	body, contentType := MultipartBody(t, [][2]string{
		{"title", title},
		{"instructions", "Cook it."},
		{"category", "Dinner"},
		{"ingredients", string(encoded)},
	}, "", nil)
	w := DoMultipart(router, "POST", "/api/v1/recipes", token, body, contentType)
	require.Equal(t, 201, w.Code, w.Body.String())
	return decodeJSON(t, w)
}
