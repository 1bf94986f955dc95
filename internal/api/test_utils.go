package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tastebase/backend/internal/database"
	"github.com/tastebase/backend/internal/middleware"
	"github.com/tastebase/backend/internal/models"
	"github.com/tastebase/backend/internal/service"
)

// MockMediaService is a testify mock for the media store
type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

func (m *MockMediaService) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// TestDeps holds the database and services backing a test router
type TestDeps struct {
	DB          *gorm.DB
	AuthService *service.AuthService
	Media       *MockMediaService
}

// SetupTestDB creates an in-memory database with the schema applied
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// SetupTestRouter builds a router wired to an in-memory database and a mock
// media store.
func SetupTestRouter(t *testing.T) (*gin.Engine, *TestDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := SetupTestDB(t)
	authService := service.NewAuthService(db, "test-secret", nil)
	recipeService := service.NewRecipeService(db)
	media := &MockMediaService{}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(nil))

	v1 := router.Group("/api/v1")
	NewAuthHandler(authService).RegisterRoutes(v1)
	NewRecipeHandler(recipeService, authService, media).RegisterRoutes(v1)
	NewHealthHandler(db).RegisterRoutes(router)

	return router, &TestDeps{
		DB:          db,
		AuthService: authService,
		Media:       media,
	}
}

// CreateTestUser creates an account with the given role and returns it with
// a valid bearer token.
func CreateTestUser(t *testing.T, deps *TestDeps, role string) (*models.User, string) {
	t.Helper()

	suffix := fmt.Sprintf("%d", userCounter())
	hash, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		Username:     "testuser_" + suffix,
		Email:        fmt.Sprintf("testuser+%s@example.com", suffix),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := deps.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	// Login issues the token the same way production does
	_, token, err := deps.AuthService.Login(context.Background(), user.Email, "testpassword123")
	if err != nil {
		t.Fatalf("failed to log in test user: %v", err)
	}
	return &user, token
}

var userSeq int

func userCounter() int {
	userSeq++
	return userSeq
}

// MultipartBody builds a multipart form body from ordered key/value pairs,
// with an optional image file attached.
func MultipartBody(t *testing.T, fields [][2]string, imageName string, imageData []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, kv := range fields {
		if err := writer.WriteField(kv[0], kv[1]); err != nil {
			t.Fatalf("failed to write form field %s: %v", kv[0], err)
		}
	}
	if imageName != "" {
		part, err := writer.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(imageData); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// DoMultipart performs a multipart request with an optional bearer token
func DoMultipart(router *gin.Engine, method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// DoRequest performs a request with an optional bearer token and no body
func DoRequest(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
