package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"greenbasket/internal/app/market/entity"
	"greenbasket/internal/app/market/repository"
	"greenbasket/internal/app/market/repository/mocks"
	"greenbasket/internal/app/market/service"
	"greenbasket/internal/app/market/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAuthHandler() (*AuthHandler, *mocks.MockUserRepository, *mocks.MockTokenRepository) {
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	jwtManager := util.NewJWTManager("test-secret", 15*time.Minute, 720*time.Hour)

	authSvc := service.NewAuthService(userRepo, tokenRepo, jwtManager)
	return NewAuthHandler(authSvc), userRepo, tokenRepo
}

func setupTestRouter(method, path string, handlerFunc gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Handle(method, path, handlerFunc)
	return router
}

func TestAuthHandler_Register_Success(t *testing.T) {
	// Arrange
	handler, userRepo, tokenRepo := newTestAuthHandler()

	userRepo.On("GetByUsername", mock.Anything, "ivan").Return(nil, repository.ErrUserNotFound)
	userRepo.On("GetByEmail", mock.Anything, "ivan@example.com").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)
	tokenRepo.On("SaveRefreshToken", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	body, _ := json.Marshal(entity.RegisterRequest{
		Username: "ivan",
		Email:    "ivan@example.com",
		Password: "secret123",
	})

	router := setupTestRouter(http.MethodPost, "/api/auth/register", handler.Register)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp entity.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ivan", resp.User.Username)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
}

func TestAuthHandler_Register_UsernameConflict(t *testing.T) {
	// Arrange
	handler, userRepo, _ := newTestAuthHandler()

	userRepo.On("GetByUsername", mock.Anything, "ivan").
		Return(&entity.User{ID: uuid.New(), Username: "ivan"}, nil)

	body, _ := json.Marshal(entity.RegisterRequest{
		Username: "ivan",
		Email:    "new@example.com",
		Password: "secret123",
	})

	router := setupTestRouter(http.MethodPost, "/api/auth/register", handler.Register)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandler_Register_InvalidEmail(t *testing.T) {
	// Arrange
	handler, userRepo, _ := newTestAuthHandler()

	router := setupTestRouter(http.MethodPost, "/api/auth/register", handler.Register)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		bytes.NewBufferString(`{"username":"ivan","email":"not-an-email","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	userRepo.AssertNotCalled(t, "Create")
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	// Arrange
	handler, userRepo, _ := newTestAuthHandler()
	hash, _ := util.HashPassword("secret123")

	userRepo.On("GetByEmail", mock.Anything, "ivan@example.com").Return(&entity.User{
		ID:           uuid.New(),
		Email:        "ivan@example.com",
		PasswordHash: hash,
	}, nil)

	body, _ := json.Marshal(entity.LoginRequest{
		Email:    "ivan@example.com",
		Password: "wrong-password",
	})

	router := setupTestRouter(http.MethodPost, "/api/auth/login", handler.Login)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Refresh_InvalidToken(t *testing.T) {
	// Arrange
	handler, _, tokenRepo := newTestAuthHandler()

	tokenRepo.On("GetRefreshToken", mock.Anything, "bogus").
		Return(nil, repository.ErrTokenNotFound)

	router := setupTestRouter(http.MethodPost, "/api/auth/refresh", handler.Refresh)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh",
		bytes.NewBufferString(`{"refresh_token":"bogus"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	// Act
	router.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
