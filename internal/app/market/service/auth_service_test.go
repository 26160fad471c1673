package service

import (
	"context"
	"testing"
	"time"

	"greenbasket/internal/app/market/entity"
	"greenbasket/internal/app/market/repository"
	"greenbasket/internal/app/market/repository/mocks"
	"greenbasket/internal/app/market/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestJWTManager() *util.JWTManager {
	return util.NewJWTManager("test-secret", 15*time.Minute, 720*time.Hour)
}

func TestRegister_Success(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := NewAuthService(userRepo, tokenRepo, newTestJWTManager())

	ctx := context.Background()

	userRepo.On("GetByUsername", ctx, "ivan").Return(nil, repository.ErrUserNotFound)
	userRepo.On("GetByEmail", ctx, "ivan@example.com").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	tokenRepo.On("SaveRefreshToken", ctx, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	req := &entity.RegisterRequest{
		Username: "ivan",
		Email:    "ivan@example.com",
		Password: "secret123",
	}

	// Act
	resp, err := service.Register(ctx, req)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "ivan", resp.User.Username)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.NotEqual(t, req.Password, resp.User.PasswordHash)
	userRepo.AssertExpectations(t)
}

func TestRegister_UsernameTaken(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := NewAuthService(userRepo, tokenRepo, newTestJWTManager())

	ctx := context.Background()

	userRepo.On("GetByUsername", ctx, "ivan").
		Return(&entity.User{ID: uuid.New(), Username: "ivan"}, nil)

	// Act
	_, err := service.Register(ctx, &entity.RegisterRequest{
		Username: "ivan",
		Email:    "other@example.com",
		Password: "secret123",
	})

	// Assert
	assert.ErrorIs(t, err, ErrUsernameTaken)
	userRepo.AssertNotCalled(t, "Create")
}

func TestRegister_EmailTaken(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := NewAuthService(userRepo, tokenRepo, newTestJWTManager())

	ctx := context.Background()

	userRepo.On("GetByUsername", ctx, "petr").Return(nil, repository.ErrUserNotFound)
	userRepo.On("GetByEmail", ctx, "ivan@example.com").
		Return(&entity.User{ID: uuid.New(), Email: "ivan@example.com"}, nil)

	// Act
	_, err := service.Register(ctx, &entity.RegisterRequest{
		Username: "petr",
		Email:    "ivan@example.com",
		Password: "secret123",
	})

	// Assert
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_Success(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := NewAuthService(userRepo, tokenRepo, newTestJWTManager())

	ctx := context.Background()
	hash, _ := util.HashPassword("secret123")

	userRepo.On("GetByEmail", ctx, "ivan@example.com").Return(&entity.User{
		ID:           uuid.New(),
		Username:     "ivan",
		Email:        "ivan@example.com",
		PasswordHash: hash,
	}, nil)
	tokenRepo.On("SaveRefreshToken", ctx, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	// Act
	resp, err := service.Login(ctx, &entity.LoginRequest{
		Email:    "ivan@example.com",
		Password: "secret123",
	})

	// Assert
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := NewAuthService(userRepo, tokenRepo, newTestJWTManager())

	ctx := context.Background()
	hash, _ := util.HashPassword("secret123")

	userRepo.On("GetByEmail", ctx, "ivan@example.com").Return(&entity.User{
		ID:           uuid.New(),
		Email:        "ivan@example.com",
		PasswordHash: hash,
	}, nil)

	// Act
	_, err := service.Login(ctx, &entity.LoginRequest{
		Email:    "ivan@example.com",
		Password: "wrong",
	})

	// Assert
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := NewAuthService(userRepo, tokenRepo, newTestJWTManager())

	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	// Act
	_, err := service.Login(ctx, &entity.LoginRequest{
		Email:    "ghost@example.com",
		Password: "secret123",
	})

	// Assert
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshTokens_RotatesToken(t *testing.T) {
	// Использованный refresh токен удаляется перед выпуском нового
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := NewAuthService(userRepo, tokenRepo, newTestJWTManager())

	ctx := context.Background()
	userID := uuid.New()

	tokenRepo.On("GetRefreshToken", ctx, "old-token").Return(&entity.RefreshToken{
		UserID: userID,
		Token:  "old-token",
	}, nil)
	tokenRepo.On("DeleteRefreshToken", ctx, "old-token").Return(nil)
	userRepo.On("GetByID", ctx, userID).Return(&entity.User{
		ID:       userID,
		Username: "ivan",
		Email:    "ivan@example.com",
	}, nil)
	tokenRepo.On("SaveRefreshToken", ctx, userID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	// Act
	tokens, err := service.RefreshTokens(ctx, "old-token")

	// Assert
	assert.NoError(t, err)
	assert.NotEqual(t, "old-token", tokens.RefreshToken)
	tokenRepo.AssertExpectations(t)
}

func TestRefreshTokens_InvalidToken(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := NewAuthService(userRepo, tokenRepo, newTestJWTManager())

	ctx := context.Background()

	tokenRepo.On("GetRefreshToken", ctx, "bogus").Return(nil, repository.ErrTokenNotFound)

	// Act
	_, err := service.RefreshTokens(ctx, "bogus")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogout_DeletesAllTokens(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	tokenRepo := new(mocks.MockTokenRepository)
	service := NewAuthService(userRepo, tokenRepo, newTestJWTManager())

	ctx := context.Background()
	userID := uuid.New()

	tokenRepo.On("DeleteAllUserTokens", ctx, userID).Return(nil)

	// Act
	err := service.Logout(ctx, userID)

	// Assert
	assert.NoError(t, err)
	tokenRepo.AssertExpectations(t)
}
