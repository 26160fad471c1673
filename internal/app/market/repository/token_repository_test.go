package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// TokenRepositoryTestSuite тестовый suite для Redis repository
type TokenRepositoryTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	repo      TokenRepository
}

func TestTokenRepositorySuite(t *testing.T) {
	suite.Run(t, new(TokenRepositoryTestSuite))
}

func (s *TokenRepositoryTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{
		Addr: s.miniRedis.Addr(),
	})

	s.repo = NewRedisTokenRepository(s.client)
}

func (s *TokenRepositoryTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *TokenRepositoryTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func (s *TokenRepositoryTestSuite) TestSaveAndGet() {
	ctx := context.Background()
	userID := uuid.New()

	err := s.repo.SaveRefreshToken(ctx, userID, "token-1", time.Now().Add(time.Hour))
	s.NoError(err)

	stored, err := s.repo.GetRefreshToken(ctx, "token-1")
	s.NoError(err)
	s.Equal(userID, stored.UserID)
	s.Equal("token-1", stored.Token)
}

func (s *TokenRepositoryTestSuite) TestSave_AlreadyExpired() {
	ctx := context.Background()

	err := s.repo.SaveRefreshToken(ctx, uuid.New(), "token-1", time.Now().Add(-time.Minute))
	s.Error(err)
}

func (s *TokenRepositoryTestSuite) TestGet_NotFound() {
	ctx := context.Background()

	stored, err := s.repo.GetRefreshToken(ctx, "ghost")
	s.ErrorIs(err, ErrTokenNotFound)
	s.Nil(stored)
}

func (s *TokenRepositoryTestSuite) TestGet_AfterTTLExpiry() {
	ctx := context.Background()
	userID := uuid.New()

	err := s.repo.SaveRefreshToken(ctx, userID, "token-1", time.Now().Add(time.Second))
	s.NoError(err)

	// miniredis двигает время вручную
	s.miniRedis.FastForward(2 * time.Second)

	_, err = s.repo.GetRefreshToken(ctx, "token-1")
	s.ErrorIs(err, ErrTokenNotFound)
}

func (s *TokenRepositoryTestSuite) TestDelete() {
	ctx := context.Background()
	userID := uuid.New()

	err := s.repo.SaveRefreshToken(ctx, userID, "token-1", time.Now().Add(time.Hour))
	s.NoError(err)

	err = s.repo.DeleteRefreshToken(ctx, "token-1")
	s.NoError(err)

	_, err = s.repo.GetRefreshToken(ctx, "token-1")
	s.ErrorIs(err, ErrTokenNotFound)
}

func (s *TokenRepositoryTestSuite) TestDeleteAllUserTokens() {
	ctx := context.Background()
	userID := uuid.New()
	otherID := uuid.New()

	s.NoError(s.repo.SaveRefreshToken(ctx, userID, "token-1", time.Now().Add(time.Hour)))
	s.NoError(s.repo.SaveRefreshToken(ctx, userID, "token-2", time.Now().Add(time.Hour)))
	s.NoError(s.repo.SaveRefreshToken(ctx, otherID, "token-3", time.Now().Add(time.Hour)))

	err := s.repo.DeleteAllUserTokens(ctx, userID)
	s.NoError(err)

	_, err = s.repo.GetRefreshToken(ctx, "token-1")
	s.ErrorIs(err, ErrTokenNotFound)
	_, err = s.repo.GetRefreshToken(ctx, "token-2")
	s.ErrorIs(err, ErrTokenNotFound)

	// Токены других пользователей не затрагиваются
	stored, err := s.repo.GetRefreshToken(ctx, "token-3")
	s.NoError(err)
	s.Equal(otherID, stored.UserID)
}
