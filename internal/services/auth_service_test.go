package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/crediplus/crediplus-api/internal/config"
	"github.com/crediplus/crediplus-api/internal/models"
	"github.com/crediplus/crediplus-api/internal/repository"
)

type mockUserRepo struct {
	repository.UserRepository
	mockFindByEmail func(ctx context.Context, email string) (*models.User, error)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.mockFindByEmail != nil {
		return m.mockFindByEmail(ctx, email)
	}
	return nil, errors.New("not found")
}

func testAuthConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 24}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	service := NewAuthService(&mockUserRepo{}, testAuthConfig())

	_, err := service.Login(context.Background(), "inconnu@crediplus.app", "password")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	mockRepo := &mockUserRepo{}
	service := NewAuthService(mockRepo, testAuthConfig())

	mockRepo.mockFindByEmail = func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{ID: 1, Email: email, Status: "suspended"}, nil
	}

	_, err := service.Login(context.Background(), "agent@crediplus.app", "password")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	hash, err := HashPassword("le-bon-mot-de-passe")
	assert.NoError(t, err)

	mockRepo := &mockUserRepo{}
	service := NewAuthService(mockRepo, testAuthConfig())
	mockRepo.mockFindByEmail = func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{ID: 1, Email: email, Status: models.StatusActive, EncryptedPassword: hash}, nil
	}

	_, err = service.Login(context.Background(), "agent@crediplus.app", "mauvais")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestAuthService_Login_Success(t *testing.T) {
	hash, err := HashPassword("le-bon-mot-de-passe")
	assert.NoError(t, err)

	mockRepo := &mockUserRepo{}
	service := NewAuthService(mockRepo, testAuthConfig())
	mockRepo.mockFindByEmail = func(ctx context.Context, email string) (*models.User, error) {
		return &models.User{
			ID:                7,
			Email:             email,
			FullName:          "Alice Agent",
			Role:              models.RoleAgent,
			Status:            models.StatusActive,
			EncryptedPassword: hash,
		}, nil
	}

	result, err := service.Login(context.Background(), "agent@crediplus.app", "le-bon-mot-de-passe")
	assert.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "agent@crediplus.app", result.User.Email)

	// The token must carry the identity claims and verify with the secret
	token, err := jwt.Parse(result.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(7), claims["user_id"])
	assert.Equal(t, models.RoleAgent, claims["role"])
	assert.Equal(t, "Alice Agent", claims["full_name"])
}
