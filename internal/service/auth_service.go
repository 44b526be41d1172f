package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/egannguyen/go-food-delivery/internal/entity"
	"github.com/egannguyen/go-food-delivery/internal/metrics"
	"github.com/egannguyen/go-food-delivery/internal/repository"
)

// HashPassword returns the bcrypt hash of password at cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// AuthService checks (email, password, role) credentials.
type AuthService struct {
	users   repository.UserRepository
	metrics *metrics.Metrics
	logger  *zap.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(users repository.UserRepository, m *metrics.Metrics, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:   users,
		metrics: m,
		logger:  logger.Named("auth"),
	}
}

// Authenticate returns the user whose email, password and role all match.
// Every mismatch yields the same *entity.AuthError.
func (s *AuthService) Authenticate(ctx context.Context, email, password string, role entity.Role) (entity.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, entity.ErrNotFound) {
			return entity.User{}, err
		}
		// Unknown emails pay for a comparison too.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return entity.User{}, s.reject(role)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return entity.User{}, s.reject(role)
	}
	if user.Role != role {
		return entity.User{}, s.reject(role)
	}

	s.logger.Info("user logged in", zap.Int("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

func (s *AuthService) reject(role entity.Role) error {
	if !role.Valid() {
		role = "unknown"
	}
	s.metrics.LoginFailed(role)
	s.logger.Debug("login rejected", zap.String("role", string(role)))
	return &entity.AuthError{}
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	return s.dummyHash
}
