package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"pos-backend/internal/domains/user/model"
	"pos-backend/internal/domains/user/repository"
	"pos-backend/pkg/cache"
	"pos-backend/pkg/jwt"
)

const (
	MaxFailedAttempts = 5
	AttemptWindow     = 15 * time.Minute

	failedLoginKeyPrefix = "failed_login:"
)

type userService struct {
	repo       repository.Repository
	cache      cache.Cache
	jwtManager *jwt.Manager
}

func NewUserService(repo repository.Repository, c cache.Cache, jwtManager *jwt.Manager) Service {
	return &userService{
		repo:       repo,
		cache:      c,
		jwtManager: jwtManager,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *userService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}
	identifier := req.Identifier()

	// 2. THROTTLE
	if s.tooManyAttempts(ctx, identifier) {
		return nil, model.ErrTooManyAttempts
	}

	// 3. FIND USER
	u, err := s.repo.FindByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			s.recordFailure(ctx, identifier)
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	// 4. CHECK STATUS AND PASSWORD
	if !u.IsActive {
		return nil, model.ErrUserInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailure(ctx, identifier)
		return nil, model.ErrInvalidCredentials
	}

	// 5. ISSUE TOKEN
	token, err := s.jwtManager.GenerateAccessToken(u.Subject(), string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	if err := s.cache.Delete(ctx, failedLoginKeyPrefix+identifier); err != nil {
		log.Warn().Err(err).Msg("failed to reset login attempts")
	}
	if err := s.repo.UpdateLastLogin(ctx, u.ID); err != nil {
		log.Warn().Err(err).Int64("user_id", u.ID).Msg("failed to update last login")
	}

	log.Info().Int64("user_id", u.ID).Str("role", string(u.Role)).Msg("user logged in")

	return &model.LoginResponse{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.jwtManager.TTL()),
		User:        u.ToAuthUser(),
	}, nil
}

// tooManyAttempts fails open when the cache is unavailable.
func (s *userService) tooManyAttempts(ctx context.Context, identifier string) bool {
	var attempts int64
	found, err := s.cache.Get(ctx, failedLoginKeyPrefix+identifier, &attempts)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read login attempts")
		return false
	}
	return found && attempts >= MaxFailedAttempts
}

func (s *userService) recordFailure(ctx context.Context, identifier string) {
	attempts, err := s.cache.Increment(ctx, failedLoginKeyPrefix+identifier, AttemptWindow)
	if err != nil {
		log.Warn().Err(err).Msg("failed to count login attempt")
		return
	}
	if attempts >= MaxFailedAttempts {
		log.Warn().Str("identifier", identifier).Int64("attempts", attempts).Msg("login locked after repeated failures")
	}
}

// ========================================
// PROFILE
// ========================================

func (s *userService) GetProfile(ctx context.Context, userID int64) (*model.AuthUser, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, model.ErrUserInactive
	}
	au := u.ToAuthUser()
	return &au, nil
}

// ========================================
// ADMINISTRATION
// ========================================

func (s *userService) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
