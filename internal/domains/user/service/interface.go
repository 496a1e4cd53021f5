package service

import (
	"context"

	"pos-backend/internal/domains/user/model"
)

type Service interface {
	// Login checks the password and issues an access token. Repeated
	// failures for the same identifier are throttled.
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)

	GetProfile(ctx context.Context, userID int64) (*model.AuthUser, error)

	// CreateUser hashes the password and stores a new operator.
	CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
}
