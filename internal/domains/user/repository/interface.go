package repository

import (
	"context"

	"pos-backend/internal/domains/user/model"
)

type Repository interface {
	// FindByLogin matches identifier against email or name, case-insensitive.
	// Returns model.ErrUserNotFound when nothing matches.
	FindByLogin(ctx context.Context, identifier string) (*model.User, error)

	FindByID(ctx context.Context, id int64) (*model.User, error)

	// Create sets u.ID and u.CreatedAt. A taken name or email yields
	// model.ErrUserExists.
	Create(ctx context.Context, u *model.User) error

	UpdateLastLogin(ctx context.Context, id int64) error
}
