// Package users exposes the authenticated profile read endpoint. User
// records are write-once outside the auth flows, so this package only
// reads.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/SirPedr/homero/apperror"
	"github.com/SirPedr/homero/auth"
)

// UserReader is the lookup this package needs from the data layer.
// *auth.PostgresUserStore satisfies it.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*auth.User, error)
}

// ProfileResponse is the body of a profile read.
type ProfileResponse struct {
	UserID    string    `json:"userID"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserService provides user profile reads.
type UserService struct {
	store UserReader
}

// NewUserService creates a UserService.
func NewUserService(store UserReader) *UserService {
	return &UserService{store: store}
}

// GetProfile returns the profile for the given user identity.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*ProfileResponse, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user profile", err)
	}

	return &ProfileResponse{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}, nil
}
