package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SirPedr/homero/apperror"
	"github.com/SirPedr/homero/password"
)

// invalidCredentialsMessage is returned for both unknown-username and
// wrong-password logins. The two causes must stay indistinguishable to
// the client so account existence cannot be probed.
const invalidCredentialsMessage = "Invalid username or password"

// Service implements the registration and login flows over an injected
// store, hasher and token issuer.
type Service struct {
	store     UserStore
	hasher    *password.Hasher
	tokens    *TokenIssuer
	validator *Validator
	logger    *slog.Logger
}

// NewService creates a Service with its dependencies.
func NewService(store UserStore, hasher *password.Hasher, tokens *TokenIssuer, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		validator: NewValidator(),
		logger:    logger,
	}
}

// Register validates the payload, hashes the password, and inserts the
// user. A username or email collision yields a 409 conflict; the plaintext
// password never reaches the store.
func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	if err := s.validator.ValidateRegister(&req); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return apperror.NewInternalError("failed to hash password", err)
	}

	_, err = s.store.CreateUser(ctx, NewUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return apperror.NewConflictError("User already exists", nil)
		}
		s.logger.ErrorContext(ctx, "failed to create user", "error", err)
		return apperror.NewDatabaseError("failed to create user", err)
	}

	s.logger.InfoContext(ctx, "user registered", "username", req.Username)
	return nil
}

// LoginResult carries the authenticated identity and the freshly issued
// token pair back to the handler, which is responsible for attaching them
// as cookies.
type LoginResult struct {
	User         UserPayload
	AccessToken  string
	RefreshToken string
}

// Login authenticates a user and issues a token pair. The hashed refresh
// token is persisted before the result is returned, so a caller holding a
// LoginResult knows the hash is durable.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := s.validator.ValidateLogin(&req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperror.NewAuthError(invalidCredentialsMessage, nil)
		}
		s.logger.ErrorContext(ctx, "failed to look up user", "error", err)
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, apperror.NewInternalError("failed to verify password", err)
	}
	if !match {
		return nil, apperror.NewAuthError(invalidCredentialsMessage, nil)
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue access token", err)
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue refresh token", err)
	}

	refreshTokenHash, err := s.hasher.Hash(refreshToken)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash refresh token", err)
	}
	if err := s.store.UpdateRefreshTokenHash(ctx, user.ID, refreshTokenHash); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist refresh token hash", "error", err)
		return nil, apperror.NewDatabaseError("failed to persist refresh token", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "username", user.Username)
	return &LoginResult{
		User: UserPayload{
			UserID:   user.ID,
			Email:    user.Email,
			Username: user.Username,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
