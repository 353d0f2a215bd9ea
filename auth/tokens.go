package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SirPedr/homero/config"
)

// tokenTypeRefresh marks refresh tokens so an access token can never be
// replayed as a refresh token or vice versa.
const tokenTypeRefresh = "refresh"

var (
	// ErrTokenExpired is returned when a token's expiration has passed.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenSignatureInvalid is returned when a token was not signed
	// with the expected secret.
	ErrTokenSignatureInvalid = errors.New("invalid token signature")
	// ErrTokenInvalid covers every other verification failure (malformed
	// token, wrong type marker, wrong algorithm).
	ErrTokenInvalid = errors.New("invalid token")
)

// AccessClaims is the access token payload: the full user identity plus
// the registered issued-at and expiration claims.
type AccessClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RefreshClaims is the refresh token payload. It carries the user identity
// only, plus the refresh type marker.
type RefreshClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenIssuer produces and verifies signed, time-bounded tokens. Access
// and refresh tokens are signed with distinct secrets.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenIssuer creates a TokenIssuer from the auth configuration.
func NewTokenIssuer(cfg *config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTokenDuration,
		refreshTTL:    cfg.RefreshTokenDuration,
		now:           time.Now,
	}
}

// IssueAccessToken signs an HS256 access token for the given user.
func (t *TokenIssuer) IssueAccessToken(user *User) (string, error) {
	now := t.now()
	claims := &AccessClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// IssueRefreshToken signs an HS256 refresh token carrying only the user
// identity and the refresh type marker, under the refresh secret.
func (t *TokenIssuer) IssueRefreshToken(userID string) (string, error) {
	now := t.now()
	claims := &RefreshClaims{
		UserID:    userID,
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.refreshTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, nil
}

// VerifyAccessToken parses and verifies an access token, returning its
// claims. Expired tokens yield ErrTokenExpired and wrong-secret tokens
// yield ErrTokenSignatureInvalid.
func (t *TokenIssuer) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := t.parse(tokenString, claims, t.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken parses and verifies a refresh token, additionally
// checking the refresh type marker.
func (t *TokenIssuer) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := t.parse(tokenString, claims, t.refreshSecret); err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, fmt.Errorf("%w: missing refresh marker", ErrTokenInvalid)
	}
	return claims, nil
}

func (t *TokenIssuer) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignatureInvalid
	case err != nil:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	case !token.Valid:
		return ErrTokenInvalid
	}
	return nil
}
