package auth

import (
	"encoding/json"
	"net/http"

	"github.com/SirPedr/homero/apperror"
)

// Cookie names and lifetimes. The max-ages mirror the token TTLs: 15
// minutes for access tokens, 7 days for refresh tokens.
const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"

	accessTokenMaxAge  = 15 * 60
	refreshTokenMaxAge = 7 * 24 * 60 * 60
)

// Handlers wraps the auth Service with HTTP handling.
type Handlers struct {
	service *Service
	// secureCookies marks auth cookies Secure; enabled in production.
	secureCookies bool
}

// NewHandlers creates a Handlers instance.
func NewHandlers(service *Service, secureCookies bool) *Handlers {
	return &Handlers{service: service, secureCookies: secureCookies}
}

// HandleRegister handles POST /register. Success is a bare 200; a
// duplicate username or email is a 409 with "User already exists".
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewValidationError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := h.service.Register(r.Context(), req); err != nil {
			WriteError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// HandleLogin handles POST /login. On success it attaches the access and
// refresh tokens as strict, http-only cookies and returns the user
// payload. The cookies are only set once the service has durably stored
// the refresh token hash.
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewValidationError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		result, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		h.setAuthCookie(w, accessTokenCookie, result.AccessToken, accessTokenMaxAge)
		h.setAuthCookie(w, refreshTokenCookie, result.RefreshToken, refreshTokenMaxAge)

		WriteJSON(w, http.StatusOK, LoginResponse{User: result.User})
	}
}

func (h *Handlers) setAuthCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// WriteJSON serializes data to the response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError writes a standardized error response. Errors that are not
// *apperror.AppError values are wrapped as internal errors so their
// detail never reaches the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
