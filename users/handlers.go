package users

import (
	"net/http"

	"github.com/SirPedr/homero/apperror"
	"github.com/SirPedr/homero/auth"
)

// UserHandlers wraps the UserService with HTTP handling.
type UserHandlers struct {
	service *UserService
}

// NewUserHandlers creates a UserHandlers instance.
func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

// HandleGetProfile handles GET /users/me. It requires the auth middleware
// to have placed verified claims in the request context.
func (h *UserHandlers) HandleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}

		profile, err := h.service.GetProfile(r.Context(), claims.UserID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, profile)
	}
}
