package transport

import (
	"errors"
	"net/http"

	"swaply/internal/middleware"
	"swaply/internal/service"
	"swaply/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GoogleLoginRequest carries the raw sign-in credential from the Google
// widget.
type GoogleLoginRequest struct {
	Credential string `json:"credential" validate:"required"`
}

// LoginResponse is the success payload for /api/google-login.
type LoginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    UserPayload `json:"user"`
}

// UserPayload is the identity shape exposed to the frontend.
type UserPayload struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// AuthHandler handles sign-in, identity lookup and logout.
type AuthHandler struct {
	auth           *service.AuthService
	sessions       *session.Manager
	logger         *zap.Logger
	googleClientID string
}

// NewAuthHandler creates an AuthHandler. googleClientID is handed to the
// frontend for rendering the Google sign-in widget.
func NewAuthHandler(auth *service.AuthService, sessions *session.Manager, logger *zap.Logger, googleClientID string) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, logger: logger, googleClientID: googleClientID}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/config", h.ClientConfig)
	r.Post("/api/google-login", h.GoogleLogin)
	r.Get("/api/user", h.CurrentUser)
	r.Get("/api/logout", h.Logout)
	r.Post("/api/logout", h.Logout)
}

// ClientConfig returns the public settings the frontend needs.
func (h *AuthHandler) ClientConfig(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"google_client_id": h.googleClientID,
	})
}

// GoogleLogin decodes the Google credential and opens a session. An
// anonymous session's cart survives the login.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req GoogleLoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing authentication token")
		return
	}

	ident, err := h.auth.DecodeCredential(req.Credential)
	if err != nil {
		h.logger.Debug("Credential rejected", zap.Error(err))
		if errors.Is(err, service.ErrDomainNotAllowed) {
			middleware.RespondWithError(w, http.StatusForbidden, service.ErrDomainNotAllowed.Error())
			return
		}
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid authentication token")
		return
	}

	sess, err := h.sessions.Get(r.Context(), r)
	if err != nil {
		sess = &session.Session{}
	}
	sess.Identity = ident
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		h.logger.Error("Session save failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.logger.Info("User logged in",
		zap.String("email", ident.Email),
		zap.String("name", ident.Name),
	)
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Message: "Login successful!",
		User: UserPayload{
			ID:      ident.ID,
			Email:   ident.Email,
			Name:    ident.Name,
			Picture: ident.Picture,
		},
	})
}

// CurrentUser reports the session identity, or logged_in=false.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(r.Context(), r)
	if err != nil || !sess.LoggedIn() {
		middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"logged_in": false})
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"logged_in": true,
		"user": UserPayload{
			ID:      sess.Identity.ID,
			Email:   sess.Identity.Email,
			Name:    sess.Identity.Name,
			Picture: sess.Identity.Picture,
		},
	})
}

// Logout destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.logger.Error("Session destroy failed", zap.Error(err))
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out",
	})
}
