package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"wescape-backend/internal/apierr"
	"wescape-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// IdentityGateway is the identity-provider surface the auth handler needs.
type IdentityGateway interface {
	Register(ctx context.Context, email, password, fullName string) (*models.Token, error)
	Login(ctx context.Context, email, password string) (*models.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Token, error)
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	gateway IdentityGateway
	debug   bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(gateway IdentityGateway, debug bool) *AuthHandler {
	return &AuthHandler{gateway: gateway, debug: debug}
}

// RegisterRequest is the body for POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// LoginRequest is the body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body for POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apierr.BadRequest("Invalid request body"), h.debug)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, apierr.BadRequest("email and password are required"), h.debug)
		return
	}

	token, err := h.gateway.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Registration failed")
		respondError(w, err, h.debug)
		return
	}

	// No session yet: the provider wants the email confirmed first. Still a
	// success from the client's point of view.
	if token.TokenType == models.TokenTypePendingConfirmation {
		respondSuccess(w, "Registration successful! Please check your email to confirm your account before logging in.", token)
		return
	}

	log.Info().Str("email", req.Email).Msg("User registered")
	respondSuccess(w, "User registered and logged in successfully", token)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apierr.BadRequest("Invalid request body"), h.debug)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, apierr.BadRequest("email and password are required"), h.debug)
		return
	}

	token, err := h.gateway.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn().Str("email", req.Email).Msg("Login failed")
		respondError(w, err, h.debug)
		return
	}

	respondSuccess(w, "Login successful", token)
}

// Refresh handles POST /auth/refresh. The refresh token may arrive in the
// body or as a query parameter.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if r.Body != nil {
		// Body is optional; decode errors fall through to the query param.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.RefreshToken == "" {
		req.RefreshToken = r.URL.Query().Get("refresh_token")
	}
	if req.RefreshToken == "" {
		respondError(w, apierr.BadRequest("refresh_token is required"), h.debug)
		return
	}

	token, err := h.gateway.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, err, h.debug)
		return
	}

	respondSuccess(w, "Token refreshed successfully", token)
}

// Logout handles POST /auth/logout. Sessions live client-side; this is a
// no-op acknowledgement.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, "Logout successful", nil)
}
