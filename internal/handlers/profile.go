package handlers

import (
	"encoding/json"
	"net/http"

	"wescape-backend/internal/apierr"
	"wescape-backend/internal/middleware"
	"wescape-backend/internal/models"
	"wescape-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ProfileHandler handles user-profile HTTP requests
type ProfileHandler struct {
	profileService *services.ProfileService
	debug          bool
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService, debug bool) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, debug: debug}
}

// Me handles GET /users/me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	profile, err := h.profileService.Get(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch profile")
		respondError(w, err, h.debug)
		return
	}

	respondSuccess(w, "Profile retrieved successfully", profile)
}

// UpdateMe handles PUT /users/me
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req models.UserProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apierr.BadRequest("Invalid request body"), h.debug)
		return
	}

	profile, err := h.profileService.Update(ctx, userID, &req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		respondError(w, err, h.debug)
		return
	}

	respondSuccess(w, "Profile updated successfully", profile)
}
