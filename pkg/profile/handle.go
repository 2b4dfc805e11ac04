package profile

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	idmerr "github.com/tendant/invite-idm/pkg/errors"
	"github.com/tendant/invite-idm/pkg/utils"
)

// Handler handles HTTP requests for profile maintenance
type Handler struct {
	profileService *ProfileService
}

// NewHandler creates a new profile handler
func NewHandler(profileService *ProfileService) *Handler {
	return &Handler{profileService: profileService}
}

// RegisterRoutes registers the profile maintenance routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/migrate-profiles", h.MigrateProfiles)
}

// MigrateProfilesRequest is the body for the migrate-profiles endpoint
type MigrateProfilesRequest struct {
	AdminID string `json:"adminId"`
}

// MigrateProfiles runs the legacy profile backfill for an administrator.
func (h *Handler) MigrateProfiles(w http.ResponseWriter, r *http.Request) {
	var req MigrateProfilesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		utils.RespondError(w, r, idmerr.New(idmerr.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	adminID, err := uuid.Parse(req.AdminID)
	if err != nil {
		utils.RespondError(w, r, idmerr.New(idmerr.ErrCodeInvalidInput, "invalid adminId"))
		return
	}

	result, err := h.profileService.MigrateProfiles(r.Context(), adminID)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}
