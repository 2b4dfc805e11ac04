package finalize

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	idmerr "github.com/tendant/invite-idm/pkg/errors"
	"github.com/tendant/invite-idm/pkg/utils"
)

// Handler handles HTTP requests for credential finalization
type Handler struct {
	finalizeService *FinalizeService
}

// NewHandler creates a new finalize handler
func NewHandler(finalizeService *FinalizeService) *Handler {
	return &Handler{finalizeService: finalizeService}
}

// RegisterRoutes registers the finalization routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/change-password", h.ChangePassword)
	r.Post("/confirm-sso", h.ConfirmSSO)
}

// ChangePasswordRequest is the body for the change-password endpoint
type ChangePasswordRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ConfirmSSORequest is the body for the confirm-sso endpoint
type ConfirmSSORequest struct {
	Email string `json:"email"`
}

// ChangePassword replaces the caller's password. On a first connection
// this finalizes the account.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		utils.RespondError(w, r, idmerr.New(idmerr.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	if err := h.finalizeService.FinalizePassword(r.Context(), req.Email, req.CurrentPassword, req.NewPassword); err != nil {
		slog.Info("Password change failed", "email", utils.MaskEmail(req.Email), "code", idmerr.GetCode(err))
		utils.RespondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{"success": true})
}

// ConfirmSSO finalizes an SSO-backed account. Idempotent.
func (h *Handler) ConfirmSSO(w http.ResponseWriter, r *http.Request) {
	var req ConfirmSSORequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		utils.RespondError(w, r, idmerr.New(idmerr.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	if err := h.finalizeService.FinalizeSSO(r.Context(), req.Email); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{"success": true})
}
