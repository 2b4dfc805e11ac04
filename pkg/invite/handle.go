package invite

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

// Handler handles HTTP requests for invitation queries
type Handler struct {
	inviteService *InviteService
}

// NewHandler creates a new invite handler
func NewHandler(inviteService *InviteService) *Handler {
	return &Handler{inviteService: inviteService}
}

// RegisterRoutes registers the invitation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/check-invitation", h.CheckInvitation)
	r.Post("/list-invitations", h.ListInvitations)
}

// CheckInvitationRequest is the body for the check-invitation endpoint
type CheckInvitationRequest struct {
	Email string `json:"email"`
}

// ListInvitationsRequest is the body for the list-invitations endpoint
type ListInvitationsRequest struct {
	AdminID   string `json:"adminId"`
	CompanyID int32  `json:"companyId"`
}

// CheckInvitation handles the pre-login invitation check.
// Always answers 200; an invalid outcome carries a message only.
func (h *Handler) CheckInvitation(w http.ResponseWriter, r *http.Request) {
	var req CheckInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		utils.RespondError(w, r, idmerr.New(idmerr.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	if req.Email == "" {
		utils.RespondError(w, r, idmerr.New(idmerr.ErrCodeMissingRequired, "email is required"))
		return
	}

	result, err := h.inviteService.CheckInvitation(r.Context(), req.Email)
	if err != nil {
		slog.Error("Failed to check invitation", "email", req.Email, "err", err)
		utils.RespondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}

// ListInvitations handles the admin invitation listing
func (h *Handler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	var req ListInvitationsRequest
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

	invitations, err := h.inviteService.ListInvitations(r.Context(), adminID, req.CompanyID)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{
		"success":     true,
		"invitations": invitations,
	})
}
