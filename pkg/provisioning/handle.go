package provisioning

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	idmerr "github.com/tendant/invite-idm/pkg/errors"
	"github.com/tendant/invite-idm/pkg/profile"
	"github.com/tendant/invite-idm/pkg/utils"
)

// Handler handles HTTP requests for invitation provisioning
type Handler struct {
	provisioningService *ProvisioningService
}

// NewHandler creates a new provisioning handler
func NewHandler(provisioningService *ProvisioningService) *Handler {
	return &Handler{provisioningService: provisioningService}
}

// RegisterRoutes registers the provisioning routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/create-invitation", h.CreateInvitation)
}

// CreateInvitationRequestBody is the body for the create-invitation endpoint
type CreateInvitationRequestBody struct {
	AdminID   string `json:"adminId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	CompanyID int32  `json:"companyId"`
	Role      string `json:"role"`
}

// InviteSummary is the invitation part of the create-invitation response
type InviteSummary struct {
	InviteID  uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	InvitedAt time.Time `json:"invited_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserSummary is the profile part of the create-invitation response
type UserSummary struct {
	UserID    uuid.UUID    `json:"id"`
	Email     string       `json:"email"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	CompanyID int32        `json:"company_id"`
	Role      profile.Role `json:"role"`
}

// CreateInvitationResponse is the 201 body of the create-invitation endpoint
type CreateInvitationResponse struct {
	Success    bool          `json:"success"`
	Invite     InviteSummary `json:"invite"`
	User       UserSummary   `json:"user"`
	AuthUserID uuid.UUID     `json:"auth_user_id"`
	Token      string        `json:"token,omitempty"`
}

// CreateInvitation provisions an identity, an invitation and a profile
// for a new user inside the requesting admin's company.
func (h *Handler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	var body CreateInvitationRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		utils.RespondError(w, r, idmerr.New(idmerr.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	adminID, err := uuid.Parse(body.AdminID)
	if err != nil {
		utils.RespondError(w, r, idmerr.New(idmerr.ErrCodeInvalidInput, "invalid adminId"))
		return
	}

	result, err := h.provisioningService.CreateInvitation(r.Context(), CreateInvitationRequest{
		RequesterID: adminID,
		Email:       body.Email,
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		CompanyID:   body.CompanyID,
		Role:        profile.ParseRole(body.Role),
	})
	if err != nil {
		slog.Error("Failed to create invitation", "email", utils.MaskEmail(body.Email), "err", err)
		utils.RespondError(w, r, err)
		return
	}

	var expiresAt time.Time
	if result.Invitation.ExpiresAt != nil {
		expiresAt = *result.Invitation.ExpiresAt
	}

	inviteSummary := InviteSummary{ExpiresAt: expiresAt}
	copier.Copy(&inviteSummary, &result.Invitation)
	userSummary := UserSummary{}
	copier.Copy(&userSummary, &result.Profile)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, CreateInvitationResponse{
		Success:    true,
		Invite:     inviteSummary,
		User:       userSummary,
		AuthUserID: result.AuthUserID,
		Token:      result.Token,
	})
}
