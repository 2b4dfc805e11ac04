package signin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	idmerr "github.com/tendant/invite-idm/pkg/errors"
	"github.com/tendant/invite-idm/pkg/utils"
)

// Handler handles HTTP requests for sign-in
type Handler struct {
	signInService *SignInService
}

// NewHandler creates a new sign-in handler
func NewHandler(signInService *SignInService) *Handler {
	return &Handler{signInService: signInService}
}

// RegisterRoutes registers the sign-in routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sign-in", h.SignIn)
}

// SignInRequest is the body for the sign-in endpoint
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn runs the sign-in gate and returns a session. A first
// connection answers 200 with first_connection=true and no profile.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		utils.RespondError(w, r, idmerr.New(idmerr.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	result, err := h.signInService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Info("Sign-in failed", "email", utils.MaskEmail(req.Email), "code", idmerr.GetCode(err))
		utils.RespondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}
