package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/invite-idm/pkg/finalize"
	"github.com/tendant/invite-idm/pkg/invite"
	"github.com/tendant/invite-idm/pkg/profile"
	"github.com/tendant/invite-idm/pkg/provisioning"
	"github.com/tendant/invite-idm/pkg/signin"
)

// Config carries the handlers mounted by SetupRoutes.
type Config struct {
	ProvisioningHandler *provisioning.Handler
	InviteHandler       *invite.Handler
	SignInHandler       *signin.Handler
	FinalizeHandler     *finalize.Handler
	ProfileHandler      *profile.Handler
}

// SetupRoutes mounts all endpoints under /api. Every route is CORS
// permissive; browser clients call these endpoints directly.
func SetupRoutes(router chi.Router, cfg Config) {
	router.Route("/api", func(r chi.Router) {
		r.Use(CORS)

		cfg.ProvisioningHandler.RegisterRoutes(r)
		cfg.InviteHandler.RegisterRoutes(r)
		cfg.SignInHandler.RegisterRoutes(r)
		cfg.FinalizeHandler.RegisterRoutes(r)
		cfg.ProfileHandler.RegisterRoutes(r)
	})
}

// CORS allows cross-origin calls from any origin and short-circuits
// preflight requests.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
