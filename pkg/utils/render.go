package utils

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	idmerr "github.com/tendant/invite-idm/pkg/errors"
)

// RespondError writes a JSON error body with the HTTP status derived
// from the error's code. Messages of non-typed errors are not exposed.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status := idmerr.MapErrorCodeToHTTPStatus(idmerr.GetCode(err))
	message := "internal server error"
	var e *idmerr.Error
	if errors.As(err, &e) {
		message = e.Message
	}
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": message})
}
