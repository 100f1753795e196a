package http

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/domain/model/errs"
	"github.com/secmon-lab/bellkey/pkg/utils/logging"
	"github.com/secmon-lab/bellkey/pkg/utils/safe"
)

// reportError logs err by severity and returns the HTTP status it maps to.
func reportError(r *http.Request, err error) int {
	logger := logging.From(r.Context())

	switch {
	case goerr.HasTag(err, errs.TagInvalidRequest):
		logger.Warn("Bad Request", "error", err)
		return http.StatusBadRequest

	case goerr.HasTag(err, errs.TagForbidden):
		logger.Warn("Forbidden", "error", err)
		return http.StatusForbidden

	case goerr.HasTag(err, errs.TagMisconfigured):
		logger.Error("Server Misconfigured", "error", err)
		return http.StatusInternalServerError

	default:
		errs.Handle(r.Context(), err)
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := reportError(r, err)
	http.Error(w, http.StatusText(status), status)
}

// handleJSONError writes body, the empty response of the endpoint, with the
// status that err maps to.
func handleJSONError(w http.ResponseWriter, r *http.Request, err error, body any) {
	status := reportError(r, err)
	safe.WriteJSON(r.Context(), w, status, body)
}
