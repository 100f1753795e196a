package http

import (
	"net/http"

	"github.com/secmon-lab/bellkey/pkg/domain/types"
	"github.com/secmon-lab/bellkey/pkg/utils/logging"
	"github.com/secmon-lab/bellkey/pkg/utils/safe"
)

const (
	userIDParam     = "userId"
	externalIDParam = "user_external_id"
)

type hmacResponse struct {
	HMAC string `json:"hmac"`
}

type jwtResponse struct {
	Token  string `json:"token"`
	APIKey string `json:"api_key"`
}

type configResponse struct {
	APIKey string `json:"api_key"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func hmacHandler(signer Signer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := types.UserID(r.URL.Query().Get(userIDParam))

		credential, err := signer.Sign(userID)
		if err != nil {
			handleJSONError(w, r, err, hmacResponse{})
			return
		}

		logging.From(ctx).Debug("credential issued", "user_id", userID)
		safe.WriteJSON(ctx, w, http.StatusOK, hmacResponse{HMAC: credential.String()})
	}
}

func jwtHandler(signer Signer, apiKey types.APIKey) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()
		userID := types.UserID(query.Get(externalIDParam))
		if userID == types.EmptyUserID {
			userID = types.UserID(query.Get(userIDParam))
		}

		token, err := signer.IssueUserToken(ctx, userID, apiKey)
		if err != nil {
			handleJSONError(w, r, err, jwtResponse{})
			return
		}

		logging.From(ctx).Debug("user token issued", "user_id", userID)
		safe.WriteJSON(ctx, w, http.StatusOK, jwtResponse{
			Token:  token,
			APIKey: apiKey.String(),
		})
	}
}

func configHandler(apiKey types.APIKey) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		safe.WriteJSON(r.Context(), w, http.StatusOK, configResponse{APIKey: apiKey.String()})
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	safe.WriteJSON(r.Context(), w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: "bellkey",
	})
}
