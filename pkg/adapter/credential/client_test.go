package credential_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bellkey/pkg/adapter/credential"
	"github.com/secmon-lab/bellkey/pkg/domain/model/errs"
	"github.com/secmon-lab/bellkey/pkg/domain/types"
	"github.com/secmon-lab/bellkey/pkg/service/signer"
	"github.com/secmon-lab/bellkey/pkg/utils/test"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchCredential(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		var gotID string
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Equal(t, r.Method, http.MethodGet)
			gt.Equal(t, r.URL.Path, credential.Path)
			gotID = r.URL.Query().Get("userId")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"hmac":"bWFj"}`))
		})

		client, err := credential.New(srv.URL + "/")
		gt.NoError(t, err)

		cred, err := client.FetchCredential(ctx, "user 1/&=?")
		gt.NoError(t, err)
		gt.Equal(t, cred, types.Credential("bWFj"))
		gt.Equal(t, gotID, "user 1/&=?")
	})

	failures := map[string]http.HandlerFunc{
		"bad request": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"hmac":""}`))
		},
		"server misconfigured": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"hmac":""}`))
		},
		"malformed body": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		},
		"empty hmac": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"hmac":""}`))
		},
		"missing hmac": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		},
	}

	for name, h := range failures {
		t.Run(name, func(t *testing.T) {
			srv := newServer(t, h)
			client, err := credential.New(srv.URL)
			gt.NoError(t, err)

			cred, err := client.FetchCredential(ctx, "user-123")
			gt.Error(t, err)
			gt.True(t, goerr.HasTag(err, errs.TagTransport))
			gt.True(t, cred.IsEmpty())
		})
	}

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client, err := credential.New(url)
		gt.NoError(t, err)
		_, err = client.FetchCredential(ctx, "user-123")
		gt.True(t, goerr.HasTag(err, errs.TagTransport))
	})

	t.Run("caller timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)

		client, err := credential.New(srv.URL)
		gt.NoError(t, err)

		ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err = client.FetchCredential(ctx, "user-123")
		gt.True(t, goerr.HasTag(err, errs.TagTransport))
	})
}

func TestNew(t *testing.T) {
	_, err := credential.New("ftp://example.com")
	gt.Error(t, err)

	_, err = credential.New("://bad")
	gt.Error(t, err)

	_, err = credential.New("http://example.com", credential.WithHTTPClient(&http.Client{Timeout: time.Second}))
	gt.NoError(t, err)
}

func TestFetchCredentialLive(t *testing.T) {
	vars := test.NewEnvVars(t, "TEST_BELLKEY_SERVER_URL", "TEST_BELLKEY_SIGNING_SECRET")

	client, err := credential.New(vars.Get("TEST_BELLKEY_SERVER_URL"))
	gt.NoError(t, err)

	userID := types.NewUserID()
	got, err := client.FetchCredential(context.Background(), userID)
	gt.NoError(t, err)

	gt.True(t, signer.New(types.SigningSecret(vars.Get("TEST_BELLKEY_SIGNING_SECRET"))).Verify(userID, got))
}
