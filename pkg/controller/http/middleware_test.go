package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/opaq"
	server "github.com/secmon-lab/bellkey/pkg/controller/http"
)

func TestPanicRecoveryMiddleware(t *testing.T) {
	handler := server.PanicRecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/hmac", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	gt.Equal(t, w.Code, http.StatusInternalServerError)
	gt.S(t, w.Body.String()).NotContains("boom")
}

func TestLoggingMiddleware(t *testing.T) {
	var status int
	handler := server.LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		status = http.StatusTeapot
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/hmac?userId=abc", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	gt.Equal(t, status, http.StatusTeapot)
	gt.Equal(t, w.Code, http.StatusTeapot)
	gt.NotEqual(t, w.Header().Get("X-Request-Id"), "")
}

const testPolicy = `package auth

import rego.v1

default allow := false

allow if {
	input.method == "GET"
	input.header["X-Bellkey-Client"][0] == "trusted"
}
`

func newPolicyClient(t *testing.T) *opaq.Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auth.rego")
	gt.NoError(t, os.WriteFile(path, []byte(testPolicy), 0600))

	client, err := opaq.New(opaq.Files(path))
	gt.NoError(t, err)
	return client
}

type policyFunc func(ctx context.Context, query string, input, output any, opts ...opaq.QueryOption) error

func (f policyFunc) Query(ctx context.Context, query string, input, output any, opts ...opaq.QueryOption) error {
	return f(ctx, query, input, output, opts...)
}

func TestAuthorizeWithPolicy(t *testing.T) {
	policy := newPolicyClient(t)
	srv := newTestServer(t, testSecret, server.WithPolicy(policy))

	t.Run("allowed request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, hmacURL("user-123"), nil)
		req.Header.Set("X-Bellkey-Client", "trusted")
		w := httptest.NewRecorder()
		srv.handler.ServeHTTP(w, req)

		gt.Equal(t, w.Code, http.StatusOK)
	})

	t.Run("denied request", func(t *testing.T) {
		w := srv.get(t, hmacURL("user-123"))
		gt.Equal(t, w.Code, http.StatusForbidden)
	})

	t.Run("health bypasses the policy", func(t *testing.T) {
		w := srv.get(t, "/api/health")
		gt.Equal(t, w.Code, http.StatusOK)
	})

	t.Run("policy evaluation failure", func(t *testing.T) {
		broken := policyFunc(func(context.Context, string, any, any, ...opaq.QueryOption) error {
			return errors.New("evaluation failed")
		})
		srv := newTestServer(t, testSecret, server.WithPolicy(broken))

		w := srv.get(t, hmacURL("user-123"))
		gt.Equal(t, w.Code, http.StatusInternalServerError)
	})

	t.Run("query input", func(t *testing.T) {
		var input server.AuthInput
		capture := policyFunc(func(ctx context.Context, query string, in, out any, _ ...opaq.QueryOption) error {
			gt.Equal(t, query, "data.auth")
			input = in.(server.AuthInput)
			return json.Unmarshal([]byte(`{"allow":true}`), out)
		})
		srv := newTestServer(t, testSecret, server.WithPolicy(capture))

		w := srv.get(t, hmacURL("user-123"))
		gt.Equal(t, w.Code, http.StatusOK)
		gt.Equal(t, input.Method, http.MethodGet)
		gt.Equal(t, input.Path, "/api/hmac")
	})
}
