package http

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/domain/interfaces"
	"github.com/secmon-lab/bellkey/pkg/domain/model/errs"
	"github.com/secmon-lab/bellkey/pkg/utils/errutil"
	"github.com/secmon-lab/bellkey/pkg/utils/logging"
	"github.com/secmon-lab/bellkey/pkg/utils/request_id"
)

func panicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				panicErr := goerr.New("panic recovered",
					goerr.Tag(errs.TagInternal),
					goerr.V("panic", fmt.Sprintf("%v", v)),
					goerr.V("stack", string(debug.Stack())),
					goerr.V("method", r.Method),
					goerr.V("path", r.URL.Path),
					goerr.TV(errutil.RequestIDKey, request_id.FromContext(r.Context())),
				)
				handleError(w, r, panicErr)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// AuthInput is the input document of the "data.auth" policy query.
type AuthInput struct {
	Method     string              `json:"method"`
	Path       string              `json:"path"`
	Header     map[string][]string `json:"header"`
	RemoteAddr string              `json:"remote_addr"`
}

type authResult struct {
	Allow bool `json:"allow"`
}

func newAuthInput(r *http.Request) AuthInput {
	header := make(map[string][]string, len(r.Header))
	for k, v := range r.Header {
		header[k] = append([]string(nil), v...)
	}
	return AuthInput{
		Method:     r.Method,
		Path:       r.URL.Path,
		Header:     header,
		RemoteAddr: r.RemoteAddr,
	}
}

func authorizeWithPolicy(policy interfaces.PolicyClient) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			input := newAuthInput(r)

			var result authResult
			if err := policy.Query(ctx, "data.auth", input, &result); err != nil {
				handleError(w, r, goerr.Wrap(err, "failed to authorize request", goerr.Tag(errs.TagInternal)))
				return
			}

			logging.From(ctx).Debug("authorization result", "path", input.Path, "allow", result.Allow)

			if !result.Allow {
				handleError(w, r, goerr.New("request is not allowed by policy",
					goerr.Tag(errs.TagForbidden),
					goerr.V("method", input.Method),
					goerr.V("path", input.Path)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
