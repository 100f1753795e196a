package http

import (
	"log/slog"
	"net/http"

	"github.com/secmon-lab/bellkey/pkg/utils/clock"
	"github.com/secmon-lab/bellkey/pkg/utils/logging"
	"github.com/secmon-lab/bellkey/pkg/utils/request_id"
)

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware never logs the query string: it carries the user ID.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, requestID := request_id.Generate(r.Context())
		logger := logging.From(ctx).With("request_id", requestID)
		ctx = logging.With(ctx, logger)
		w.Header().Set(request_id.Header, requestID)

		startedAt := clock.Now(ctx)
		sw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))

		logger.Info("Access Log",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", sw.status),
			slog.String("remote_addr", r.RemoteAddr),
			slog.Duration("duration", clock.Since(ctx, startedAt)),
		)
	})
}
