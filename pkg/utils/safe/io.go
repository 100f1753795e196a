package safe

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/secmon-lab/bellkey/pkg/utils/logging"
)

func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// WriteJSON sends v as the response body with the given status. Encoding
// failures are logged only; the header is already committed at that point.
func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.From(ctx).Error("Failed to encode response", slog.Any("error", err))
	}
}
