package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bellkey/pkg/domain/types"
	"github.com/secmon-lab/bellkey/pkg/utils/logging"
)

func TestLogger(t *testing.T) {
	t.Run("secret prefixed keys are masked", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON, false)
		logger.Info("hello",
			slog.String("secret_key", "xxx"),
			slog.String("normal_key", "aaa"),
		)

		gt.S(t, buf.String()).Contains("aaa").NotContains("xxx")
	})

	t.Run("signing secret type is masked under any key", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON, false)
		logger.Info("configured",
			slog.Any("value", types.SigningSecret("s3cr3t-value")),
			slog.Any("cred", types.Credential("bWFjLXZhbHVl")),
		)

		gt.S(t, buf.String()).NotContains("s3cr3t-value").NotContains("bWFjLXZhbHVl")
	})

	t.Run("tagged struct field is masked", func(t *testing.T) {
		type config struct {
			Addr   string
			Secret string `masq:"secret"`
		}
		var buf bytes.Buffer
		logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON, false)
		logger.Info("config", "cfg", config{Addr: "127.0.0.1:8080", Secret: "hidden-one"})

		gt.S(t, buf.String()).Contains("127.0.0.1:8080").NotContains("hidden-one")
	})
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON, false)

	ctx := logging.With(context.Background(), logger)
	ctx = logging.WithAttrs(ctx, "request_id", "req-1")
	logging.From(ctx).Info("handled")

	gt.S(t, buf.String()).Contains("req-1").Contains("handled")
}

func TestDefaultLogger(t *testing.T) {
	prev := logging.Default()
	defer logging.SetDefault(prev)

	var buf bytes.Buffer
	logging.SetDefault(logging.New(&buf, slog.LevelInfo, logging.FormatJSON, false))
	logging.From(context.Background()).Info("from default")
	gt.S(t, buf.String()).Contains("from default")

	logging.Quiet()
	logging.Default().Info("dropped")
	gt.S(t, buf.String()).NotContains("dropped")
}
