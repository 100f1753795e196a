package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/utils/errutil"
	"github.com/secmon-lab/bellkey/pkg/utils/logging"
	"github.com/secmon-lab/bellkey/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

type Logger struct {
	level      string
	format     string
	output     string
	quiet      bool
	stacktrace bool
}

func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Category:    "logging",
			Aliases:     []string{"l"},
			Sources:     cli.EnvVars("BELLKEY_LOG_LEVEL"),
			Usage:       "Set log level [debug|info|warn|error]",
			Value:       "info",
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Category:    "logging",
			Aliases:     []string{"f"},
			Sources:     cli.EnvVars("BELLKEY_LOG_FORMAT"),
			Usage:       "Set log format [console|json] (auto-detected from TERM if empty)",
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Category:    "logging",
			Aliases:     []string{"o"},
			Sources:     cli.EnvVars("BELLKEY_LOG_OUTPUT"),
			Usage:       "Set log output [stderr|stdout|-|<file path>]",
			Value:       "stderr",
			Destination: &x.output,
		},
		&cli.BoolFlag{
			Name:        "log-quiet",
			Category:    "logging",
			Aliases:     []string{"q"},
			Usage:       "Quiet mode (no log output)",
			Sources:     cli.EnvVars("BELLKEY_LOG_QUIET"),
			Destination: &x.quiet,
		},
		&cli.BoolFlag{
			Name:        "log-stacktrace",
			Category:    "logging",
			Aliases:     []string{"s"},
			Usage:       "Show stacktrace (only for console format)",
			Sources:     cli.EnvVars("BELLKEY_LOG_STACKTRACE"),
			Destination: &x.stacktrace,
		},
	}
}

func (x Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", x.level),
		slog.String("format", x.format),
		slog.String("output", x.output),
		slog.Bool("stacktrace", x.stacktrace),
	)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, goerr.New("invalid log level", goerr.V("level", s))
}

func parseFormat(s string) (logging.Format, error) {
	switch s {
	case "console":
		return logging.FormatConsole, nil
	case "json":
		return logging.FormatJSON, nil
	case "":
		term := os.Getenv("TERM")
		if strings.Contains(term, "color") || strings.Contains(term, "xterm") {
			return logging.FormatConsole, nil
		}
		return logging.FormatJSON, nil
	}
	return 0, goerr.New("invalid log format", goerr.V("format", s))
}

// Configure sets up the default logger and returns a closer. The closer is
// never nil, even on error.
func (x *Logger) Configure() (func(), error) {
	closer := func() {}
	if x.quiet {
		logging.Quiet()
		return closer, nil
	}

	level, err := parseLevel(x.level)
	if err != nil {
		return closer, err
	}
	format, err := parseFormat(x.format)
	if err != nil {
		return closer, err
	}

	var output io.Writer
	switch x.output {
	case "stderr", "":
		output = os.Stderr
	case "stdout", "-":
		output = os.Stdout
	default:
		f, err := os.OpenFile(filepath.Clean(x.output), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err != nil {
			return closer, goerr.Wrap(err, "failed to open log file", goerr.TV(errutil.FilePathKey, x.output))
		}
		output = f
		closer = func() {
			safe.Close(context.Background(), f)
		}
	}

	logging.SetDefault(logging.New(output, level, format, x.stacktrace))
	return closer, nil
}
