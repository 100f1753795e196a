package config

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/secmon-lab/bellkey/pkg/adapter/credential"
	"github.com/urfave/cli/v3"
)

// Server is the client side view of the bellkey server.
type Server struct {
	url     string
	timeout time.Duration
}

func (x *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "server-url",
			Usage:       "Base URL of the bellkey server",
			Category:    "Server",
			Sources:     cli.EnvVars("BELLKEY_SERVER_URL"),
			Value:       "http://127.0.0.1:8080",
			Destination: &x.url,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Timeout of the credential request (0 for none)",
			Category:    "Server",
			Sources:     cli.EnvVars("BELLKEY_TIMEOUT"),
			Value:       10 * time.Second,
			Destination: &x.timeout,
		},
	}
}

func (x Server) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", x.url),
		slog.Duration("timeout", x.timeout),
	)
}

func (x *Server) Configure() (*credential.Client, error) {
	return credential.New(x.url, credential.WithHTTPClient(&http.Client{Timeout: x.timeout}))
}
