package config

import (
	"log/slog"

	"github.com/secmon-lab/bellkey/pkg/adapter/provider"
	"github.com/secmon-lab/bellkey/pkg/domain/interfaces"
	"github.com/secmon-lab/bellkey/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// APIKey is the client-visible key of the notification provider.
type APIKey struct {
	key string
}

func (x *APIKey) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "api-key",
			Usage:       "Client-visible API key of the notification provider",
			Category:    "Provider",
			Sources:     cli.EnvVars("BELLKEY_API_KEY"),
			Destination: &x.key,
		},
	}
}

func (x APIKey) Value() types.APIKey {
	return types.APIKey(x.key)
}

type Provider struct {
	APIKey
	url string
}

func (x *Provider) Flags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:        "provider-url",
			Usage:       "WebSocket URL of the notification provider (ws:// or wss://)",
			Category:    "Provider",
			Sources:     cli.EnvVars("BELLKEY_PROVIDER_URL"),
			Destination: &x.url,
		},
	}, x.APIKey.Flags()...)
}

func (x Provider) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", x.url),
		slog.String("api_key", x.key),
	)
}

// Configure returns provider.Discard when no URL is set.
func (x *Provider) Configure() (interfaces.NotificationProvider, error) {
	if x.url == "" {
		return provider.Discard{}, nil
	}
	ws, err := provider.NewWebSocket(x.url, x.Value())
	if err != nil {
		return nil, err
	}
	return ws, nil
}
