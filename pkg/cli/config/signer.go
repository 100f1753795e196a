package config

import (
	"log/slog"

	"github.com/secmon-lab/bellkey/pkg/domain/types"
	"github.com/secmon-lab/bellkey/pkg/service/signer"
	"github.com/secmon-lab/bellkey/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Signer struct {
	secret string
}

func (x *Signer) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "signing-secret",
			Usage:       "HMAC signing secret shared with the notification provider",
			Category:    "Signer",
			Sources:     cli.EnvVars("BELLKEY_SIGNING_SECRET"),
			Destination: &x.secret,
		},
	}
}

func (x Signer) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("configured", x.secret != ""),
	)
}

// Configure always succeeds. A missing secret is a deployment fault that is
// reported per request, so the server still starts.
func (x *Signer) Configure() *signer.Signer {
	if x.secret == "" {
		logging.Default().Warn("signing secret is not set, credential requests will fail with 500")
	}
	return signer.New(types.SigningSecret(x.secret))
}
