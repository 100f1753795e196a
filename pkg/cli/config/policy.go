package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/opaq"
	"github.com/secmon-lab/bellkey/pkg/domain/interfaces"
	"github.com/urfave/cli/v3"
)

type Policy struct {
	filePaths []string
}

func (x *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "policy",
			Usage:       "Rego policy file/dir path for /api authorization (package auth)",
			Aliases:     []string{"p"},
			Destination: &x.filePaths,
			Category:    "Policy",
			Sources:     cli.EnvVars("BELLKEY_POLICY"),
		},
	}
}

func (x Policy) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("file_paths", x.filePaths),
	)
}

func (x *Policy) HasPolicies() bool {
	return len(x.filePaths) > 0
}

// Configure returns nil when no policy is given, which allows every request.
func (x *Policy) Configure() (interfaces.PolicyClient, error) {
	if !x.HasPolicies() {
		return nil, nil
	}

	client, err := opaq.New(opaq.Files(x.filePaths...))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create opaq client", goerr.V("file_paths", x.filePaths))
	}

	return client, nil
}
