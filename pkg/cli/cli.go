package cli

import (
	"context"

	"github.com/secmon-lab/bellkey/pkg/cli/config"
	"github.com/secmon-lab/bellkey/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string) error {
	var loggerCfg config.Logger
	var closer func()
	app := &cli.Command{
		Name:  "bellkey",
		Usage: "Bind anonymous client identities to a notification provider with HMAC credentials",
		Flags: loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			closer = f
			if err != nil {
				return ctx, err
			}

			logging.Default().Debug("base options", "logger", loggerCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdBootstrap(),
			cmdIdentity(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
