package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/cli/config"
	"github.com/secmon-lab/bellkey/pkg/domain/interfaces"
	"github.com/secmon-lab/bellkey/pkg/domain/model/notice"
	"github.com/secmon-lab/bellkey/pkg/domain/model/session"
	"github.com/secmon-lab/bellkey/pkg/service/identity"
	"github.com/secmon-lab/bellkey/pkg/usecase"
	"github.com/secmon-lab/bellkey/pkg/utils/logging"
	"github.com/secmon-lab/bellkey/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdBootstrap() *cli.Command {
	var (
		noStream    bool
		serverCfg   config.Server
		storeCfg    config.Store
		providerCfg config.Provider
		sentryCfg   config.Sentry
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.BoolFlag{
				Name:        "no-stream",
				Usage:       "Exit after the handshake instead of streaming notifications",
				Sources:     cli.EnvVars("BELLKEY_NO_STREAM"),
				Destination: &noStream,
			},
		},
		serverCfg.Flags(),
		storeCfg.Flags(),
		providerCfg.Flags(),
		sentryCfg.Flags(),
	)

	return &cli.Command{
		Name:    "bootstrap",
		Aliases: []string{"b"},
		Usage:   "Obtain the credential for this client and open the notification session",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := logging.Default()
			logger.Debug("bootstrap options",
				"server", serverCfg,
				"store", storeCfg,
				"provider", providerCfg,
				"sentry", sentryCfg,
			)
			ctx = logging.With(ctx, logger)

			flush, err := sentryCfg.Configure()
			defer flush()
			if err != nil {
				return err
			}

			kv, closeStore, err := storeCfg.Configure()
			defer closeStore()
			if err != nil {
				return err
			}

			client, err := serverCfg.Configure()
			if err != nil {
				return err
			}

			notifier, err := providerCfg.Configure()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			bootstrap := usecase.NewBootstrap(identity.New(kv), client,
				// Failures are logged by the reporter, so only progress is
				// reported here.
				usecase.WithObserver(func(ctx context.Context, state usecase.State) {
					if state == usecase.StatePending {
						logging.From(ctx).Info("loading credential")
					}
				}),
			)
			defer bootstrap.Close()

			sess, err := bootstrap.Run(ctx)
			if err != nil {
				return goerr.Wrap(err, "bootstrap failed")
			}

			if _, err := fmt.Fprintf(stdout, "ready: %s\n", sess.UserID()); err != nil {
				return goerr.Wrap(err, "failed to write output")
			}
			if noStream {
				return nil
			}

			return streamNotifications(ctx, notifier, sess)
		},
	}
}

// streamNotifications prints notifications until ctx is canceled.
func streamNotifications(ctx context.Context, notifier interfaces.NotificationProvider, sess *session.Context) error {
	ns, err := notifier.Open(ctx, sess)
	if err != nil {
		return err
	}
	defer safe.Close(ctx, ns)

	for {
		n, err := ns.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logging.From(ctx).Info("notification stream stopped")
				return nil
			}
			return err
		}
		if err := printNotification(n); err != nil {
			return err
		}
	}
}

func printNotification(n *notice.Notification) error {
	when := "-"
	if !n.CreatedAt.IsZero() {
		when = humanize.Time(n.CreatedAt)
	}
	if _, err := fmt.Fprintf(stdout, "[%s] %s: %s\n", when, n.Title, n.Content); err != nil {
		return goerr.Wrap(err, "failed to write notification", goerr.V("id", n.ID))
	}
	return nil
}
