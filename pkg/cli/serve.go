package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/cli/config"
	server "github.com/secmon-lab/bellkey/pkg/controller/http"
	"github.com/secmon-lab/bellkey/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		addr      string
		signerCfg config.Signer
		apiKeyCfg config.APIKey
		policyCfg config.Policy
		sentryCfg config.Sentry
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Aliases:     []string{"a"},
				Sources:     cli.EnvVars("BELLKEY_ADDR"),
				Usage:       "Listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
		},
		signerCfg.Flags(),
		apiKeyCfg.Flags(),
		policyCfg.Flags(),
		sentryCfg.Flags(),
	)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the credential signer server",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Default().Info("starting server",
				"addr", addr,
				"signer", signerCfg,
				"policy", policyCfg,
				"sentry", sentryCfg,
			)

			flush, err := sentryCfg.Configure()
			defer flush()
			if err != nil {
				return err
			}

			policyClient, err := policyCfg.Configure()
			if err != nil {
				return err
			}

			serverOptions := []server.Options{
				server.WithAPIKey(apiKeyCfg.Value()),
			}
			if policyClient != nil {
				serverOptions = append(serverOptions, server.WithPolicy(policyClient))
			}

			httpServer := http.Server{
				Addr:              addr,
				Handler:           server.New(signerCfg.Configure(), serverOptions...),
				ReadTimeout:       30 * time.Second,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(l net.Listener) context.Context {
					return ctx
				},
			}

			errCh := make(chan error, 1)
			go func() {
				defer close(errCh)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to serve", goerr.V("addr", addr))
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			case <-sigCh:
			}

			logging.Default().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
}
