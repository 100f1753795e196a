package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/cli/config"
	"github.com/secmon-lab/bellkey/pkg/service/identity"
	"github.com/urfave/cli/v3"
)

type identityView struct {
	UserID    string `yaml:"user_id"`
	CreatedAt string `yaml:"created_at,omitempty"`
	Age       string `yaml:"age,omitempty"`
	Ephemeral bool   `yaml:"ephemeral,omitempty"`
}

func cmdIdentity() *cli.Command {
	return &cli.Command{
		Name:  "identity",
		Usage: "Inspect or reset the anonymous identity of this client",
		Commands: []*cli.Command{
			cmdIdentityShow(),
			cmdIdentityReset(),
		},
	}
}

func cmdIdentityShow() *cli.Command {
	var (
		create   bool
		storeCfg config.Store
	)

	return &cli.Command{
		Name:  "show",
		Usage: "Print the stored identity as YAML",
		Flags: joinFlags(
			[]cli.Flag{
				&cli.BoolFlag{
					Name:        "create",
					Usage:       "Create the identity if none is stored",
					Destination: &create,
				},
			},
			storeCfg.Flags(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			kv, closeStore, err := storeCfg.Configure()
			defer closeStore()
			if err != nil {
				return err
			}

			store := identity.New(kv)
			if create {
				store.GetOrCreate(ctx)
			}

			record, err := store.Lookup(ctx)
			if err != nil {
				return err
			}
			if record == nil {
				return goerr.New("no identity is stored, run bootstrap or 'identity show --create'")
			}

			view := identityView{
				UserID:    record.UserID.String(),
				Ephemeral: record.Ephemeral,
			}
			if !record.CreatedAt.IsZero() {
				view.CreatedAt = record.CreatedAt.Format(time.RFC3339)
				view.Age = humanize.Time(record.CreatedAt)
			}
			return printYAML(view)
		},
	}
}

func cmdIdentityReset() *cli.Command {
	var storeCfg config.Store

	return &cli.Command{
		Name:  "reset",
		Usage: "Delete the stored identity; the next bootstrap creates a new one",
		Flags: storeCfg.Flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			kv, closeStore, err := storeCfg.Configure()
			defer closeStore()
			if err != nil {
				return err
			}

			if err := identity.New(kv).Reset(ctx); err != nil {
				return err
			}

			_, err = fmt.Fprintln(stdout, "identity reset")
			return err
		},
	}
}
