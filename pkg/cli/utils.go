package cli

import (
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// stdout receives command output. Logs go to the logger.
var stdout io.Writer = os.Stdout

func joinFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, flag := range flags {
		result = append(result, flag...)
	}
	return result
}

func printYAML(v any) error {
	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to encode output")
	}
	if err := enc.Close(); err != nil {
		return goerr.Wrap(err, "failed to flush output")
	}
	return nil
}
