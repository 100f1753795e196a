package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bellkey/pkg/cli"
	server "github.com/secmon-lab/bellkey/pkg/controller/http"
	"github.com/secmon-lab/bellkey/pkg/service/signer"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	restore := cli.SetOutput(&buf)
	defer restore()

	err := cli.Run(context.Background(), append([]string{"bellkey", "--log-quiet"}, args...))
	return buf.String(), err
}

func TestIdentityCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bellkey.db")

	_, err := run(t, "identity", "show", "--store", path)
	gt.Error(t, err)

	out, err := run(t, "identity", "show", "--create", "--store", path)
	gt.NoError(t, err)

	var first map[string]any
	gt.NoError(t, yaml.Unmarshal([]byte(out), &first))
	gt.NotEqual(t, first["user_id"], nil)
	gt.NotEqual(t, first["age"], nil)

	out, err = run(t, "identity", "show", "--store", path)
	gt.NoError(t, err)
	var again map[string]any
	gt.NoError(t, yaml.Unmarshal([]byte(out), &again))
	gt.Equal(t, again["user_id"], first["user_id"])

	_, err = run(t, "identity", "reset", "--store", path)
	gt.NoError(t, err)

	out, err = run(t, "identity", "show", "--create", "--store", path)
	gt.NoError(t, err)
	var renewed map[string]any
	gt.NoError(t, yaml.Unmarshal([]byte(out), &renewed))
	gt.NotEqual(t, renewed["user_id"], first["user_id"])
}

func TestBootstrapCommand(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv := httptest.NewServer(server.New(signer.New("s3cr3t")))
		defer srv.Close()
		path := filepath.Join(t.TempDir(), "bellkey.db")

		out, err := run(t, "bootstrap", "--no-stream", "--server-url", srv.URL, "--store", path)
		gt.NoError(t, err)
		gt.S(t, out).Contains("ready: ")

		// The identity used by the handshake is the persisted one
		show, err := run(t, "identity", "show", "--store", path)
		gt.NoError(t, err)
		var view map[string]any
		gt.NoError(t, yaml.Unmarshal([]byte(show), &view))
		gt.S(t, out).Contains(view["user_id"].(string))
	})

	t.Run("failed when the server has no secret", func(t *testing.T) {
		srv := httptest.NewServer(server.New(signer.New("")))
		defer srv.Close()

		out, err := run(t, "bootstrap", "--no-stream", "--server-url", srv.URL, "--store", "memory")
		gt.Error(t, err)
		gt.S(t, out).NotContains("ready")
	})

	t.Run("failure is logged at error level once", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"hmac":""}`))
		}))
		defer srv.Close()
		logPath := filepath.Join(t.TempDir(), "bellkey.log")

		var buf bytes.Buffer
		restore := cli.SetOutput(&buf)
		defer restore()
		err := cli.Run(context.Background(), []string{"bellkey",
			"--log-format", "json", "--log-output", logPath,
			"bootstrap", "--no-stream", "--server-url", srv.URL, "--store", "memory",
		})
		gt.Error(t, err)

		raw, err := os.ReadFile(logPath)
		gt.NoError(t, err)
		var errorLines int
		for _, line := range bytes.Split(raw, []byte("\n")) {
			var entry map[string]any
			if json.Unmarshal(line, &entry) != nil {
				continue
			}
			if entry["level"] == "ERROR" {
				errorLines++
			}
		}
		gt.Equal(t, errorLines, 1)
	})

	t.Run("failed when the server is unreachable", func(t *testing.T) {
		_, err := run(t, "bootstrap", "--no-stream", "--server-url", "http://127.0.0.1:1", "--store", "memory", "--timeout", "1s")
		gt.Error(t, err)
	})
}
