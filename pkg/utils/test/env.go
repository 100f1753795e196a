package test

import (
	"fmt"
	"os"
	"testing"
)

// EnvVars holds variables required by a test that talks to a live
// deployment. The test is skipped when any of them is missing.
type EnvVars map[string]string

func NewEnvVars(t testing.TB, keys ...string) EnvVars {
	t.Helper()
	e := EnvVars{}

	for _, key := range keys {
		value, ok := os.LookupEnv(key)
		if !ok || value == "" {
			t.Skipf("%s is not set", key)
		}
		e[key] = value
	}

	return e
}

func (e EnvVars) Get(key string) string {
	if v, ok := e[key]; ok {
		return v
	}
	panic(fmt.Sprintf("%s was not requested in NewEnvVars", key))
}
