package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
Title = "ProjectPlanner"

[Webserver]
Port = 8080
URL = "http://localhost:8080"

[DB]
GormEngine = "sqlite"
Name = "projectplanner.db"

[Auth]
AdminUsername = "admin"
AdminPassword = ""

[Log]
LogLevel = "info"
AppName = "projectplanner"
ServiceName = "test"
`

func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.toml"), []byte(testConfig), 0o600))

	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	dir := writeConfig(t)

	out, err := run(t, "config", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "[Webserver]")

	out, err = run(t, "config", "--config", dir, "--json")
	require.NoError(t, err)

	var dumped map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &dumped))
	assert.Equal(t, "ProjectPlanner", dumped["Title"])

	dumpJSON = false
}

func TestMigrateCommand(t *testing.T) {
	dir := writeConfig(t)
	t.Setenv("PROJECTPLANNER_DB_NAME", filepath.Join(dir, "planner.db"))
	t.Setenv("PROJECTPLANNER_AUTH_ADMINPASSWORD", "1q2w3E*")

	_, err := run(t, "migrate", "--config", dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "planner.db"))
	require.NoError(t, err)
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "migrate", "--config", filepath.Join(t.TempDir(), "nothing"))
	require.Error(t, err)
}
