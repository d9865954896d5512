package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const seed = `
CREATE TABLE "action" (id INTEGER, name TEXT);
CREATE TABLE action_input (action_id INTEGER, item_id TEXT, qty INTEGER);
CREATE TABLE action_output (action_id INTEGER, item_id TEXT, qty INTEGER);
CREATE TABLE action_source (action_id INTEGER, source_id TEXT);
CREATE TABLE source (id TEXT, name TEXT);
CREATE TABLE item (id TEXT, name TEXT);

INSERT INTO "action" VALUES (1, 'smelt'), (2, 'rest');
INSERT INTO action_input VALUES (1, 'ore', 2), (1, 'coal', 1);
INSERT INTO action_output VALUES (1, 'bar', 1);
INSERT INTO action_source VALUES (1, 'forge'), (1, 'anvil');
INSERT INTO source VALUES ('forge', 'Forge'), ('anvil', 'Anvil'), ('anvil', 'Old anvil');
INSERT INTO item VALUES ('ore', 'Iron ore'), ('bar', 'Iron bar');
`

const expected = `[
	{"id": 1, "name": "smelt",
	 "inputs": [{"item": {"id": "ore", "name": "Iron ore"}, "qty": 2}, {"item": null, "qty": 1}],
	 "outputs": [{"item": {"id": "bar", "name": "Iron bar"}, "qty": 1}],
	 "sources": [{"id": "forge", "name": "Forge"}]},
	{"id": 2, "name": "rest", "inputs": [], "outputs": [], "sources": []}
]`

func seedCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.db")

	db, err := database.Open(context.Background(), database.Config{
		Driver:         database.DriverSQLite,
		DataSourceName: path,
	}, zapadapter.NewZapEctoLogger(zap.NewNop(), nil))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.(*database.DatabaseInstance).ExecContext(context.Background(), seed)
	require.NoError(t, err)

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", path)
	t.Setenv("REDIS_HOST", "")
	t.Setenv("TRACING_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestExportToStdout(t *testing.T) {
	dir := seedCatalog(t)

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"export", "--env-file", filepath.Join(dir, "missing.env")})

	require.NoError(t, cmd.Execute())
	assert.JSONEq(t, expected, out.String())
}

func TestExportToFilePretty(t *testing.T) {
	dir := seedCatalog(t)
	target := filepath.Join(dir, "actions.json")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"export", "--pretty", "--out", target, "--env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.JSONEq(t, expected, string(data))
	assert.Contains(t, string(data), "\n  {")
}

func TestExportInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "oracle")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"export", "--env-file", filepath.Join(dir, "missing.env")})
	require.Error(t, cmd.Execute())
}
