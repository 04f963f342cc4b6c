package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"010_later.sql", "002_claims.sql", "001_init.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}

	files, err := MigrationFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "001_init.sql", filepath.Base(files[0]))
	assert.Equal(t, "002_claims.sql", filepath.Base(files[1]))
	assert.Equal(t, "010_later.sql", filepath.Base(files[2]))
}

func TestSchemaMigrationIsPresent(t *testing.T) {
	files, err := MigrationFiles(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	sql, err := os.ReadFile(files[0])
	require.NoError(t, err)
	for _, table := range []string{"agencies", "agency_claim_requests", "agency_compliance", "labor_requests", "labor_request_crafts", "audit_logs", "profiles"} {
		assert.Contains(t, string(sql), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
