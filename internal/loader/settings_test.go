package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_ExpandsEnvVars(t *testing.T) {
	t.Setenv("CORENESS_TEST_BACKUP_DIR", "/var/backups/coreness")

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	writeFile(t, path, `
shutdown:
  plugin_timeout: 30
backup_dir: "${CORENESS_TEST_BACKUP_DIR}"
tenants_config_path: /etc/coreness/tenants.yaml
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 30, s.Shutdown.PluginTimeoutSec)
	assert.Equal(t, "/var/backups/coreness", s.BackupDir)
}

func TestLoadSettings_UnresolvedPlaceholderIsNotFatal(t *testing.T) {
	require.NoError(t, os.Unsetenv("CORENESS_TEST_UNSET_VAR"))

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	writeFile(t, path, `backup_dir: "${CORENESS_TEST_UNSET_VAR}"`)

	s, err := LoadSettings(path)
	require.NoError(t, err, "an unresolved placeholder must be warned, not fatal")
	assert.Equal(t, "", s.BackupDir)
}
