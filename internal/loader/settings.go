package loader

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/vensus137/coreness-go/pkg/errors"
	"github.com/vensus137/coreness-go/pkg/logger"
)

// envVarPattern matches "${NAME}" placeholders (spec.md §6 Configuration).
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Settings is the global settings file's parsed form: arbitrary
// per-plugin sections plus the handful of global keys the platform
// reads directly.
type Settings struct {
	Shutdown struct {
		PluginTimeoutSec int `yaml:"plugin_timeout"`
	} `yaml:"shutdown"`
	BackupDir        string                 `yaml:"backup_dir"`
	TenantsConfigPath string                `yaml:"tenants_config_path"`
	Plugins          map[string]map[string]any `yaml:",inline"`
}

// LoadSettings reads and parses the settings file at path, expanding
// "${NAME}" environment placeholders first. Unresolved placeholders are
// logged and substituted with an empty string -- never fatal, per
// spec.md §6.
func LoadSettings(path string) (Settings, error) {
	const op = "loader.LoadSettings"

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errors.Wrap(err, op, fmt.Sprintf("reading %s", path))
	}

	expanded := expandEnvWarn(string(data))

	var s Settings
	if err := yaml.Unmarshal([]byte(expanded), &s); err != nil {
		return Settings{}, errors.Wrap(err, op, fmt.Sprintf("parsing %s", path))
	}
	return s, nil
}

// expandEnvWarn substitutes every "${NAME}" in text with the named
// environment variable, logging a warning (not an error) for any name
// that has no value set.
func expandEnvWarn(text string) string {
	return envVarPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		val, ok := os.LookupEnv(name)
		if !ok {
			logger.Warnw("loader: unresolved settings placeholder", "var", name)
			return ""
		}
		return val
	})
}
