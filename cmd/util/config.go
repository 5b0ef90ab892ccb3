package util

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes the environment variables mirroring command flags,
	// e.g. SCHEMADIFF_PLATFORM for --platform.
	EnvPrefix = "SCHEMADIFF"

	// ConfigName is the config file looked up in the working directory
	// when --config is not given.
	ConfigName = ".schemadiff"
)

var (
	currentConfig *viper.Viper
	configMu      sync.RWMutex
)

// LoadConfig reads the config file at path, or .schemadiff.yaml from the
// working directory when path is empty. A missing default file is not an
// error. Environment variables with the SCHEMADIFF_ prefix override the file.
func LoadConfig(fs afero.Fs, path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// SetConfig installs the configuration used by PreRunEWithConfig
func SetConfig(v *viper.Viper) {
	configMu.Lock()
	defer configMu.Unlock()
	currentConfig = v
}

// Config returns the installed configuration. Without one, only environment
// variables are consulted.
func Config() *viper.Viper {
	configMu.RLock()
	defer configMu.RUnlock()
	if currentConfig != nil {
		return currentConfig
	}
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyConfig sets every flag of cmd that was not given on the command line
// from v. A key scoped by the command name (plan.platform) wins over the
// top-level key (platform).
func ApplyConfig(cmd *cobra.Command, v *viper.Viper) error {
	var errs []error
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if flag.Changed {
			return
		}
		key := ""
		for _, candidate := range []string{cmd.Name() + "." + flag.Name, flag.Name} {
			if v.IsSet(candidate) {
				key = candidate
				break
			}
		}
		if key == "" {
			return
		}
		if err := cmd.Flags().Set(flag.Name, configValue(v.Get(key))); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s in configuration: %w", flag.Name, err))
		}
	})
	return errors.Join(errs...)
}

// configValue renders a config value the way it would be typed as a flag.
// Lists become comma separated.
func configValue(value any) string {
	switch v := value.(type) {
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	}
	return fmt.Sprint(value)
}

// PreRunEWithConfig creates a PreRunE function that applies the installed
// configuration to the command flags, then checks that the required flags
// have a value from any source
func PreRunEWithConfig(required ...string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := ApplyConfig(cmd, Config()); err != nil {
			return err
		}
		for _, name := range required {
			flag := cmd.Flags().Lookup(name)
			if flag == nil || flag.Value.String() == "" || flag.Value.String() == "[]" {
				envVar := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
				return fmt.Errorf("%s is required (use --%s flag, %s environment variable or the config file)", name, name, envVar)
			}
		}
		return nil
	}
}
