// Package config loads the silicate client settings from defaults, an
// optional config.yaml, SILICATE_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"silicate/internal/logx"
)

// EnvPrefix prefixes every environment override, e.g. SILICATE_SERVER.
const EnvPrefix = "SILICATE"

// TokenKeyEnv holds a hex encoded token sealing key.
const TokenKeyEnv = EnvPrefix + "_TOKEN_KEY"

// Config holds the client settings.
type Config struct {
	Server          string        `mapstructure:"server"`
	StateDir        string        `mapstructure:"state_dir"`
	Timeout         time.Duration `mapstructure:"timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	TokenEncryption bool          `mapstructure:"token_encryption"`
	TokenKeyFile    string        `mapstructure:"token_key_file"`
	CAFile          string        `mapstructure:"ca_file"`
	GUIAddr         string        `mapstructure:"gui_addr"`
	Log             logx.Config   `mapstructure:"log"`
}

// ===== Defaults =====

const (
	DefaultServer    = "http://localhost:5000"
	DefaultTimeout   = 30 * time.Second
	DefaultGUIAddr   = "127.0.0.1:8081"
	DefaultUserAgent = "silicate-cli/1.0"
)

// DefaultStateDir returns ~/.silicate, or .silicate when there is no home.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".silicate"
	}
	return filepath.Join(home, ".silicate")
}

// New returns a viper instance with defaults and environment binding set.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("server", DefaultServer)
	v.SetDefault("state_dir", DefaultStateDir())
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("token_encryption", false)
	v.SetDefault("token_key_file", "")
	v.SetDefault("ca_file", "")
	v.SetDefault("gui_addr", DefaultGUIAddr)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds the flags of fs whose names match a config key, with
// dashes standing for underscores and dots (log-level binds log.level).
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key := flagKey(f.Name)
		if key == "" || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

func flagKey(name string) string {
	switch name {
	case "server", "timeout":
		return name
	case "state-dir", "user-agent", "token-encryption", "token-key-file", "ca-file", "gui-addr":
		return strings.ReplaceAll(name, "-", "_")
	case "log-level", "log-format", "log-file":
		return strings.Replace(name, "-", ".", 1)
	}
	return ""
}

// Load reads configFile, or config.yaml from the state dir and the working
// directory when configFile is empty, and decodes the merged settings.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(expandHome(v.GetString("state_dir")))
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.StateDir = expandHome(cfg.StateDir)
	cfg.TokenKeyFile = expandHome(cfg.TokenKeyFile)
	cfg.CAFile = expandHome(cfg.CAFile)
	cfg.Log.File = expandHome(cfg.Log.File)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return errors.New("config: server is empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: negative timeout %s", c.Timeout)
	}
	if c.StateDir == "" {
		return errors.New("config: state_dir is empty")
	}
	return nil
}

// KeyFile returns the token key file path, defaulting into the state dir.
func (c Config) KeyFile() string {
	if c.TokenKeyFile != "" {
		return c.TokenKeyFile
	}
	return filepath.Join(c.StateDir, "token.key")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
