package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix = "WAGGLE"

	defaultUsername = "me"
	defaultLogLevel = "warn"
	defaultBaseURL  = "https://www.beeminder.com/api/v1"

	// defaultFetchLimit of 0 means fetch everything the goal has.
	defaultFetchLimit = 0

	editorFallback = "nvim"
)

// Config is the resolved runtime configuration. AuthToken is already the
// final secret, whichever chain link produced it.
type Config struct {
	AuthToken  string
	Username   string
	FetchLimit int
	Editor     string
	BackupPath string
	LogLevel   string
	APIBaseURL string
}

// NewViper returns a viper instance with defaults, env bindings and the
// config file search path configured.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings on the provided viper
// instance. Environment variables use the WAGGLE_ prefix with dots replaced
// by underscores, e.g. WAGGLE_AUTH_TOKEN.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("auth.username", defaultUsername)
	v.SetDefault("fetch.limit", defaultFetchLimit)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("api.base_url", defaultBaseURL)
	v.SetDefault("backup.path", defaultBackupPath())

	v.SetConfigName("waggle")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "waggle"))
	}
	v.AddConfigPath(".")
}

// Load reads the config file if one exists and resolves the final Config.
// A missing config file is fine; everything can come from the environment.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	token, err := ResolveToken(v)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AuthToken:  token,
		Username:   v.GetString("auth.username"),
		FetchLimit: v.GetInt("fetch.limit"),
		Editor:     v.GetString("editor.command"),
		BackupPath: v.GetString("backup.path"),
		LogLevel:   v.GetString("log.level"),
		APIBaseURL: v.GetString("api.base_url"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EditorCommand picks the editor to launch: the configured command, then
// $EDITOR, then nvim.
func (c Config) EditorCommand() string {
	if strings.TrimSpace(c.Editor) != "" {
		return c.Editor
	}
	if ed := strings.TrimSpace(os.Getenv("EDITOR")); ed != "" {
		return ed
	}
	return editorFallback
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("auth.username is required")
	}
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.FetchLimit < 0 {
		return fmt.Errorf("fetch.limit must not be negative")
	}
	return nil
}

func defaultBackupPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "waggle-backup.db"
	}
	return filepath.Join(dir, "waggle", "backup.db")
}
