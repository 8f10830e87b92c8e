package config

import (
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Config holds all runtime configuration. Values are loaded in order of
// precedence: environment variables, then the YAML file named by CONFIG_FILE,
// then struct defaults.
type Config struct {
	DatabaseBusyTimeout time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseDebug       bool          `koanf:"database_debug"`
	DatabaseFilePath    string        `koanf:"database_file_path"`
	Hostname            string        `koanf:"-"`
	ServerHost          string        `koanf:"server_host" default:"127.0.0.1"`
	ServerPort          int           `koanf:"server_port" default:"3720"`
	WorkerProcesses     int           `koanf:"worker_processes" default:"1"`

	// Media roots. A scan of a kind whose root is empty or missing on disk
	// yields a zero-result summary rather than an error.
	TVRoot    string `koanf:"tv_root"`
	MovieRoot string `koanf:"movie_root"`
	BookRoot  string `koanf:"book_root"`

	// Image cache directory for locally stored artwork.
	ImageCacheDir string `koanf:"image_cache_dir" default:"./tmp/images"`

	// Metadata provider credentials and endpoints. The base URLs exist so
	// tests can point clients at a local server.
	MovieAPIKey  string `koanf:"movie_api_key"`
	MovieBaseURL string `koanf:"movie_base_url" default:"https://api.themoviedb.org/3"`
	TVAPIKey     string `koanf:"tv_api_key"`
	TVBaseURL    string `koanf:"tv_base_url" default:"https://api4.thetvdb.com/v4"`
	BookBaseURL  string `koanf:"book_base_url" default:"https://openlibrary.org"`
}

func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{Hostname: hostname}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "./config.yaml"
	}
	if _, statErr := os.Stat(configFile); statErr == nil {
		// A missing config file is fine; a malformed one is not.
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	// Environment variables override the file. DATABASE_FILE_PATH maps to
	// database_file_path and so on. Empty variables are treated as unset.
	err = k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return strings.ToLower(key), value
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if cfg.DatabaseFilePath == "" {
		return nil, errors.New("missing required config: DATABASE_FILE_PATH (database_file_path)")
	}

	return cfg, nil
}
