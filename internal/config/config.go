package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultPath    = "~/.bookshelf/bookshelf.yaml"

	DefaultURI            = "mongodb://127.0.0.1:27017/?directConnection=true"
	DefaultDatabase       = "plp_bookstore"
	DefaultCollection     = "books"
	DefaultConnectTimeout = 5 * time.Second
)

// Output formats understood by the report printer.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config is the top-level configuration.
type Config struct {
	Version int         `yaml:"version" validate:"eq=1"`
	Mongo   MongoConfig `yaml:"mongo"`
	Logging LogConfig   `yaml:"logging,omitempty"`
	Output  string      `yaml:"output,omitempty" validate:"oneof=text json"`

	src *source
}

// source remembers the mongo settings as written in the file, before env
// overrides and ${ENV:..} resolution, and what they resolved to.
type source struct {
	uri, database                 string
	resolvedURI, resolvedDatabase string
}

// MongoConfig defines where the books collection lives.
type MongoConfig struct {
	URI            string        `yaml:"uri" validate:"required"`
	Database       string        `yaml:"database" validate:"required"`
	Collection     string        `yaml:"collection" validate:"required"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" validate:"gt=0"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level     string `yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Directory string `yaml:"directory,omitempty"` // empty logs to stderr only
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the config file from the given path. A missing file at
// the default location is not an error; the defaults are used instead.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = ExpandHome(DefaultPath)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		if cfg.Version != CurrentVersion {
			return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentVersion)
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
		cfg.Version = CurrentVersion
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	src := &source{uri: cfg.Mongo.URI, database: cfg.Mongo.Database}
	if src.uri == "" {
		src.uri = DefaultURI
	}
	if src.database == "" {
		src.database = DefaultDatabase
	}

	cfg.applyEnv()
	if err := cfg.resolveSecrets(); err != nil {
		return nil, fmt.Errorf("resolving secrets: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src.resolvedURI, src.resolvedDatabase = cfg.Mongo.URI, cfg.Mongo.Database
	cfg.src = src
	return cfg, nil
}

// Save writes the config to the given path. Mongo settings that still hold
// the value Load resolved are written as they appeared in the file, so
// ${ENV:..} references and environment overrides are not persisted.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	out := *c
	if c.src != nil {
		if out.Mongo.URI == c.src.resolvedURI {
			out.Mongo.URI = c.src.uri
		}
		if out.Mongo.Database == c.src.resolvedDatabase {
			out.Mongo.Database = c.src.database
		}
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

var validate = validator.New()

// Validate checks field constraints after defaults have been applied.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Mongo.URI == "" {
		c.Mongo.URI = DefaultURI
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = DefaultDatabase
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = DefaultCollection
	}
	if c.Mongo.ConnectTimeout == 0 {
		c.Mongo.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Output == "" {
		c.Output = OutputText
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BOOKSHELF_MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("BOOKSHELF_DATABASE"); v != "" {
		c.Mongo.Database = v
	}
}

var secretPattern = regexp.MustCompile(`\$\{(ENV):([^}]+)\}`)

func (c *Config) resolveSecrets() error {
	var err error
	c.Mongo.URI, err = ResolveValue(c.Mongo.URI)
	if err != nil {
		return fmt.Errorf("mongo uri: %w", err)
	}
	return nil
}

// ResolveValue replaces ${ENV:NAME} references in a string value.
func ResolveValue(val string) (string, error) {
	var firstErr error
	out := secretPattern.ReplaceAllStringFunc(val, func(ref string) string {
		m := secretPattern.FindStringSubmatch(ref)
		v := os.Getenv(m[2])
		if v == "" && firstErr == nil {
			firstErr = fmt.Errorf("environment variable %s not set", m[2])
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
