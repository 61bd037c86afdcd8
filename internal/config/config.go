package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "NOTEVAULT_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (NOTEVAULT_*). Nested keys use a double
// underscore: NOTEVAULT_DIAGRAMS__MODE -> diagrams.mode.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var (
	httpURL  = regexp.MustCompile(`^https?://\S+$`)
	repoName = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Owner, validation.Required, validation.Match(repoName)),
		validation.Field(&c.Repo, validation.Required, validation.Match(repoName)),
		validation.Field(&c.Branch, validation.Required),
		validation.Field(&c.APIBaseURL, validation.Required, validation.Match(httpURL)),
		validation.Field(&c.RawBaseURL, validation.Required, validation.Match(httpURL)),
		validation.Field(&c.MaxConcurrency, validation.Required, validation.Min(1)),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.RecentNamespace, validation.Required),
		validation.Field(&c.RecentLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.SearchLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.Diagrams),
	)
}

// Validate checks the diagram settings; a Kroki URL is only required in kroki mode.
func (d DiagramsConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Mode, validation.Required, validation.In(DiagramsClient, DiagramsKroki, DiagramsOff)),
		validation.Field(&d.KrokiURL,
			validation.When(d.Mode == DiagramsKroki, validation.Required),
			validation.Match(httpURL),
		),
	)
}

// RepoLabel returns owner/repo@branch for display.
func (c *Config) RepoLabel() string {
	label := c.Owner + "/" + c.Repo + "@" + c.Branch
	if root := strings.Trim(c.RootPath, "/"); root != "" {
		label += ":" + root
	}
	return label
}
