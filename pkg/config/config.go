package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"gopkg.in/yaml.v3"
)

var (
	ErrReadConfig      = errors.New("failed to read config file")
	ErrParseConfig     = errors.New("failed to parse config file")
	ErrMissingBaseURL  = errors.New("gitea base URL is required")
	ErrMissingToken    = errors.New("gitea admin token source is required")
	ErrMissingScimAuth = errors.New("inbound SCIM bearer token source is required")
	ErrResolveSecret   = errors.New("failed to resolve secret value")
)

// DefaultTeamUnits is the unit set granted to the Default team created for
// every provisioned organization.
var DefaultTeamUnits = []string{
	"repo.code",
	"repo.issues",
	"repo.ext_issues",
	"repo.wiki",
	"repo.pulls",
	"repo.releases",
	"repo.projects",
	"repo.ext_wiki",
}

// Duration wraps time.Duration so config values can be written as "15s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %w", ErrParseConfig, err)
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParseConfig, err)
	}

	*d = Duration(parsed)

	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Server struct {
	Address         string   `yaml:"address"`
	ReadTimeout     Duration `yaml:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout"`
}

// Auth holds the bearer token expected from the identity provider on every
// inbound SCIM request.
type Auth struct {
	Token commoncfg.SourceRef `yaml:"token"`
}

type Gitea struct {
	BaseURL            string              `yaml:"baseURL"`
	Token              commoncfg.SourceRef `yaml:"token"`
	CAPath             string              `yaml:"caPath"`
	InsecureSkipVerify bool                `yaml:"insecureSkipVerify"`
}

type Provisioning struct {
	DefaultTeamUnits []string `yaml:"defaultTeamUnits"`
	UserVisibility   string   `yaml:"userVisibility"`
}

type Config struct {
	LogLevel     string       `yaml:"logLevel"`
	Server       Server       `yaml:"server"`
	Auth         Auth         `yaml:"auth"`
	Gitea        Gitea        `yaml:"gitea"`
	Provisioning Provisioning `yaml:"provisioning"`
}

// Load reads, parses, defaults, and validates the configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
	}

	cfg := Config{}

	err = yaml.Unmarshal(raw, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseConfig, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}

	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(15 * time.Second)
	}

	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(15 * time.Second)
	}

	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(30 * time.Second)
	}

	if len(c.Provisioning.DefaultTeamUnits) == 0 {
		c.Provisioning.DefaultTeamUnits = DefaultTeamUnits
	}

	if c.Provisioning.UserVisibility == "" {
		c.Provisioning.UserVisibility = "limited"
	}
}

func (c *Config) Validate() error {
	if c.Gitea.BaseURL == "" {
		return ErrMissingBaseURL
	}

	if c.Gitea.Token.Source == "" {
		return ErrMissingToken
	}

	if c.Auth.Token.Source == "" {
		return ErrMissingScimAuth
	}

	return nil
}

// ResolveToken loads the Gitea admin token from its configured source.
func (g *Gitea) ResolveToken() (string, error) {
	value, err := commoncfg.LoadValueFromSourceRef(g.Token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrResolveSecret, err)
	}

	return string(value), nil
}

// ResolveToken loads the inbound SCIM bearer token from its configured source.
func (a *Auth) ResolveToken() (string, error) {
	value, err := commoncfg.LoadValueFromSourceRef(a.Token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrResolveSecret, err)
	}

	return string(value), nil
}
