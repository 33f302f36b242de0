package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/CIDgravity/snakelet"
)

// config structure
type Config struct {
	API      APIConfig      `mapstructure:"API"`
	Github   GithubConfig   `mapstructure:"GITHUB"`
	Tasks    TasksConfig    `mapstructure:"TASKS"`
	Icons    IconsConfig    `mapstructure:"ICONS"`
	UI       UIConfig       `mapstructure:"UI"`
	Sessions SessionsConfig `mapstructure:"SESSIONS"`
	Logs     LogsConfig     `mapstructure:"LOGS"`
}

type APIConfig struct {
	ListenPort  string `mapstructure:"ListenPort"`
	SupportPath string `mapstructure:"SupportPath"` // fallback when a project has no launch url
}

type GithubConfig struct {
	Username string `mapstructure:"Username"` // GITHUB_USERNAME overrides
	Token    string `mapstructure:"Token"`    // GITHUB_TOKEN overrides
	BaseURL  string `mapstructure:"BaseURL"`  // empty means api.github.com
}

type TasksConfig struct {
	MaxParallelTasksAllowed int `mapstructure:"MaxParallelTasksAllowed"`
}

type IconsConfig struct {
	DeviconBaseURL     string `mapstructure:"DeviconBaseURL"`
	SimpleIconsBaseURL string `mapstructure:"SimpleIconsBaseURL"`
	ProbeTimeoutMs     int    `mapstructure:"ProbeTimeoutMs"`
}

type UIConfig struct {
	ScrollQuietPeriodMs int `mapstructure:"ScrollQuietPeriodMs"`
}

type SessionsConfig struct {
	CookieName     string `mapstructure:"CookieName"`
	IdleTTLMinutes int    `mapstructure:"IdleTTLMinutes"`
	MaxSessions    int64  `mapstructure:"MaxSessions"`
}

type LogsConfig struct {
	Level            string `mapstructure:"Level"` // error | warn | info | debug - case insensitive
	OutputLogsAsJSON bool   `mapstructure:"OutputLogsAsJson"`
}

// HasCredentials reports whether both the owner and the token are known
// without both, the repository source serves placeholder data
func (c GithubConfig) HasCredentials() bool {
	return c.Username != "" && c.Token != ""
}

func (c IconsConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMs) * time.Millisecond
}

func (c UIConfig) ScrollQuietPeriod() time.Duration {
	return time.Duration(c.ScrollQuietPeriodMs) * time.Millisecond
}

func (c SessionsConfig) IdleTTL() time.Duration {
	return time.Duration(c.IdleTTLMinutes) * time.Minute
}

// Load reads config/config.toml next to the binary, then from the working directory,
// on top of GetDefault values and environment overrides
func Load() (*Config, error) {
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))

	if err != nil {
		return nil, err
	}

	// check config file exists
	configFilePath := dir + "/config/config.toml"

	if _, err := os.Stat(dir + "/config/config.toml"); errors.Is(err, os.ErrNotExist) {
		if _, err := os.Stat("config/config.toml"); errors.Is(err, os.ErrNotExist) {
			return nil, err
		} else {
			configFilePath = "config/config.toml"
		}
	}

	// load default and config file content
	cfg := GetDefault()
	_, err = snakelet.InitAndLoad(cfg, configFilePath)

	if err != nil {
		return nil, err
	}

	ApplyEnvironment(cfg)
	return cfg, nil
}

// ApplyEnvironment lets the deployment inject github credentials
// without writing them in the config file
func ApplyEnvironment(cfg *Config) {
	if user, ok := os.LookupEnv("GITHUB_USERNAME"); ok && user != "" {
		cfg.Github.Username = user
	}

	if token, ok := os.LookupEnv("GITHUB_TOKEN"); ok && token != "" {
		cfg.Github.Token = token
	}
}

// GetDefault holds the values used for every key missing from config.toml
func GetDefault() *Config {
	return &Config{
		API: APIConfig{
			ListenPort:  "5000",
			SupportPath: "/support",
		},
		Tasks: TasksConfig{
			MaxParallelTasksAllowed: 8,
		},
		Icons: IconsConfig{
			DeviconBaseURL:     "https://cdn.jsdelivr.net/gh/devicons/devicon/icons",
			SimpleIconsBaseURL: "https://cdn.simpleicons.org",
			ProbeTimeoutMs:     3000,
		},
		UI: UIConfig{
			ScrollQuietPeriodMs: 150,
		},
		Sessions: SessionsConfig{
			CookieName:     "portfolio_session",
			IdleTTLMinutes: 30,
			MaxSessions:    10000,
		},
		Logs: LogsConfig{
			Level:            "debug",
			OutputLogsAsJSON: false,
		},
	}
}
