package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// config is the resolved runtime configuration.
type config struct {
	Endpoint     string `yaml:"endpoint"`
	SocketURL    string `yaml:"socket_url"`
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	SystemPrompt string `yaml:"system_prompt"`
	APIKey       string `yaml:"api_key"`
	LogLevel     string `yaml:"log_level"`
	LogFile      string `yaml:"log_file"`
	MetricsAddr  string `yaml:"metrics_addr"`
}

func defaultConfig() config {
	return config{
		LogLevel: "info",
		LogFile:  defaultLogPath(),
	}
}

// setting binds one config field to its flag and environment variable.
type setting struct {
	flag  string
	env   string
	usage string
	field func(*config) *string
}

var settings = []setting{
	{"endpoint", "PARLEY_ENDPOINT", "Chat endpoint URL for request mode", func(c *config) *string { return &c.Endpoint }},
	{"socket-url", "PARLEY_SOCKET_URL", "WebSocket URL for continuous voice mode", func(c *config) *string { return &c.SocketURL }},
	{"provider", "PARLEY_PROVIDER", "Request backend: endpoint, anthropic, gemini (auto-detected if omitted)", func(c *config) *string { return &c.Provider }},
	{"model", "PARLEY_MODEL", "Model ID (anthropic and gemini only)", func(c *config) *string { return &c.Model }},
	{"system-prompt", "PARLEY_SYSTEM_PROMPT", "System prompt (anthropic and gemini only)", func(c *config) *string { return &c.SystemPrompt }},
	{"api-key", "PARLEY_API_KEY", "API key (overrides the provider's key variable)", func(c *config) *string { return &c.APIKey }},
	{"log-level", "LOG_LEVEL", "Log level: debug, info, warn, error", func(c *config) *string { return &c.LogLevel }},
	{"log-file", "PARLEY_LOG_FILE", "Log file path", func(c *config) *string { return &c.LogFile }},
	{"metrics-addr", "PARLEY_METRICS_ADDR", "Serve Prometheus metrics on this address, e.g. :9090", func(c *config) *string { return &c.MetricsAddr }},
}

// newFlagSet declares the command-line flags. The config file path is
// returned separately because it selects the file layer itself.
func newFlagSet(output io.Writer) (*pflag.FlagSet, *string) {
	fs := pflag.NewFlagSet("parley", pflag.ContinueOnError)
	fs.SetOutput(output)
	for _, s := range settings {
		fs.String(s.flag, "", s.usage)
	}
	path := fs.String("config", "", "Config file (default ~/.parley/config.yaml)")
	return fs, path
}

// loadConfigFile reads a YAML config file into base. A missing file is only
// an error when the path was given explicitly.
func loadConfigFile(path string, explicit bool, base config) (config, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !explicit:
		return base, nil
	default:
		return base, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	cfg := base
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// resolveConfig layers flag > env > file > default. Env values are passed
// in through getenv; the environment is only read in main.
func resolveConfig(args []string, getenv func(string) string, output io.Writer) (config, error) {
	fs, path := newFlagSet(output)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	filePath, explicit := *path, *path != ""
	if !explicit {
		filePath = defaultConfigPath()
	}
	cfg, err := loadConfigFile(filePath, explicit, defaultConfig())
	if err != nil {
		return config{}, err
	}

	for _, s := range settings {
		field := s.field(&cfg)
		if v := getenv(s.env); v != "" {
			*field = v
		}
		if fs.Changed(s.flag) {
			v, _ := fs.GetString(s.flag)
			*field = v
		}
	}
	return cfg, nil
}

func parleyDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".parley")
}

func defaultConfigPath() string {
	return filepath.Join(parleyDir(), "config.yaml")
}

func defaultLogPath() string {
	return filepath.Join(parleyDir(), "parley.log")
}
