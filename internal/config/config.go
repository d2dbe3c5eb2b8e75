package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
	"mvdan.cc/sh/v3/shell"

	"github.com/dshills/prism-ci/internal/output"
)

// Config represents the prism-ci configuration. Credentials are not part of
// it; they come from the environment only.
type Config struct {
	Platform         string          `toml:"platform" yaml:"platform" json:"platform"`
	ArtifactPath     string          `toml:"artifact_path" yaml:"artifact_path" json:"artifactPath"`
	MaxCommentLength int             `toml:"max_comment_length" yaml:"max_comment_length" json:"maxCommentLength"`
	BaseBranch       string          `toml:"base_branch,omitempty" yaml:"base_branch,omitempty" json:"baseBranch,omitempty"`
	Verbose          bool            `toml:"verbose" yaml:"verbose" json:"verbose"`
	Pretty           bool            `toml:"pretty" yaml:"pretty" json:"pretty"`
	Generator        GeneratorConfig `toml:"generator" yaml:"generator" json:"generator"`
	GitHub           ForgeConfig     `toml:"github" yaml:"github" json:"github"`
	Bitbucket        ForgeConfig     `toml:"bitbucket" yaml:"bitbucket" json:"bitbucket"`
}

// GeneratorConfig selects the external review generator.
type GeneratorConfig struct {
	Command string   `toml:"command" yaml:"command" json:"command"`
	Args    []string `toml:"args" yaml:"args" json:"args"`
}

// ForgeConfig holds per-forge endpoint overrides.
type ForgeConfig struct {
	APIURL string `toml:"api_url,omitempty" yaml:"api_url,omitempty" json:"apiURL,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Platform:         "local",
		ArtifactPath:     output.DefaultArtifactPath,
		MaxCommentLength: output.DefaultMaxLength,
		Generator: GeneratorConfig{
			Command: "claude",
			Args:    []string{"-p"},
		},
	}
}

// Validate checks values that no layer may leave invalid.
func (c Config) Validate() error {
	if c.MaxCommentLength <= 0 {
		return fmt.Errorf("max_comment_length must be positive, got %d", c.MaxCommentLength)
	}
	if strings.TrimSpace(c.Generator.Command) == "" {
		return fmt.Errorf("generator.command must not be empty")
	}
	if strings.TrimSpace(c.ArtifactPath) == "" {
		return fmt.Errorf("artifact_path must not be empty")
	}
	return nil
}

// ConfigDir returns the platform-appropriate config directory for prism-ci.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "prism-ci"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "prism-ci"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "prism-ci"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "prism-ci"), nil
	default:
		return filepath.Join(home, ".config", "prism-ci"), nil
	}
}

// ConfigPath returns the full path to the user config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LoadFile loads config from path, decoding by extension (.toml, .yaml,
// .yml, .json). An empty path means the user config file. A missing file
// yields a zero Config and nil error.
func LoadFile(path string) (Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml", "":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config file format %q", ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as TOML to the user config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing config file: %w", err)
	}
	return nil
}

// LoadSaved returns the defaults overlaid with the file at path, ignoring
// the environment. It is the starting point for editing a config file.
func LoadSaved(path string) (Config, error) {
	cfg := Default()
	fileCfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	return cfg, nil
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(path string, overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Platform != "" {
		dst.Platform = src.Platform
	}
	if src.ArtifactPath != "" {
		dst.ArtifactPath = src.ArtifactPath
	}
	if src.MaxCommentLength > 0 {
		dst.MaxCommentLength = src.MaxCommentLength
	}
	if src.BaseBranch != "" {
		dst.BaseBranch = src.BaseBranch
	}
	if src.Generator.Command != "" {
		dst.Generator.Command = src.Generator.Command
	}
	if src.Generator.Args != nil {
		dst.Generator.Args = src.Generator.Args
	}
	if src.GitHub.APIURL != "" {
		dst.GitHub.APIURL = src.GitHub.APIURL
	}
	if src.Bitbucket.APIURL != "" {
		dst.Bitbucket.APIURL = src.Bitbucket.APIURL
	}
	// A file can switch these on but not off; env and flags can do both.
	dst.Verbose = dst.Verbose || src.Verbose
	dst.Pretty = dst.Pretty || src.Pretty
}

// envKeys maps environment variables onto SetField keys.
var envKeys = []struct {
	env string
	key string
}{
	{"PRISM_PLATFORM", "platform"},
	{"PRISM_ARTIFACT_PATH", "artifact_path"},
	{"PRISM_MAX_COMMENT_LENGTH", "max_comment_length"},
	{"PRISM_BASE_BRANCH", "base_branch"},
	{"PRISM_VERBOSE", "verbose"},
	{"PRISM_PRETTY", "pretty"},
	{"PRISM_GENERATOR_CMD", "generator.command"},
	{"PRISM_GENERATOR_ARGS", "generator.args"},
	{"GITHUB_API_URL", "github.api_url"},
	{"BITBUCKET_API_URL", "bitbucket.api_url"},
}

// EnvVars lists the environment variables Load reads.
func EnvVars() []string {
	names := make([]string, len(envKeys))
	for i, e := range envKeys {
		names[i] = e.env
	}
	return names
}

func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		v, ok := os.LookupEnv(e.env)
		if !ok || v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	// Apply in envKeys order so results do not depend on map iteration.
	for _, e := range envKeys {
		v, ok := overrides[e.key]
		if !ok || v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("--%s: %w", e.key, err)
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "platform":
		cfg.Platform = value
	case "artifact_path":
		cfg.ArtifactPath = value
	case "max_comment_length":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("max_comment_length must be an integer: %w", err)
		}
		cfg.MaxCommentLength = n
	case "base_branch":
		cfg.BaseBranch = value
	case "verbose":
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("verbose must be a boolean: %w", err)
		}
		cfg.Verbose = b
	case "pretty":
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("pretty must be a boolean: %w", err)
		}
		cfg.Pretty = b
	case "generator.command":
		cfg.Generator.Command = value
	case "generator.args":
		args, err := SplitArgs(value)
		if err != nil {
			return err
		}
		cfg.Generator.Args = args
	case "github.api_url":
		cfg.GitHub.APIURL = value
	case "bitbucket.api_url":
		cfg.Bitbucket.APIURL = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// SplitArgs splits a string into arguments using POSIX shell quoting rules.
// Variable references are not expanded.
func SplitArgs(s string) ([]string, error) {
	args, err := shell.Fields(s, func(name string) string { return "$" + name })
	if err != nil {
		return nil, fmt.Errorf("parsing arguments %q: %w", s, err)
	}
	if args == nil {
		args = []string{}
	}
	return args, nil
}
