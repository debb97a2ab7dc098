// Package config resolves runtime settings from a YAML file, environment
// variables, and CLI flags, keeping the provenance of every value so
// misconfiguration is diagnosable.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"

	"github.com/pocketfin/pocketfin/internal/llm"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// ResolvedValue is a setting plus where it came from.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

type ResolveOptions struct {
	ConfigPath string
	CLIModel   string
	CLIDBPath  string
	CLIListen  string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	DBPath      ResolvedValue `json:"db_path"`
	ListenAddr  ResolvedValue `json:"listen_addr"`
	LLMProvider ResolvedValue `json:"llm_provider"`
	LLMModel    ResolvedValue `json:"llm_model"`
	LLMBaseURL  ResolvedValue `json:"llm_base_url"`
	Referrer    ResolvedValue `json:"referrer"`
	AppTitle    ResolvedValue `json:"app_title"`
	Currency    ResolvedValue `json:"currency"`
	LogFile     ResolvedValue `json:"log_file"`
	LogLevel    ResolvedValue `json:"log_level"`

	APIKeys map[string]ResolvedValue `json:"api_keys,omitempty"`
}

type fileConfig struct {
	DBPath     string `yaml:"db_path"`
	ListenAddr string `yaml:"listen_addr"`
	Currency   string `yaml:"currency"`
	LLM        struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
		BaseURL  string `yaml:"base_url"`
		Referrer string `yaml:"referrer"`
		Title    string `yaml:"title"`
	} `yaml:"llm"`
	Log struct {
		File  string `yaml:"file"`
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// envConfig is the environment overlay, parsed in one shot.
type envConfig struct {
	DBPath     string `env:"POCKETFIN_DB"`
	ListenAddr string `env:"POCKETFIN_LISTEN"`
	Provider   string `env:"POCKETFIN_LLM"`
	Model      string `env:"POCKETFIN_MODEL"`
	BaseURL    string `env:"POCKETFIN_LLM_BASE_URL"`
	Referrer   string `env:"POCKETFIN_REFERRER"`
	Title      string `env:"POCKETFIN_TITLE"`
	Currency   string `env:"POCKETFIN_CURRENCY"`
	LogFile    string `env:"POCKETFIN_LOG_FILE"`
	LogLevel   string `env:"POCKETFIN_LOG_LEVEL"`

	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenRouterKey string `env:"OPENROUTER_API_KEY"`
}

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".pocketfin", "config.yaml")
}

// ResolveConfig layers file, environment, CLI, and built-in defaults, in
// that order of increasing precedence (defaults fill only what is still
// empty).
func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath: path,
		APIKeys:    map[string]ResolvedValue{},
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}
	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.ListenAddr, cfg.ListenAddr, SourceConfig, path)
		apply(&out.Currency, cfg.Currency, SourceConfig, path)
		apply(&out.LLMProvider, cfg.LLM.Provider, SourceConfig, path)
		apply(&out.LLMModel, cfg.LLM.Model, SourceConfig, path)
		apply(&out.LLMBaseURL, cfg.LLM.BaseURL, SourceConfig, path)
		apply(&out.Referrer, cfg.LLM.Referrer, SourceConfig, path)
		apply(&out.AppTitle, cfg.LLM.Title, SourceConfig, path)
		apply(&out.LogFile, cfg.Log.File, SourceConfig, path)
		apply(&out.LogLevel, cfg.Log.Level, SourceConfig, path)
		if key := strings.TrimSpace(cfg.LLM.APIKey); key != "" {
			provider := strings.TrimSpace(cfg.LLM.Provider)
			if provider == "" {
				provider = "openai"
			}
			out.APIKeys[provider] = ResolvedValue{Value: key, Source: SourceConfig, From: path}
		}
	}

	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return out, fmt.Errorf("parsing environment: %w", err)
	}
	applyEnv(&out.DBPath, ec.DBPath, "POCKETFIN_DB")
	applyEnv(&out.ListenAddr, ec.ListenAddr, "POCKETFIN_LISTEN")
	applyEnv(&out.LLMProvider, ec.Provider, "POCKETFIN_LLM")
	applyEnv(&out.LLMModel, ec.Model, "POCKETFIN_MODEL")
	applyEnv(&out.LLMBaseURL, ec.BaseURL, "POCKETFIN_LLM_BASE_URL")
	applyEnv(&out.Referrer, ec.Referrer, "POCKETFIN_REFERRER")
	applyEnv(&out.AppTitle, ec.Title, "POCKETFIN_TITLE")
	applyEnv(&out.Currency, ec.Currency, "POCKETFIN_CURRENCY")
	applyEnv(&out.LogFile, ec.LogFile, "POCKETFIN_LOG_FILE")
	applyEnv(&out.LogLevel, ec.LogLevel, "POCKETFIN_LOG_LEVEL")
	if v := strings.TrimSpace(ec.OpenAIKey); v != "" {
		out.APIKeys["openai"] = ResolvedValue{Value: v, Source: SourceEnv, From: "OPENAI_API_KEY"}
	}
	if v := strings.TrimSpace(ec.OpenRouterKey); v != "" {
		out.APIKeys["openrouter"] = ResolvedValue{Value: v, Source: SourceEnv, From: "OPENROUTER_API_KEY"}
	}

	apply(&out.LLMModel, opts.CLIModel, SourceCLI, "--model")
	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.ListenAddr, opts.CLIListen, SourceCLI, "--listen")

	applyDefault(&out.ListenAddr, ":8080")
	applyDefault(&out.LLMProvider, "openai")
	applyDefault(&out.LLMModel, "gpt-4o-mini")
	applyDefault(&out.Currency, "USD")
	applyDefault(&out.LogLevel, "info")
	applyDefault(&out.DBPath, filepath.Join("~", ".pocketfin", "pocketfin.db"))

	out.DBPath.Value = expandUserPath(out.DBPath.Value)
	return out, nil
}

// LLMConfig assembles the provider configuration from the resolved values.
func (r ResolvedConfig) LLMConfig() llm.Config {
	return llm.Config{
		Provider: r.LLMProvider.Value,
		Model:    r.LLMModel.Value,
		APIKey:   r.APIKeyFor(r.LLMProvider.Value).Value,
		BaseURL:  r.LLMBaseURL.Value,
		Referrer: r.Referrer.Value,
		Title:    r.AppTitle.Value,
	}
}

func (r ResolvedConfig) APIKeyFor(provider string) ResolvedValue {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if v, ok := r.APIKeys[provider]; ok && strings.TrimSpace(v.Value) != "" {
		return v
	}
	return ResolvedValue{}
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	if v := strings.TrimSpace(raw); v != "" {
		*dst = ResolvedValue{Value: v, Source: source, From: from}
	}
}

func applyEnv(dst *ResolvedValue, raw, envKey string) {
	apply(dst, raw, SourceEnv, envKey)
}

func applyDefault(dst *ResolvedValue, value string) {
	if strings.TrimSpace(dst.Value) == "" {
		*dst = ResolvedValue{Value: value, Source: SourceDefault, From: "built-in default"}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~"+string(filepath.Separator)) || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
