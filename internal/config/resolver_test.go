package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveConfig_Precedence_ConfigEnvCLI(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	yaml := `db_path: ~/.pocketfin/from-config.db
currency: EUR
llm:
  provider: openrouter
  model: openai/gpt-4o-mini
  api_key: file-key
log:
  level: debug
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("POCKETFIN_DB", "~/from-env.db")
	t.Setenv("POCKETFIN_MODEL", "gpt-4o")
	t.Setenv("OPENAI_API_KEY", "env-key")

	resolved, err := ResolveConfig(ResolveOptions{
		ConfigPath: cfgPath,
		CLIDBPath:  "~/from-cli.db",
	})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}

	if resolved.DBPath.Source != SourceCLI {
		t.Fatalf("expected DB path source cli, got %s", resolved.DBPath.Source)
	}
	if strings.Contains(resolved.DBPath.Value, "~") {
		t.Fatalf("expected expanded path, got %q", resolved.DBPath.Value)
	}
	if resolved.LLMModel.Value != "gpt-4o" || resolved.LLMModel.Source != SourceEnv {
		t.Fatalf("expected model from env, got %+v", resolved.LLMModel)
	}
	if resolved.Currency.Value != "EUR" || resolved.Currency.Source != SourceConfig {
		t.Fatalf("expected currency from config, got %+v", resolved.Currency)
	}
	if resolved.APIKeyFor("openrouter").Value != "file-key" {
		t.Fatalf("expected openrouter key from file, got %+v", resolved.APIKeyFor("openrouter"))
	}
	if got := resolved.APIKeyFor("openai"); got.Value != "env-key" || got.From != "OPENAI_API_KEY" {
		t.Fatalf("expected openai key from env, got %+v", got)
	}
}

func TestResolveConfig_DefaultsFillMissing(t *testing.T) {
	t.Setenv("POCKETFIN_DB", "")
	t.Setenv("POCKETFIN_MODEL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	resolved, err := ResolveConfig(ResolveOptions{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
	})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}

	if resolved.ListenAddr.Value != ":8080" || resolved.ListenAddr.Source != SourceDefault {
		t.Fatalf("expected default listen addr, got %+v", resolved.ListenAddr)
	}
	if resolved.LLMProvider.Value != "openai" {
		t.Fatalf("expected default provider, got %+v", resolved.LLMProvider)
	}
	if resolved.Currency.Value != "USD" {
		t.Fatalf("expected default currency, got %+v", resolved.Currency)
	}
}

func TestResolveConfig_MalformedFile(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("llm: [not a map"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := ResolveConfig(ResolveOptions{ConfigPath: cfgPath}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLLMConfig(t *testing.T) {
	resolved := ResolvedConfig{
		LLMProvider: ResolvedValue{Value: "openrouter"},
		LLMModel:    ResolvedValue{Value: "openai/gpt-4o-mini"},
		APIKeys: map[string]ResolvedValue{
			"openrouter": {Value: "k"},
		},
	}
	cfg := resolved.LLMConfig()
	if cfg.Provider != "openrouter" || cfg.Model != "openai/gpt-4o-mini" || cfg.APIKey != "k" {
		t.Fatalf("unexpected llm config: %+v", cfg)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != slog.LevelDebug {
		t.Fatal("debug")
	}
	if ParseLevel("WARN") != slog.LevelWarn {
		t.Fatal("warn")
	}
	if ParseLevel("nonsense") != slog.LevelInfo {
		t.Fatal("default")
	}
}

func TestSetupLoggerWithWriters_FansOut(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)
	logger.Info("turn handled", "user", "u1")

	if !strings.Contains(stderr.String(), "turn handled") {
		t.Fatalf("stderr missing record: %q", stderr.String())
	}
	if !strings.Contains(file.String(), `"msg":"turn handled"`) {
		t.Fatalf("file missing JSON record: %q", file.String())
	}
}
