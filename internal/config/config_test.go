package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("USER_NAME", "")
	t.Setenv("MODEL_API_KEY", "")

	cfg := Load()

	if cfg.Port != "7860" {
		t.Errorf("Port = %q, want 7860", cfg.Port)
	}
	if !strings.HasSuffix(cfg.DBPath, "finance.db") {
		t.Errorf("DBPath = %q, want a finance.db path", cfg.DBPath)
	}
	if cfg.UserName != "默认用户" {
		t.Errorf("UserName = %q", cfg.UserName)
	}
	if !cfg.UseRuleFallback() {
		t.Error("expected rule fallback without an API key")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("MODEL_API_KEY", "sk-test")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.UseRuleFallback() {
		t.Error("expected remote model with an API key set")
	}
}

func TestUseRuleFallback(t *testing.T) {
	cfg := &Config{ModelType: "mock", ModelAPIKey: "sk-test"}
	if !cfg.UseRuleFallback() {
		t.Error("MODEL_TYPE other than api must force the rule fallback")
	}
}
