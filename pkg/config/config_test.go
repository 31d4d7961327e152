package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loomcli/loom/pkg/edit"
	"github.com/loomcli/loom/pkg/resolve"
)

func writeConfig(t *testing.T, content string) (path string) {
	t.Helper()
	path = filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(path, []byte(content), 0600)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	path := writeConfig(t, `{
  "anthropic_api_key": "sk-test",
  "model": "claude-test",
  "risk": "high",
  "on_error": "retry",
  "cache": {"enabled": true, "ttl_hours": 12}
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AnthropicAPIKey != "sk-test" {
		t.Errorf("expected api key 'sk-test', got %q", cfg.AnthropicAPIKey)
	}
	if cfg.GetModel() != "claude-test" {
		t.Errorf("expected model 'claude-test', got %q", cfg.GetModel())
	}
	if cfg.GetRisk() != edit.RiskHigh {
		t.Errorf("expected risk high, got %q", cfg.GetRisk())
	}
	if cfg.GetOnError() != resolve.PolicyRetry {
		t.Errorf("expected policy retry, got %q", cfg.GetOnError())
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTLHours != 12 {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `{"anthropic_api_key": "sk-test"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GetModel() != "claude-sonnet-4-20250514" {
		t.Errorf("unexpected default model: %q", cfg.GetModel())
	}
	if cfg.GetRisk() != edit.RiskMed {
		t.Errorf("unexpected default risk: %q", cfg.GetRisk())
	}
	if cfg.GetOnError() != resolve.PolicyAsk {
		t.Errorf("unexpected default policy: %q", cfg.GetOnError())
	}
	if cfg.Defaults.OutputDir != "." {
		t.Errorf("unexpected default output dir: %q", cfg.Defaults.OutputDir)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `{"anthropic_api_key": "sk-from-file"}`)

	t.Setenv("ANTHROPIC_API_KEY", "sk-from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AnthropicAPIKey != "sk-from-env" {
		t.Errorf("expected env override, got %q", cfg.AnthropicAPIKey)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	if !strings.Contains(err.Error(), "loom init") {
		t.Errorf("expected init hint in error, got %q", err.Error())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing api key",
			content: `{}`,
			wantErr: "anthropic_api_key is required",
		},
		{
			name:    "unknown risk",
			content: `{"anthropic_api_key": "sk-test", "risk": "yolo"}`,
			wantErr: "invalid risk level",
		},
		{
			name:    "unknown policy",
			content: `{"anthropic_api_key": "sk-test", "on_error": "shrug"}`,
			wantErr: "invalid validation policy",
		},
		{
			name:    "negative ttl",
			content: `{"anthropic_api_key": "sk-test", "cache": {"ttl_hours": -1}}`,
			wantErr: "must not be negative",
		},
		{
			name:    "missing sections file",
			content: `{"anthropic_api_key": "sk-test", "sections_location": "/nonexistent/sections.json"}`,
			wantErr: "sections file not found",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("ANTHROPIC_API_KEY", "")
			path := writeConfig(t, tc.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of generated config failed: %v", err)
	}
	if cfg.GetRisk() != edit.RiskMed {
		t.Errorf("unexpected generated risk: %q", cfg.GetRisk())
	}

	// Second init must refuse to clobber.
	err = InitConfig(path)
	if err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestSidePaths(t *testing.T) {
	paths := SidePaths("/tmp/work/resume.md")

	if paths.Edits != "/tmp/work/.loom/edits.json" {
		t.Errorf("unexpected edits path: %q", paths.Edits)
	}
	if paths.Warnings != "/tmp/work/.loom/edits.warnings.txt" {
		t.Errorf("unexpected warnings path: %q", paths.Warnings)
	}
	if paths.Diff != "/tmp/work/.loom/diff.patch" {
		t.Errorf("unexpected diff path: %q", paths.Diff)
	}
	if paths.Plan != "/tmp/work/.loom/plan.txt" {
		t.Errorf("unexpected plan path: %q", paths.Plan)
	}
}
