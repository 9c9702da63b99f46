package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", `
model:
  path: /models/m.gguf
  context_token_length: 4096
inference:
  batch_size: 16
  chunk_size: 900
commands:
  echo:
    enabled: true
    description: Echo
    prompt: "{{PROMPT}}"
server:
  addr: ":9999"
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model.Path != "/models/m.gguf" || cfg.Model.ContextTokenLength != 4096 || cfg.Inference.BatchSize != 16 ||
		cfg.Inference.ChunkSize != 900 || cfg.Server.Addr != ":9999" || !cfg.Commands["echo"].Enabled {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"model":{"path":"/m","gpu_layers":12},"inference":{"batch_size":4,"replace_newlines":true},"server":{"addr":":7070"}}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model.Path != "/m" || cfg.Model.GPULayers == nil || *cfg.Model.GPULayers != 12 || cfg.Inference.BatchSize != 4 ||
		!cfg.Inference.ReplaceNewlines || cfg.Server.Addr != ":7070" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", `
[model]
path = "/x.gguf"
prefer_mmap = true

[inference]
thread_count = 4
message_update_interval_ms = 500

[commands.alpaca]
enabled = false
description = "Instruct"
prompt = "### Instruction:\n{{PROMPT}}\n### Response:\n"
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model.Path != "/x.gguf" || !cfg.Model.PreferMMap || cfg.Inference.ThreadCount != 4 ||
		cfg.Inference.UpdateInterval().Milliseconds() != 500 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if c := cfg.Commands["alpaca"]; c.Enabled || c.Prompt != "### Instruction:\n{{PROMPT}}\n### Response:\n" {
		t.Fatalf("unexpected command: %+v", c)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	if _, err := Load("/definitely/not/a/real/file-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
}

func TestLoad_InvalidContent(t *testing.T) {
	d := t.TempDir()
	cases := map[string]string{
		"bad.yaml": "model: [\n: broken\n",
		"bad.json": `{ "model": }`,
		"bad.toml": "[model\npath\n",
	}
	for name, content := range cases {
		p := writeTempFile(t, d, name, content)
		if _, err := Load(p); err == nil {
			t.Fatalf("%s: expected unmarshal error", name)
		}
	}
}

func TestLoadOrCreate_WritesDefault(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.toml")
	cfg, created, err := LoadOrCreate(p)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if !created {
		t.Fatalf("expected the file to be created")
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("returned config differs from Default (-want +got):\n%s", diff)
	}

	again, created, err := LoadOrCreate(p)
	if err != nil {
		t.Fatalf("second LoadOrCreate: %v", err)
	}
	if created {
		t.Fatalf("existing file recreated")
	}
	if diff := cmp.Diff(Default(), again); diff != "" {
		t.Fatalf("saved default does not round-trip (-want +got):\n%s", diff)
	}
}

func TestLoadOrCreate_ParseErrorIsNotReplaced(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "config.toml", "[model\n")
	if _, _, err := LoadOrCreate(p); err == nil {
		t.Fatalf("expected parse error")
	}
	b, _ := os.ReadFile(p)
	if string(b) != "[model\n" {
		t.Fatalf("broken config was overwritten")
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	neg := -1
	cases := map[string]func(*Config){
		"batch":        func(c *Config) { c.Inference.BatchSize = 0 },
		"chunk":        func(c *Config) { c.Inference.ChunkSize = -5 },
		"threads":      func(c *Config) { c.Inference.ThreadCount = -1 },
		"interval":     func(c *Config) { c.Inference.MessageUpdateIntervalMS = -1 },
		"architecture": func(c *Config) { c.Model.Architecture = "gpt-neox" },
		"gpu layers":   func(c *Config) { c.Model.GPULayers = &neg },
		"command name": func(c *Config) { c.Commands[" "] = Command{Prompt: Placeholder} },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestValidate_PromptWithoutPlaceholderAllowed(t *testing.T) {
	cfg := Default()
	cfg.Commands["plain"] = Command{Enabled: true, Prompt: "Tell me a story."}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
