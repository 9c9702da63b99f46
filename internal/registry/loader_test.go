package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("weights"), 0o644); err != nil {
			t.Fatalf("write temp file: %v", err)
		}
	}
}

func TestLoadDir_FiltersModelFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.gguf", "b.GGUF", "c.bin", "not-model.txt")
	if err := os.Mkdir(filepath.Join(dir, "d.gguf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	models, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(models) != 3 {
		t.Fatalf("expected 3 models, got %+v", models)
	}
	for _, m := range models {
		if !filepath.IsAbs(m.Path) || filepath.Base(m.Path) != m.ID || m.SizeBytes != int64(len("weights")) {
			t.Fatalf("unexpected model %+v", m)
		}
	}
}

func TestLoadDir_Missing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestLoadDir_ExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	sub := filepath.Join(home, "models")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	touch(t, sub, "x.gguf")
	models, err := LoadDir("~/models")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(models) != 1 || models[0].ID != "x.gguf" {
		t.Fatalf("unexpected models: %+v", models)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "only.gguf")
	got, err := Resolve(dir)
	if err != nil {
		t.Fatalf("resolve dir: %v", err)
	}
	if got != filepath.Join(dir, "only.gguf") {
		t.Fatalf("resolve dir = %q", got)
	}
	file := filepath.Join(dir, "only.gguf")
	if got, err := Resolve(file); err != nil || got != file {
		t.Fatalf("resolve file = %q, %v", got, err)
	}
}

func TestResolve_Errors(t *testing.T) {
	if _, err := Resolve(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	empty := t.TempDir()
	if _, err := Resolve(empty); err == nil {
		t.Fatalf("expected error for dir without models")
	}
	multi := t.TempDir()
	touch(t, multi, "a.gguf", "b.bin")
	_, err := Resolve(multi)
	if err == nil || !strings.Contains(err.Error(), "a.gguf") {
		t.Fatalf("expected ambiguity error naming candidates, got %v", err)
	}
	if _, err := Resolve(filepath.Join(empty, "missing.gguf")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
