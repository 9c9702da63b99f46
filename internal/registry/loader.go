package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"llmcord/internal/common/fsutil"
)

// modelExts are the file extensions recognized as model weights.
var modelExts = []string{".gguf", ".bin"}

// Model is a model file found on disk.
type Model struct {
	// ID is the file name including extension.
	ID        string
	Path      string
	SizeBytes int64
}

// LoadDir scans a directory for model files (*.gguf, *.bin) in name order.
func LoadDir(dir string) ([]Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []Model
	for _, e := range entries {
		if e.IsDir() || !isModelFile(e.Name()) {
			continue
		}
		m := Model{ID: e.Name(), Path: filepath.Join(abs, e.Name())}
		if info, err := e.Info(); err == nil {
			m.SizeBytes = info.Size()
		}
		models = append(models, m)
	}
	return models, nil
}

// Resolve turns the configured model path into the weights file to load. A
// directory must contain exactly one model file.
func Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("model path is empty")
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("model path: %w", err)
	}
	if !info.IsDir() {
		return abs, nil
	}
	models, err := LoadDir(abs)
	if err != nil {
		return "", err
	}
	switch len(models) {
	case 0:
		return "", fmt.Errorf("no model files (*.gguf, *.bin) in %s", abs)
	case 1:
		return models[0].Path, nil
	default:
		ids := make([]string, len(models))
		for i, m := range models {
			ids[i] = m.ID
		}
		return "", fmt.Errorf("multiple model files in %s (%s); point model.path at one", abs, strings.Join(ids, ", "))
	}
}

func isModelFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range modelExts {
		if ext == e {
			return true
		}
	}
	return false
}
