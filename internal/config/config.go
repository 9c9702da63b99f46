package config

import (
	"fmt"
	"strings"
	"time"
)

// Placeholder marks where the user's prompt goes in a command template.
const Placeholder = "{{PROMPT}}"

// Config is the bot configuration. Zero values in optional fields are
// replaced by defaults in main.
type Config struct {
	Authentication Authentication     `json:"authentication" yaml:"authentication" toml:"authentication"`
	Model          Model              `json:"model" yaml:"model" toml:"model"`
	Inference      Inference          `json:"inference" yaml:"inference" toml:"inference"`
	Commands       map[string]Command `json:"commands" yaml:"commands" toml:"commands"`
	Server         Server             `json:"server" yaml:"server" toml:"server"`
}

type Authentication struct {
	// Token authenticates against the chat platform. Unused by the HTTP transport.
	Token string `json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty"`
}

type Model struct {
	Path               string `json:"path" yaml:"path" toml:"path"`
	ContextTokenLength int    `json:"context_token_length" yaml:"context_token_length" toml:"context_token_length"`
	Architecture       string `json:"architecture" yaml:"architecture" toml:"architecture"`
	PreferMMap         bool   `json:"prefer_mmap" yaml:"prefer_mmap" toml:"prefer_mmap"`
	// UseGPU requires a llama build with GPU support.
	UseGPU bool `json:"use_gpu" yaml:"use_gpu" toml:"use_gpu"`
	// GPULayers is the number of layers to offload when UseGPU is set; nil offloads all.
	GPULayers *int `json:"gpu_layers,omitempty" yaml:"gpu_layers,omitempty" toml:"gpu_layers,omitempty"`
}

type Inference struct {
	ThreadCount int `json:"thread_count" yaml:"thread_count" toml:"thread_count"`
	// BatchSize trades memory for prompt ingestion speed.
	BatchSize int `json:"batch_size" yaml:"batch_size" toml:"batch_size"`
	// MessageUpdateIntervalMS throttles unit edits; low values get rate limited.
	MessageUpdateIntervalMS int `json:"message_update_interval_ms" yaml:"message_update_interval_ms" toml:"message_update_interval_ms"`
	// ReplaceNewlines turns a literal `\n` in user prompts into a newline.
	ReplaceNewlines bool `json:"replace_newlines" yaml:"replace_newlines" toml:"replace_newlines"`
	// ShowPromptTemplate shows the whole processed prompt instead of only the user's text.
	ShowPromptTemplate    bool `json:"show_prompt_template" yaml:"show_prompt_template" toml:"show_prompt_template"`
	ChunkSize             int  `json:"chunk_size" yaml:"chunk_size" toml:"chunk_size"`
	RequestTimeoutSeconds int  `json:"request_timeout_seconds" yaml:"request_timeout_seconds" toml:"request_timeout_seconds"`
}

// UpdateInterval returns MessageUpdateIntervalMS as a duration.
func (i Inference) UpdateInterval() time.Duration {
	return time.Duration(i.MessageUpdateIntervalMS) * time.Millisecond
}

// RequestTimeout returns the caller-side job timeout; zero disables it.
func (i Inference) RequestTimeout() time.Duration {
	return time.Duration(i.RequestTimeoutSeconds) * time.Second
}

type Command struct {
	Enabled     bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Description string `json:"description" yaml:"description" toml:"description"`
	Prompt      string `json:"prompt" yaml:"prompt" toml:"prompt"`
}

type Server struct {
	Addr               string   `json:"addr" yaml:"addr" toml:"addr"`
	MaxBodyBytes       int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins,omitempty" yaml:"cors_allowed_origins,omitempty" toml:"cors_allowed_origins,omitempty"`
	CORSAllowedMethods []string `json:"cors_allowed_methods,omitempty" yaml:"cors_allowed_methods,omitempty" toml:"cors_allowed_methods,omitempty"`
	CORSAllowedHeaders []string `json:"cors_allowed_headers,omitempty" yaml:"cors_allowed_headers,omitempty" toml:"cors_allowed_headers,omitempty"`
}

const alpacaPrompt = `Below is an instruction that describes a task. Write a response that appropriately completes the request.

### Instruction:

{{PROMPT}}

### Response:

`

// Default returns the configuration written on first start.
func Default() Config {
	return Config{
		Model: Model{
			Path:               "models/llama-2-7b-chat.Q2_K.gguf",
			ContextTokenLength: 2048,
			Architecture:       "llama",
			PreferMMap:         true,
			UseGPU:             true,
		},
		Inference: Inference{
			ThreadCount:             8,
			BatchSize:               8,
			MessageUpdateIntervalMS: 250,
			ReplaceNewlines:         true,
			ShowPromptTemplate:      true,
			ChunkSize:               1500,
		},
		Commands: map[string]Command{
			"hallucinate": {
				Enabled:     true,
				Description: "Hallucinates some text.",
				Prompt:      Placeholder,
			},
			"alpaca": {
				Enabled:     true,
				Description: "Responds to the provided instruction.",
				Prompt:      alpacaPrompt,
			},
		},
		Server: Server{
			Addr:         ":8080",
			MaxBodyBytes: 1 << 20,
		},
	}
}

// Validate checks the settings the pipeline relies on.
func (c Config) Validate() error {
	if c.Inference.BatchSize <= 0 {
		return fmt.Errorf("inference.batch_size must be positive, got %d", c.Inference.BatchSize)
	}
	if c.Inference.ChunkSize <= 0 {
		return fmt.Errorf("inference.chunk_size must be positive, got %d", c.Inference.ChunkSize)
	}
	if c.Inference.ThreadCount < 0 {
		return fmt.Errorf("inference.thread_count must not be negative, got %d", c.Inference.ThreadCount)
	}
	if c.Inference.MessageUpdateIntervalMS < 0 {
		return fmt.Errorf("inference.message_update_interval_ms must not be negative")
	}
	if a := strings.ToLower(c.Model.Architecture); a != "" && a != "llama" {
		return fmt.Errorf("unsupported model architecture %q", c.Model.Architecture)
	}
	if c.Model.GPULayers != nil && *c.Model.GPULayers < 0 {
		return fmt.Errorf("model.gpu_layers must not be negative")
	}
	for name := range c.Commands {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("command with empty name")
		}
	}
	return nil
}
