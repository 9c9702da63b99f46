package generation

import (
	"time"

	"github.com/rs/zerolog"
)

// defaultThreads applies when ManagerConfig.Threads is unset.
const defaultThreads = 8

// LlamaConfig describes how the in-process llama model is loaded.
type LlamaConfig struct {
	ModelPath   string
	ContextSize int
	Threads     int
	BatchSize   int
	PreferMMap  bool
	UseGPU      bool
	// GPULayers limits offloading when UseGPU is set; zero offloads all layers.
	GPULayers int
}

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Adapter   InferenceAdapter
	Threads   int
	MaxTokens int
	Publisher EventPublisher
	Logger    *zerolog.Logger
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	threads := cfg.Threads
	if threads <= 0 {
		threads = defaultThreads
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	var pub EventPublisher = noopPublisher{}
	if cfg.Publisher != nil {
		pub = cfg.Publisher
	}
	m := &Manager{
		queue:     NewQueue(),
		cancels:   NewCancelRegistry(),
		publisher: pub,
		log:       log,
		startTime: time.Now(),
	}
	m.worker = &Worker{
		adapter:   cfg.Adapter,
		queue:     m.queue,
		cancels:   m.cancels,
		publisher: pub,
		log:       log.With().Str("component", "worker").Logger(),
		threads:   threads,
		maxTokens: cfg.MaxTokens,
		totals:    make(map[string]uint64),
	}
	return m
}
