// Package engine provides the composition entry point and package generation.
// It loads package directories, builds and caches registries, composes every
// target declaration in inheritance order and writes the generated file.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/leapstack-labs/mixgen/internal/loader"
	"github.com/leapstack-labs/mixgen/internal/state"
	"github.com/leapstack-labs/mixgen/pkg/contract"
	"github.com/leapstack-labs/mixgen/pkg/parser"
)

// Default settings.
const (
	DefaultOutputFile = "mixgen_gen.go"
	DefaultBuildTag   = "mixgen"
	DefaultCacheTTL   = 10 * time.Minute
)

// Config holds engine configuration.
type Config struct {
	// Parser configures directive recognition.
	Parser parser.Options
	// OutputFile is the generated file name inside each package directory.
	OutputFile string
	// BuildTag guards template files; generated files get the negated constraint.
	BuildTag string
	// Behaviors is the default for behavior merging when neither the request
	// nor the declaration sets it.
	Behaviors bool
	// ContractSuffix names contracts: <Type><Suffix>.
	ContractSuffix string
	// Manifest is the manifest file name looked up in each package directory.
	Manifest string
	// StatePath is the path to the SQLite state database. Empty disables
	// state tracking and every generation writes.
	StatePath string
	// CacheTTL bounds how long built registries are reused.
	CacheTTL time.Duration
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Engine composes declarations and generates package outputs.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	store  *state.SQLiteStore
	cache  *registryCache

	// mu serializes generation; the store and output files are shared
	mu sync.Mutex
}

// New creates a new engine. The state store is opened when StatePath is set.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = DefaultOutputFile
	}
	if cfg.ContractSuffix == "" {
		cfg.ContractSuffix = contract.DefaultSuffix
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Parser.Directive == "" && cfg.Parser.AssocDirective == "" {
		cfg.Parser = parser.DefaultOptions()
	}

	logger.Debug("initializing engine",
		"output_file", cfg.OutputFile,
		"behaviors", cfg.Behaviors,
		"state", cfg.StatePath != "")

	e := &Engine{
		cfg:    cfg,
		logger: logger,
		cache:  newRegistryCache(cfg.CacheTTL, logger),
	}

	if cfg.StatePath != "" {
		store, err := state.OpenAndMigrate(cfg.StatePath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		e.store = store
	}

	return e, nil
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Store returns the state store, or nil when state tracking is disabled.
func (e *Engine) Store() *state.SQLiteStore {
	return e.store
}

func (e *Engine) loaderOptions() loader.Options {
	return loader.Options{
		Parser:   e.cfg.Parser,
		BuildTag: e.cfg.BuildTag,
		Logger:   e.logger,
	}
}
