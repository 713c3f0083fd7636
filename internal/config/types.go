// Package config provides shared configuration types for mixgen.
// This package is decoupled from CLI concerns; the CLI extends it with
// output and logging settings.
package config

import (
	"fmt"
	"go/token"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/leapstack-labs/mixgen/internal/engine"
	"github.com/leapstack-labs/mixgen/pkg/parser"
)

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// ProjectConfig holds the settings that shape composition and generation.
type ProjectConfig struct {
	Directive      string      `koanf:"directive"`
	AssocDirective string      `koanf:"assoc_directive"`
	OutputFile     string      `koanf:"output_file"`
	BuildTag       string      `koanf:"build_tag"`
	Behaviors      bool        `koanf:"behaviors"`
	ContractSuffix string      `koanf:"contract_suffix"`
	Manifest       string      `koanf:"manifest"`
	StatePath      string      `koanf:"state_path"`
	NoState        bool        `koanf:"no_state"`
	Watch          WatchConfig `koanf:"watch"`
}

// Validate checks that the configured names can appear in Go source.
func (c *ProjectConfig) Validate() error {
	for _, d := range []struct{ key, value string }{
		{"directive", c.Directive},
		{"assoc_directive", c.AssocDirective},
	} {
		if d.value == "" || strings.ContainsAny(d.value, " \t\n") {
			return fmt.Errorf("%s must be a non-empty word, got %q", d.key, d.value)
		}
	}
	if c.Directive == c.AssocDirective {
		return fmt.Errorf("directive and assoc_directive must differ, both are %q", c.Directive)
	}

	if filepath.Base(c.OutputFile) != c.OutputFile || !strings.HasSuffix(c.OutputFile, ".go") {
		return fmt.Errorf("output_file must be a .go file name without directories, got %q", c.OutputFile)
	}
	if strings.HasSuffix(c.OutputFile, "_test.go") {
		return fmt.Errorf("output_file must not be a test file, got %q", c.OutputFile)
	}

	if c.BuildTag != "" && !token.IsIdentifier(c.BuildTag) {
		return fmt.Errorf("build_tag must be an identifier, got %q", c.BuildTag)
	}
	if c.ContractSuffix != "" && !token.IsIdentifier("X"+c.ContractSuffix) {
		return fmt.Errorf("contract_suffix must continue an identifier, got %q", c.ContractSuffix)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %v", c.Watch.Debounce)
	}
	return nil
}

// EngineConfig converts the project settings to an engine configuration.
func (c *ProjectConfig) EngineConfig(logger *slog.Logger) engine.Config {
	statePath := c.StatePath
	if c.NoState {
		statePath = ""
	}
	return engine.Config{
		Parser: parser.Options{
			Directive:      c.Directive,
			AssocDirective: c.AssocDirective,
		},
		OutputFile:     c.OutputFile,
		BuildTag:       c.BuildTag,
		Behaviors:      c.Behaviors,
		ContractSuffix: c.ContractSuffix,
		Manifest:       c.Manifest,
		StatePath:      statePath,
		Logger:         logger,
	}
}
