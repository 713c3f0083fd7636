package config

import (
	"github.com/leapstack-labs/mixgen/internal/engine"
	"github.com/leapstack-labs/mixgen/internal/manifest"
	"github.com/leapstack-labs/mixgen/internal/watcher"
	"github.com/leapstack-labs/mixgen/pkg/contract"
	"github.com/leapstack-labs/mixgen/pkg/parser"
)

// Default configuration values.
const (
	DefaultDirective      = parser.DefaultDirective
	DefaultAssocDirective = parser.DefaultAssocDirective
	DefaultOutputFile     = engine.DefaultOutputFile
	DefaultBuildTag       = engine.DefaultBuildTag
	DefaultBehaviors      = true
	DefaultContractSuffix = contract.DefaultSuffix
	DefaultManifest       = manifest.DefaultFile
	DefaultStateFile      = ".mixgen/state.db"
	DefaultDebounce       = watcher.DefaultDebounce
)

// Defaults returns the default values keyed by config key.
func Defaults() map[string]any {
	return map[string]any{
		"directive":       DefaultDirective,
		"assoc_directive": DefaultAssocDirective,
		"output_file":     DefaultOutputFile,
		"build_tag":       DefaultBuildTag,
		"behaviors":       DefaultBehaviors,
		"contract_suffix": DefaultContractSuffix,
		"manifest":        DefaultManifest,
		"state_path":      DefaultStateFile,
		"no_state":        false,
		"watch.debounce":  DefaultDebounce.String(),
	}
}

// ApplyDefaults fills unset string and duration values of a ProjectConfig.
// Booleans are left alone; their defaults come from Defaults.
func ApplyDefaults(c *ProjectConfig) {
	if c == nil {
		return
	}
	if c.Directive == "" {
		c.Directive = DefaultDirective
	}
	if c.AssocDirective == "" {
		c.AssocDirective = DefaultAssocDirective
	}
	if c.OutputFile == "" {
		c.OutputFile = DefaultOutputFile
	}
	if c.BuildTag == "" {
		c.BuildTag = DefaultBuildTag
	}
	if c.ContractSuffix == "" {
		c.ContractSuffix = DefaultContractSuffix
	}
	if c.Manifest == "" {
		c.Manifest = DefaultManifest
	}
	if c.StatePath == "" {
		c.StatePath = DefaultStateFile
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = DefaultDebounce
	}
}
