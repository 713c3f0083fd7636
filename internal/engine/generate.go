package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leapstack-labs/mixgen/internal/dag"
	"github.com/leapstack-labs/mixgen/internal/loader"
	"github.com/leapstack-labs/mixgen/internal/manifest"
	"github.com/leapstack-labs/mixgen/internal/registry"
	"github.com/leapstack-labs/mixgen/internal/state"
	"github.com/leapstack-labs/mixgen/pkg/format"
)

// Snapshot is a loaded package directory with its registry.
type Snapshot struct {
	Dir      string
	Package  *loader.Package
	Manifest *manifest.Manifest
	Registry *registry.Registry
	// Hash fingerprints the sources, manifest and composition settings.
	Hash string
}

// Graph returns the inheritance graph of the snapshot's declarations.
func (s *Snapshot) Graph() *dag.Graph {
	return dag.FromRegistry(s.Registry)
}

// Load reads dir and returns its registry, reusing a cached registry when
// nothing that affects it has changed.
func (e *Engine) Load(ctx context.Context, dir string) (*Snapshot, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	pkg, err := loader.Load(ctx, abs, e.loaderOptions())
	if err != nil {
		return nil, err
	}
	m, err := manifest.Load(abs, e.cfg.Manifest)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Dir:      abs,
		Package:  pkg,
		Manifest: m,
		Hash:     e.sourceHash(pkg, m),
	}

	if reg, ok := e.cache.get(snap.Hash); ok {
		snap.Registry = reg
		return snap, nil
	}

	reg, err := registry.Build(pkg.Program,
		registry.WithExplicitParents(m.Parents()),
		registry.WithBehaviorOverrides(m.Behaviors()),
		registry.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to build registry for %s: %w", abs, err)
	}
	e.cache.set(snap.Hash, reg)
	snap.Registry = reg
	return snap, nil
}

// ComposeAll composes every target of the snapshot, parents before children.
func (e *Engine) ComposeAll(ctx context.Context, snap *Snapshot) ([]*ComposeResult, error) {
	graph := snap.Graph()
	sorted, err := graph.TopologicalSort()
	if err != nil {
		return nil, err
	}

	var results []*ComposeResult
	for _, node := range sorted {
		if node.Entry == nil || len(node.Entry.Parents) == 0 {
			continue
		}
		res, err := e.Compose(ctx, snap.Registry, ComposeRequest{Child: node.Name})
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// GenerateOptions controls a generation.
type GenerateOptions struct {
	// Check compares the generated file with the one on disk and reports a
	// diff instead of writing.
	Check bool
	// Force writes even when the recorded generation is up to date.
	Force bool
}

// GenerateResult reports the outcome of generating one package.
type GenerateResult struct {
	Dir     string
	Output  string
	Targets []string
	// Written is true when the output file was created or replaced.
	Written bool
	// Removed is true when a stale output without targets was deleted.
	Removed bool
	// Skipped is true when the recorded generation was still current.
	Skipped bool
	// Diff is set in check mode when the file on disk is out of date.
	Diff     string
	Duration time.Duration
}

// Stale reports whether a check found the output out of date.
func (r *GenerateResult) Stale() bool {
	return r.Diff != ""
}

// Summary returns a human-readable one-line summary of the result.
func (r *GenerateResult) Summary() string {
	name := filepath.Base(r.Output)
	var action string
	switch {
	case r.Skipped:
		action = "up to date (skipped)"
	case r.Removed:
		action = "removed stale " + name
	case r.Stale():
		action = name + " is out of date"
	case r.Written:
		action = "wrote " + name
	case len(r.Targets) == 0:
		action = "no compositions"
	default:
		action = name + " unchanged"
	}
	return fmt.Sprintf("%s: %s (%d targets) in %v", r.Dir, action, len(r.Targets), r.Duration.Round(time.Millisecond))
}

// Generate composes every target in dir and writes the generated file.
func (e *Engine) Generate(ctx context.Context, dir string, opts GenerateOptions) (*GenerateResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generate(ctx, dir, opts, "")
}

// GenerateAll generates every directory, recording one state run for the
// whole batch. Failing directories do not stop the others; their errors
// are joined.
func (e *Engine) GenerateAll(ctx context.Context, dirs []string, opts GenerateOptions) ([]*GenerateResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	command := "gen"
	if opts.Check {
		command = "check"
	}

	var run *state.Run
	if e.store != nil {
		var err error
		run, err = e.store.CreateRun(ctx, command)
		if err != nil {
			return nil, err
		}
	}

	var results []*GenerateResult
	var errs []error
	written := 0
	for _, dir := range dirs {
		runID := ""
		if run != nil {
			runID = run.ID
		}
		res, err := e.generate(ctx, dir, opts, runID)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", dir, err))
			continue
		}
		if res.Written || res.Removed {
			written++
		}
		results = append(results, res)
	}
	err := errors.Join(errs...)

	if run != nil {
		status, msg := state.RunStatusCompleted, ""
		if err != nil {
			status, msg = state.RunStatusFailed, err.Error()
		}
		// Background context: the run must be closed even if ctx was cancelled.
		if cerr := e.store.CompleteRun(context.Background(), run.ID, status, len(dirs), written, msg); cerr != nil {
			e.logger.Warn("failed to complete run", "id", run.ID, "error", cerr)
		}
	}

	return results, err
}

func (e *Engine) generate(ctx context.Context, dir string, opts GenerateOptions, runID string) (*GenerateResult, error) {
	start := time.Now()

	snap, err := e.Load(ctx, dir)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		Dir:    snap.Dir,
		Output: filepath.Join(snap.Dir, e.cfg.OutputFile),
	}
	defer func() { result.Duration = time.Since(start) }()

	existing, err := os.ReadFile(result.Output)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", result.Output, err)
	}

	if !opts.Check && !opts.Force && e.upToDate(ctx, snap, existing) {
		e.logger.Debug("output up to date", "dir", snap.Dir)
		result.Skipped = true
		for _, t := range snap.Registry.Targets() {
			result.Targets = append(result.Targets, t.Name)
		}
		return result, nil
	}

	composed, err := e.ComposeAll(ctx, snap)
	if err != nil {
		return nil, err
	}

	if len(composed) == 0 {
		return result, e.removeStale(ctx, snap, result, existing, opts)
	}

	spec := format.FileSpec{
		Filename: result.Output,
		Package:  snap.Package.Program.Package,
		BuildTag: e.cfg.BuildTag,
	}
	var origins []string
	for _, res := range composed {
		spec.Decls = append(spec.Decls, res.FormatDecl())
		result.Targets = append(result.Targets, res.Decl.Name)
		origins = append(origins, res.Decl.Origins()...)
	}
	spec.Imports = FileImports(snap.Package.Program, origins...)

	out, err := format.RenderFile(spec)
	if err != nil {
		return nil, err
	}

	if opts.Check {
		result.Diff = lineDiff(result.Output, existing, out)
		return result, nil
	}

	if !bytes.Equal(existing, out) {
		if err := os.WriteFile(result.Output, out, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", result.Output, err)
		}
		result.Written = true
		e.logger.Info("wrote generated file", "path", result.Output, "targets", len(result.Targets))
	}

	if e.store != nil {
		err := e.store.RecordOutput(ctx, &state.Output{
			Dir:        snap.Dir,
			Path:       result.Output,
			SourceHash: snap.Hash,
			OutputHash: hashBytes(out),
			Targets:    result.Targets,
			RunID:      runID,
		})
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// upToDate reports whether the recorded generation matches the current
// sources and the file on disk is the one that was recorded.
func (e *Engine) upToDate(ctx context.Context, snap *Snapshot, existing []byte) bool {
	if e.store == nil || existing == nil {
		return false
	}
	rec, err := e.store.GetOutput(ctx, snap.Dir)
	if err != nil {
		e.logger.Warn("failed to read recorded output", "dir", snap.Dir, "error", err)
		return false
	}
	return rec != nil && rec.SourceHash == snap.Hash && rec.OutputHash == hashBytes(existing)
}

// removeStale deletes an output file left from an earlier generation once the
// package has no targets. Files mixgen did not write are left alone.
func (e *Engine) removeStale(ctx context.Context, snap *Snapshot, result *GenerateResult, existing []byte, opts GenerateOptions) error {
	if existing == nil || !isGenerated(existing) {
		return nil
	}

	if opts.Check {
		result.Diff = lineDiff(result.Output, existing, nil)
		return nil
	}

	if err := os.Remove(result.Output); err != nil {
		return fmt.Errorf("failed to remove %s: %w", result.Output, err)
	}
	result.Removed = true
	e.logger.Info("removed stale generated file", "path", result.Output)

	if e.store != nil {
		return e.store.DeleteOutput(ctx, snap.Dir)
	}
	return nil
}

func isGenerated(src []byte) bool {
	first, _, _ := strings.Cut(string(src), "\n")
	return first == format.Header
}
