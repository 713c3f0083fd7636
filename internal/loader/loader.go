// Package loader resolves package arguments to directories and reads their
// Go files into a parser.Program.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/leapstack-labs/mixgen/pkg/parser"
)

// Options configures loading.
type Options struct {
	// Parser configures directive recognition.
	Parser parser.Options
	// BuildTag is passed to go/packages so template-only packages resolve.
	BuildTag string
	Logger   *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Source is a file that contributed to a program.
type Source struct {
	// Path is the file path as given to the parser.
	Path    string
	Content []byte
}

// Package is a loaded package directory.
type Package struct {
	Dir     string
	Program *parser.Program
	// Sources are the files of the program in program order.
	Sources []Source
	// Skipped lists generated files that were not read as input.
	Skipped []string
}

// Resolve maps arguments to package directories. An argument naming an
// existing directory is used as is; anything else is treated as a Go package
// pattern ("./...", "example.com/m/shapes") and resolved with go/packages.
// The result is sorted and free of duplicates.
func Resolve(ctx context.Context, dir string, args []string, opts Options) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	seen := make(map[string]bool)
	var dirs []string
	add := func(d string) {
		abs, err := filepath.Abs(d)
		if err != nil {
			abs = d
		}
		if !seen[abs] {
			seen[abs] = true
			dirs = append(dirs, abs)
		}
	}

	var patterns []string
	for _, arg := range args {
		path := arg
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, arg)
		}
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			add(path)
			continue
		}
		patterns = append(patterns, arg)
	}

	if len(patterns) > 0 {
		cfg := &packages.Config{
			Context: ctx,
			Mode:    packages.NeedName | packages.NeedFiles,
			Dir:     dir,
		}
		if opts.BuildTag != "" {
			cfg.BuildFlags = []string{"-tags=" + opts.BuildTag}
		}

		pkgs, err := packages.Load(cfg, patterns...)
		if err != nil {
			return nil, fmt.Errorf("loading packages: %w", err)
		}

		var errs []string
		for _, pkg := range pkgs {
			for _, e := range pkg.Errors {
				errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
			}
			files := append(append([]string{}, pkg.GoFiles...), pkg.IgnoredFiles...)
			if len(files) == 0 {
				continue
			}
			add(filepath.Dir(files[0]))
		}
		if len(errs) > 0 {
			return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
		}
	}

	sort.Strings(dirs)
	opts.logger().Debug("resolved packages", "args", args, "dirs", len(dirs))
	return dirs, nil
}

// Load reads and parses the Go files of dir concurrently. Test files are
// ignored and generated files are skipped. Files are ordered by name, which
// decides which declaration wins when a name is declared twice.
// Parse failures are returned as *core.ParseError.
func Load(ctx context.Context, dir string, opts Options) (*Package, error) {
	logger := opts.logger()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read package directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no Go files in %s", dir)
	}
	sort.Strings(paths)

	files := make([]*parser.File, len(paths))
	contents := make([][]byte, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			f, err := parser.ParseFile(path, src, opts.Parser)
			if err != nil {
				return err
			}
			files[i] = f
			contents[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pkg := &Package{Dir: dir}
	var kept []*parser.File
	for i, f := range files {
		if f.Generated {
			logger.Debug("skipping generated file", "file", f.Name)
			pkg.Skipped = append(pkg.Skipped, f.Name)
			continue
		}
		kept = append(kept, f)
		pkg.Sources = append(pkg.Sources, Source{Path: f.Name, Content: contents[i]})
	}

	prog, err := parser.NewProgram(kept...)
	if err != nil {
		return nil, err
	}
	pkg.Program = prog

	logger.Debug("loaded package",
		"dir", dir,
		"package", prog.Package,
		"files", len(kept),
		"skipped", len(pkg.Skipped))

	return pkg, nil
}
