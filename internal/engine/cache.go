package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/leapstack-labs/mixgen/internal/loader"
	"github.com/leapstack-labs/mixgen/internal/manifest"
	"github.com/leapstack-labs/mixgen/internal/registry"
)

const cacheCleanupInterval = 30 * time.Minute

// registryCache holds built registries keyed by source hash.
// Cached registries are immutable and shared read-only.
type registryCache struct {
	cache  *gocache.Cache
	logger *slog.Logger
}

func newRegistryCache(ttl time.Duration, logger *slog.Logger) *registryCache {
	return &registryCache{
		cache:  gocache.New(ttl, cacheCleanupInterval),
		logger: logger,
	}
}

func (c *registryCache) get(key string) (*registry.Registry, bool) {
	value, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	reg, ok := value.(*registry.Registry)
	if !ok {
		c.logger.Error("wrong type in registry cache", "key", key)
		return nil, false
	}
	c.logger.Debug("registry cache hit", "key", key)
	return reg, true
}

func (c *registryCache) set(key string, reg *registry.Registry) {
	c.cache.SetDefault(key, reg)
}

// sourceHash fingerprints everything a generated file depends on: the
// settings that change composition, every source file and the manifest.
func (e *Engine) sourceHash(pkg *loader.Package, m *manifest.Manifest) string {
	h := sha256.New()
	fmt.Fprintf(h, "directive=%s\nassoc=%s\nbehaviors=%t\nsuffix=%s\ntag=%s\n",
		e.cfg.Parser.Directive, e.cfg.Parser.AssocDirective,
		e.cfg.Behaviors, e.cfg.ContractSuffix, e.cfg.BuildTag)

	for _, src := range pkg.Sources {
		fmt.Fprintf(h, "file=%s %d\n", src.Path, len(src.Content))
		h.Write(src.Content)
	}

	parents := m.Parents()
	children := make([]string, 0, len(parents))
	for child := range parents {
		children = append(children, child)
	}
	sort.Strings(children)
	behaviors := m.Behaviors()
	for _, child := range children {
		fmt.Fprintf(h, "compose=%s parents=%s", child, strings.Join(parents[child], ","))
		if merge, ok := behaviors[child]; ok {
			fmt.Fprintf(h, " behaviors=%t", merge)
		}
		fmt.Fprintln(h)
	}

	return hex.EncodeToString(h.Sum(nil))
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
