package document

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"

	"askdoc/src/infrastructure/log"
)

// Handle is the identity-scoped read view of a built vector index. It is
// read-only for its whole lifetime.
type Handle struct {
	id      Identity
	backend VectorBackend
}

func (h *Handle) Identity() Identity {
	return h.id
}

// BatchSearch answers all queries against this document's index in one
// backend round trip.
func (h *Handle) BatchSearch(ctx context.Context, queries []string, k int) ([][]Chunk, error) {
	return h.backend.BatchSearch(ctx, h.id, queries, k)
}

// Cache maps a document's source identity to its built index handle. It is
// the only state shared across concurrent question batches: at most one
// ingest+embed cycle runs per distinct identity, concurrent first resolves
// for the same identity coalesce, and unrelated identities build in
// parallel. Failed builds are not cached, so a later retry can succeed.
type Cache struct {
	fetcher  Fetcher
	loader   Loader
	splitter *Splitter
	backend  VectorBackend

	mu      sync.RWMutex
	entries map[Identity]*Handle
	group   singleflight.Group
}

func NewCache(fetcher Fetcher, loader Loader, splitter *Splitter, backend VectorBackend) *Cache {
	return &Cache{
		fetcher:  fetcher,
		loader:   loader,
		splitter: splitter,
		backend:  backend,
		entries:  make(map[Identity]*Handle),
	}
}

type buildResult struct {
	handle    *Handle
	localPath string
}

// Resolve returns the handle for the source, building the index on first
// sight. The returned cleanup removes any raw bytes cached on disk during the
// build and must be called after the response has been produced; it is a
// no-op on cache hits.
func (c *Cache) Resolve(ctx context.Context, source string) (*Handle, func(), error) {
	id := IdentityFromSource(source)

	c.mu.RLock()
	handle, ok := c.entries[id]
	c.mu.RUnlock()
	if ok {
		log.Debug("document cache hit", "identity", string(id))
		return handle, func() {}, nil
	}

	v, err, _ := c.group.Do(string(id), func() (any, error) {
		return c.build(ctx, id, source)
	})
	if err != nil {
		return nil, func() {}, err
	}

	res := v.(buildResult)
	cleanup := func() {
		if res.localPath == "" {
			return
		}
		if err := os.Remove(res.localPath); err != nil && !os.IsNotExist(err) {
			log.Error(err, "failed to remove cached document bytes", "path", res.localPath)
		}
	}

	return res.handle, cleanup, nil
}

func (c *Cache) build(ctx context.Context, id Identity, source string) (buildResult, error) {
	// A racer may have finished while we waited for the flight slot.
	c.mu.RLock()
	handle, ok := c.entries[id]
	c.mu.RUnlock()
	if ok {
		return buildResult{handle: handle}, nil
	}

	localPath, err := c.fetcher.Fetch(ctx, source)
	if err != nil {
		return buildResult{}, err
	}

	units, err := c.loader.Load(localPath)
	if err != nil {
		removeQuietly(localPath)
		return buildResult{}, err
	}
	if len(units) == 0 {
		removeQuietly(localPath)
		return buildResult{}, &LoadError{Source: source, Err: fmt.Errorf("no content could be extracted")}
	}

	chunks, err := c.splitter.Split(id, units)
	if err != nil {
		removeQuietly(localPath)
		return buildResult{}, err
	}

	if err := c.backend.Add(ctx, id, chunks); err != nil {
		removeQuietly(localPath)
		return buildResult{}, fmt.Errorf("index document: %w", err)
	}

	handle = &Handle{id: id, backend: c.backend}
	c.mu.Lock()
	c.entries[id] = handle
	c.mu.Unlock()

	log.Info("document indexed", "identity", string(id), "units", len(units), "chunks", len(chunks))
	return buildResult{handle: handle, localPath: localPath}, nil
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Error(err, "failed to remove cached document bytes", "path", path)
	}
}
