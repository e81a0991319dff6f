package steam

import (
	"context"
	"log/slog"
	"sort"

	"saveatlas/internal/logging"
	"saveatlas/internal/resource"
	"saveatlas/internal/stale"
	"saveatlas/internal/wiki"
)

const (
	defaultChunkSize    = 25
	defaultSaveInterval = 250
)

// Cache owns the per-app product info records and their staleness
// state machine.
type Cache struct {
	path         string
	source       ProductSource
	logger       *slog.Logger
	chunkSize    int
	saveInterval int
	entries      map[uint32]*Entry
}

// Option configures the cache.
type Option func(*Cache)

// WithChunkSize sets how many app ids are fetched per batch.
func WithChunkSize(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithSaveInterval sets how many processed apps trigger a progress save
// during refresh.
func WithSaveInterval(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.saveInterval = n
		}
	}
}

// NewCache loads the steam cache from path. A missing file starts empty.
func NewCache(path string, source ProductSource, logger *slog.Logger, opts ...Option) (*Cache, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	c := &Cache{
		path:         path,
		source:       source,
		logger:       logging.NewComponentLogger(logger, "steam"),
		chunkSize:    defaultChunkSize,
		saveInterval: defaultSaveInterval,
		entries:      map[uint32]*Entry{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if path != "" {
		if err := resource.Load(path, &c.entries); err != nil {
			return nil, err
		}
	}
	if c.entries == nil {
		c.entries = map[uint32]*Entry{}
	}

	return c, nil
}

// Get returns the entry for an app id.
func (c *Cache) Get(appID uint32) (*Entry, bool) {
	entry, ok := c.entries[appID]
	return entry, ok
}

// Put inserts or replaces an entry.
func (c *Cache) Put(appID uint32, entry *Entry) {
	c.entries[appID] = entry
}

// Len returns the number of cached apps.
func (c *Cache) Len() int { return len(c.entries) }

// AppIDs returns all cached app ids in ascending order.
func (c *Cache) AppIDs() []uint32 {
	ids := make([]uint32, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Each visits every entry in ascending app id order.
func (c *Cache) Each(visit func(appID uint32, entry *Entry)) {
	for _, id := range c.AppIDs() {
		visit(id, c.entries[id])
	}
}

// Save persists the cache.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}
	return resource.Save(c.path, c.entries)
}

// RefreshOptions select the refresh work set.
type RefreshOptions struct {
	// OutdatedOnly restricts the scan to entries marked outdated.
	OutdatedOnly bool
	// AppIDs, when set, is the explicit work set and overrides the scan.
	AppIDs []uint32
	// Limit caps the scanned work set; zero means no cap.
	Limit int
	// From resumes the scan at the given app id.
	From uint32
}

// Refresh re-fetches product info for the selected apps in batches. An
// app id the source returns no record for is stored as an empty handled
// entry so it is not retried every run. Cancellation stops cleanly
// between batches; work completed so far stays in the cache.
func (c *Cache) Refresh(ctx context.Context, opts RefreshOptions) error {
	appIDs := opts.AppIDs
	if appIDs == nil {
		appIDs = c.selectAppIDs(opts)
	}

	processed := 0
	for start := 0; start < len(appIDs); start += c.chunkSize {
		if ctx.Err() != nil {
			c.logger.Info("refresh cancelled", logging.Int("processed", processed))
			break
		}

		end := start + c.chunkSize
		if end > len(appIDs) {
			end = len(appIDs)
		}
		batch := appIDs[start:end]
		c.logger.Info("fetching product info batch",
			logging.Uint64("first", uint64(batch[0])),
			logging.Uint64("last", uint64(batch[len(batch)-1])))

		info, err := c.source.FetchProducts(ctx, batch)
		if err != nil {
			return err
		}

		for _, appID := range batch {
			latest, ok := info.Lookup(appID)
			if !ok {
				c.logger.Warn("no product info for app", logging.Uint64(logging.FieldAppID, uint64(appID)))
				latest = Entry{State: stale.Handled}
			}
			c.entries[appID] = &latest

			processed++
			if c.saveInterval > 0 && processed%c.saveInterval == 0 {
				if err := c.Save(); err != nil {
					return err
				}
				c.logger.Info("saved refresh progress", logging.Int("processed", processed))
			}
		}
	}

	return nil
}

func (c *Cache) selectAppIDs(opts RefreshOptions) []uint32 {
	var out []uint32
	skipping := opts.From != 0
	for _, id := range c.AppIDs() {
		entry := c.entries[id]
		if opts.OutdatedOnly && entry.State != stale.Outdated {
			continue
		}
		if skipping {
			if id != opts.From {
				continue
			}
			skipping = false
		}
		out = append(out, id)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out
}

// TransitionStatesFrom bridges the two caches: every updated wiki entry
// with a primary Steam id marks that app outdated here, inserting a
// stub when the app was never cached, and the wiki entry itself becomes
// handled.
func (c *Cache) TransitionStatesFrom(wikiCache *wiki.Cache) {
	wikiCache.Each(func(_ string, entry *wiki.Entry) {
		if entry.State != stale.Updated {
			return
		}
		if id := entry.Steam; id != 0 {
			if existing, ok := c.entries[id]; ok {
				existing.State = stale.Outdated
			} else {
				c.entries[id] = &Entry{State: stale.Outdated}
			}
		}
		entry.State = stale.Handled
	})
}
