package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"saveatlas/internal/fault"
	"saveatlas/internal/logging"
	"saveatlas/internal/resource"
	"saveatlas/internal/stale"
)

const defaultSaveInterval = 100

// Cache owns the per-article records and their staleness state machine.
// It has exactly one writer: the run that loaded it.
type Cache struct {
	path         string
	source       Source
	logger       *slog.Logger
	mapper       *Mapper
	saveInterval int
	overlap      time.Duration
	entries      map[string]*Entry
}

// Option configures the cache.
type Option func(*Cache)

// WithSaveInterval sets how many processed titles trigger a progress
// save during refresh.
func WithSaveInterval(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.saveInterval = n
		}
	}
}

// WithRecentChangesOverlap sets how far before the checkpoint the
// recent-changes window starts, to tolerate clock skew.
func WithRecentChangesOverlap(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.overlap = d
		}
	}
}

// NewCache loads the wiki cache from path. A missing file starts empty.
func NewCache(path string, source Source, logger *slog.Logger, opts ...Option) (*Cache, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	c := &Cache{
		path:         path,
		source:       source,
		logger:       logging.NewComponentLogger(logger, "wiki"),
		mapper:       NewMapper(),
		saveInterval: defaultSaveInterval,
		overlap:      time.Minute,
		entries:      map[string]*Entry{},
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
		c.entries = map[string]*Entry{}
	}

	return c, nil
}

// Mapper returns the shared macro lookup table.
func (c *Cache) Mapper() *Mapper { return c.mapper }

// Get returns the entry for a title.
func (c *Cache) Get(title string) (*Entry, bool) {
	entry, ok := c.entries[title]
	return entry, ok
}

// Put inserts or replaces an entry.
func (c *Cache) Put(title string, entry *Entry) {
	c.entries[title] = entry
}

// Len returns the number of cached articles.
func (c *Cache) Len() int { return len(c.entries) }

// Titles returns all cached titles in sorted order.
func (c *Cache) Titles() []string {
	titles := make([]string, 0, len(c.entries))
	for title := range c.entries {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

// Each visits every entry in sorted title order.
func (c *Cache) Each(visit func(title string, entry *Entry)) {
	for _, title := range c.Titles() {
		visit(title, c.entries[title])
	}
}

// PrimaryIDs collects the storefront identifiers claimed as primary by
// any entry, used to filter side identifiers during resolution.
type PrimaryIDs struct {
	Steam map[uint32]bool
	Gog   map[uint64]bool
}

// PrimaryIDs returns the primary identifier sets across all entries.
func (c *Cache) PrimaryIDs() PrimaryIDs {
	out := PrimaryIDs{Steam: map[uint32]bool{}, Gog: map[uint64]bool{}}
	for _, entry := range c.entries {
		if entry.Steam != 0 {
			out.Steam[entry.Steam] = true
		}
		if entry.Gog != 0 {
			out.Gog[entry.Gog] = true
		}
	}
	return out
}

// Save persists the cache.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}
	return resource.Save(c.path, c.entries)
}

// FlagRecentChanges marks entries changed on the wiki since the last
// checkpoint as outdated, detecting renames by page id and inserting
// brand-new game articles. The checkpoint advances only when the whole
// pass succeeds.
func (c *Cache) FlagRecentChanges(ctx context.Context, meta *Meta) error {
	start := meta.LastCheckedRecentChanges.Add(-c.overlap)
	end := time.Now().UTC()
	c.logger.Info("checking recent changes",
		logging.String("start", start.Format(time.RFC3339)),
		logging.String("end", end.Format(time.RFC3339)))

	listed, err := c.source.RecentChanges(ctx, start, end)
	if err != nil {
		return err
	}

	// Redirect stubs are skipped: the change entry for the new page
	// name carries the update.
	changed := map[string]uint64{}
	for _, change := range listed {
		if !change.Redirect {
			changed[change.Title] = change.PageID
		}
	}

	titles := make([]string, 0, len(changed))
	for title := range changed {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	for _, title := range titles {
		pageID := changed[title]

		if entry, ok := c.entries[title]; ok {
			// Existing entry has been edited.
			c.logger.Debug("flagging edited article", logging.String(logging.FieldTitle, title))
			entry.State = stale.Outdated
			continue
		}

		// A page-id match on another title is a confirmed rename; it
		// takes priority over the category check below.
		if oldTitle, ok := c.findByPageID(pageID); ok {
			c.logger.Info("article renamed",
				logging.String(logging.FieldTitle, title),
				logging.String("previous_title", oldTitle))
			entry := c.entries[oldTitle]
			delete(c.entries, oldTitle)
			entry.PageID = pageID
			entry.State = stale.Outdated
			entry.RenamedFrom = appendRename(entry.RenamedFrom, oldTitle)
			c.entries[title] = entry
			continue
		}

		isGame, err := c.source.IsGameArticle(ctx, title)
		if err != nil {
			// Non-fatal: this title is simply skipped this cycle.
			c.logger.Warn("unable to check whether article is a game",
				logging.String(logging.FieldTitle, title),
				logging.Error(err))
			continue
		}
		if isGame {
			c.logger.Info("caching new article", logging.String(logging.FieldTitle, title))
			c.entries[title] = &Entry{PageID: pageID, State: stale.Outdated}
		}
	}

	meta.LastCheckedRecentChanges = end
	return nil
}

// AddNewArticles walks the games category and caches titles not seen
// before, applying the same rename-by-page-id policy as the
// recent-changes pass.
func (c *Cache) AddNewArticles(ctx context.Context) error {
	members, err := c.source.GameArticles(ctx)
	if err != nil {
		return err
	}

	for _, member := range members {
		if ctx.Err() != nil {
			break
		}

		if _, ok := c.entries[member.Title]; ok {
			continue
		}

		if oldTitle, ok := c.findByPageID(member.PageID); ok {
			c.logger.Info("article renamed",
				logging.String(logging.FieldTitle, member.Title),
				logging.String("previous_title", oldTitle))
			entry := c.entries[oldTitle]
			delete(c.entries, oldTitle)
			entry.State = stale.Outdated
			entry.RenamedFrom = appendRename(entry.RenamedFrom, oldTitle)
			c.entries[member.Title] = entry
			continue
		}

		c.logger.Debug("caching new article", logging.String(logging.FieldTitle, member.Title))
		c.entries[member.Title] = &Entry{PageID: member.PageID, State: stale.Outdated}
	}

	return nil
}

// RefreshOptions select the refresh work set.
type RefreshOptions struct {
	// OutdatedOnly restricts the scan to entries marked outdated.
	OutdatedOnly bool
	// Titles, when set, is the explicit work set and overrides the scan.
	Titles []string
	// Limit caps the scanned work set; zero means no cap.
	Limit int
	// From resumes the scan at the given title.
	From string
}

// Refresh re-fetches the selected articles, following redirects and
// resolving renames. Cancellation stops cleanly between titles; work
// completed so far stays in the cache.
func (c *Cache) Refresh(ctx context.Context, opts RefreshOptions) error {
	titles := opts.Titles
	if titles == nil {
		titles = c.selectTitles(opts)
	}

	processed := 0
	for _, title := range titles {
		if ctx.Err() != nil {
			c.logger.Info("refresh cancelled", logging.Int("processed", processed))
			break
		}

		if err := c.refreshOne(ctx, title); err != nil {
			return err
		}

		processed++
		if c.saveInterval > 0 && processed%c.saveInterval == 0 {
			if err := c.Save(); err != nil {
				return err
			}
			c.logger.Info("saved refresh progress", logging.Int("processed", processed))
		}
	}

	return nil
}

func (c *Cache) selectTitles(opts RefreshOptions) []string {
	var out []string
	skipping := opts.From != ""
	for _, title := range c.Titles() {
		entry := c.entries[title]
		if opts.OutdatedOnly && entry.State != stale.Outdated {
			continue
		}
		if skipping {
			if title != opts.From {
				continue
			}
			skipping = false
		}
		out = append(out, title)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out
}

func (c *Cache) refreshOne(ctx context.Context, title string) error {
	var cached Entry
	if existing, ok := c.entries[title]; ok {
		cached = *existing
	}

	c.logger.Info("refreshing article", logging.String(logging.FieldTitle, title))

	latest, err := c.fetchEntry(ctx, title)
	switch {
	case err == nil:
		latest.RenamedFrom = append([]string(nil), cached.RenamedFrom...)

		if latest.NewTitle != "" {
			newTitle := latest.NewTitle
			latest.NewTitle = ""
			c.logger.Info("article redirected",
				logging.Uint64(logging.FieldPageID, cached.PageID),
				logging.String("new_title", newTitle))
			return c.relocate(ctx, title, newTitle, latest)
		}

		c.entries[title] = latest
		return nil

	case errors.Is(err, fault.ErrPageMissing):
		// Couldn't find it by name, so try again by id. This happens
		// for pages moved without leaving a redirect; moves with a
		// redirect are handled by the recent-changes pass.
		newTitle, found, err := c.source.PageTitleByID(ctx, cached.PageID)
		if err != nil {
			return err
		}
		if !found {
			c.logger.Info("article no longer exists", logging.String(logging.FieldTitle, title))
			delete(c.entries, title)
			return nil
		}

		c.logger.Info("article renamed",
			logging.Uint64(logging.FieldPageID, cached.PageID),
			logging.String("new_title", newTitle))

		latest, err := c.fetchEntry(ctx, newTitle)
		if errors.Is(err, fault.ErrPageMissing) {
			c.logger.Info("article no longer exists", logging.String(logging.FieldTitle, newTitle))
			delete(c.entries, title)
			return nil
		}
		if err != nil {
			return err
		}

		if latest.NewTitle != "" {
			newTitle = latest.NewTitle
			latest.NewTitle = ""
		}

		latest.RenamedFrom = append([]string(nil), cached.RenamedFrom...)
		return c.relocate(ctx, title, newTitle, latest)

	default:
		return err
	}
}

// relocate moves a refreshed record under a new canonical title,
// verifying the destination still counts as a game and accumulating
// rename history from both the old record and any record already at the
// destination.
func (c *Cache) relocate(ctx context.Context, oldTitle, newTitle string, latest *Entry) error {
	isGame, err := c.source.IsGameArticle(ctx, newTitle)
	if err != nil {
		return err
	}
	if !isGame {
		c.logger.Info("article is no longer a game", logging.String(logging.FieldTitle, newTitle))
		delete(c.entries, oldTitle)
		return nil
	}

	if existing, ok := c.entries[newTitle]; ok {
		for _, rename := range existing.RenamedFrom {
			latest.RenamedFrom = appendRename(latest.RenamedFrom, rename)
		}
	}
	latest.RenamedFrom = appendRename(latest.RenamedFrom, oldTitle)

	delete(c.entries, oldTitle)
	c.entries[newTitle] = latest
	return nil
}

func (c *Cache) fetchEntry(ctx context.Context, title string) (*Entry, error) {
	page, err := c.source.FetchPage(ctx, title)
	if err != nil {
		return nil, err
	}
	entry := parsePage(title, page)
	if entry.Malformed {
		c.logger.Warn("article markup is malformed", logging.String(logging.FieldTitle, title))
	}
	return entry, nil
}

func (c *Cache) findByPageID(pageID uint64) (string, bool) {
	// Sorted scan keeps the result deterministic if the invariant of
	// unique page ids is ever violated by hand-edited cache data.
	for _, title := range c.Titles() {
		if c.entries[title].PageID == pageID {
			return title, true
		}
	}
	return "", false
}

func appendRename(history []string, title string) []string {
	for _, have := range history {
		if have == title {
			return history
		}
	}
	return append(history, title)
}

// Meta is the wiki checkpoint metadata resource.
type Meta struct {
	LastCheckedRecentChanges time.Time `yaml:"lastCheckedRecentChanges"`
}

// Init backdates a fresh checkpoint so the first recent-changes pass
// looks at the previous day.
func (m *Meta) Init() {
	if m.LastCheckedRecentChanges.IsZero() {
		m.LastCheckedRecentChanges = time.Now().UTC().Add(-24 * time.Hour)
	}
}

// Describe summarizes the checkpoint for logs.
func (m *Meta) Describe() string {
	return fmt.Sprintf("last checked %s", m.LastCheckedRecentChanges.Format(time.RFC3339))
}

// MalformedTitles lists the titles flagged as having malformed markup.
func (c *Cache) MalformedTitles() []string {
	var out []string
	for _, title := range c.Titles() {
		if c.entries[title].Malformed {
			out = append(out, title)
		}
	}
	return out
}
