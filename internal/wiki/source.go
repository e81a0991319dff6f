package wiki

import (
	"context"
	"time"
)

// Page is the raw article payload needed by the cache.
type Page struct {
	// Title is the final title after following redirects; it may differ
	// from the requested title.
	Title    string
	PageID   uint64
	Wikitext string
}

// RecentChange is one entry from the recent-changes listing.
type RecentChange struct {
	Title    string
	PageID   uint64
	Redirect bool
}

// CategoryMember is one entry from a category-membership listing.
type CategoryMember struct {
	Title  string
	PageID uint64
}

// Source is the external wiki query collaborator. Implementations must
// return fault.ErrPageMissing from FetchPage for unknown titles and wrap
// transport failures with fault.ErrSourceUnavailable.
type Source interface {
	// FetchPage returns the raw markup of an article, following
	// redirects.
	FetchPage(ctx context.Context, title string) (Page, error)
	// PageTitleByID resolves a page identifier to its current title.
	// The second result is false when the page no longer exists.
	PageTitleByID(ctx context.Context, id uint64) (string, bool, error)
	// IsGameArticle reports whether the titled article is categorized
	// as a game.
	IsGameArticle(ctx context.Context, title string) (bool, error)
	// RecentChanges lists mainspace edit/new changes in the window.
	RecentChanges(ctx context.Context, start, end time.Time) ([]RecentChange, error)
	// GameArticles lists the members of the games category.
	GameArticles(ctx context.Context) ([]CategoryMember, error)
}
