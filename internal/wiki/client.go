package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"saveatlas/internal/fault"
)

const (
	defaultBaseURL     = "https://www.pcgamingwiki.com/w/api.php"
	defaultUserAgent   = "saveatlas/dev"
	defaultPageLimit   = 500
	defaultHTTPTimeout = 60 * time.Second

	gamesCategory = "Category:Games"
)

// ClientConfig describes the MediaWiki client configuration.
type ClientConfig struct {
	BaseURL    string
	UserAgent  string
	PageLimit  int
	HTTPClient *http.Client
}

// Client queries a MediaWiki instance. It implements Source.
type Client struct {
	baseURL   *url.URL
	userAgent string
	pageLimit int
	http      *http.Client
}

var _ Source = (*Client)(nil)

// NewClient creates a Client from the supplied configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("wiki: parse base url: %w", err)
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	pageLimit := cfg.PageLimit
	if pageLimit <= 0 {
		pageLimit = defaultPageLimit
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		pageLimit: pageLimit,
		http:      client,
	}, nil
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type parseResponse struct {
	Error *apiError `json:"error"`
	Parse *struct {
		Title    string `json:"title"`
		PageID   uint64 `json:"pageid"`
		Wikitext string `json:"wikitext"`
	} `json:"parse"`
}

// FetchPage returns the raw markup of an article, following redirects.
func (c *Client) FetchPage(ctx context.Context, title string) (Page, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "wikitext")
	params.Set("redirects", "1")

	var payload parseResponse
	if err := c.call(ctx, params, &payload); err != nil {
		return Page{}, err
	}
	if payload.Error != nil {
		if payload.Error.Code == "missingtitle" {
			return Page{}, fault.ErrPageMissing
		}
		return Page{}, fmt.Errorf("wiki: parse %q: %s: %s", title, payload.Error.Code, payload.Error.Info)
	}
	if payload.Parse == nil {
		return Page{}, fault.Data("parse")
	}
	return Page{
		Title:    payload.Parse.Title,
		PageID:   payload.Parse.PageID,
		Wikitext: payload.Parse.Wikitext,
	}, nil
}

type queryResponse struct {
	Error    *apiError         `json:"error"`
	Continue map[string]string `json:"continue"`
	Query    *struct {
		Pages []struct {
			Title      string `json:"title"`
			PageID     uint64 `json:"pageid"`
			Missing    bool   `json:"missing"`
			Categories []struct {
				Title string `json:"title"`
			} `json:"categories"`
		} `json:"pages"`
		RecentChanges []struct {
			Title    string `json:"title"`
			PageID   uint64 `json:"pageid"`
			Redirect bool   `json:"redirect"`
		} `json:"recentchanges"`
		CategoryMembers []struct {
			Title  string `json:"title"`
			PageID uint64 `json:"pageid"`
		} `json:"categorymembers"`
	} `json:"query"`
}

// PageTitleByID resolves a page identifier to its current title.
func (c *Client) PageTitleByID(ctx context.Context, id uint64) (string, bool, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("pageids", strconv.FormatUint(id, 10))

	var payload queryResponse
	if err := c.call(ctx, params, &payload); err != nil {
		return "", false, err
	}
	if payload.Error != nil {
		return "", false, fmt.Errorf("wiki: query page id %d: %s: %s", id, payload.Error.Code, payload.Error.Info)
	}
	if payload.Query == nil || len(payload.Query.Pages) == 0 {
		return "", false, fault.Data("query.pages")
	}
	page := payload.Query.Pages[0]
	if page.Missing || page.Title == "" {
		return "", false, nil
	}
	return page.Title, true, nil
}

// IsGameArticle reports whether the titled article belongs to the games
// category.
func (c *Client) IsGameArticle(ctx context.Context, title string) (bool, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", title)
	params.Set("prop", "categories")
	params.Set("cllimit", "max")

	for {
		var payload queryResponse
		if err := c.call(ctx, params, &payload); err != nil {
			return false, err
		}
		if payload.Error != nil {
			return false, fmt.Errorf("wiki: query categories of %q: %s: %s", title, payload.Error.Code, payload.Error.Info)
		}
		if payload.Query == nil || len(payload.Query.Pages) == 0 {
			return false, fault.Data("query.pages")
		}
		for _, category := range payload.Query.Pages[0].Categories {
			if category.Title == gamesCategory {
				return true, nil
			}
		}
		if !continueQuery(params, payload.Continue) {
			return false, nil
		}
	}
}

// RecentChanges lists mainspace edit/new changes in the window, oldest
// first.
func (c *Client) RecentChanges(ctx context.Context, start, end time.Time) ([]RecentChange, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "recentchanges")
	params.Set("rcprop", "title|ids|redirect")
	params.Set("rcdir", "newer")
	params.Set("rcnamespace", "0")
	params.Set("rctype", "edit|new")
	params.Set("rclimit", strconv.Itoa(c.pageLimit))
	params.Set("rcstart", start.UTC().Format(time.RFC3339))
	params.Set("rcend", end.UTC().Format(time.RFC3339))

	var out []RecentChange
	for {
		var payload queryResponse
		if err := c.call(ctx, params, &payload); err != nil {
			return nil, err
		}
		if payload.Error != nil {
			return nil, fmt.Errorf("wiki: query recent changes: %s: %s", payload.Error.Code, payload.Error.Info)
		}
		if payload.Query == nil {
			return nil, fault.Data("query.recentchanges")
		}
		for _, change := range payload.Query.RecentChanges {
			out = append(out, RecentChange{
				Title:    change.Title,
				PageID:   change.PageID,
				Redirect: change.Redirect,
			})
		}
		if !continueQuery(params, payload.Continue) {
			return out, nil
		}
	}
}

// GameArticles lists the members of the games category.
func (c *Client) GameArticles(ctx context.Context) ([]CategoryMember, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "categorymembers")
	params.Set("cmtitle", gamesCategory)
	params.Set("cmlimit", strconv.Itoa(c.pageLimit))

	var out []CategoryMember
	for {
		var payload queryResponse
		if err := c.call(ctx, params, &payload); err != nil {
			return nil, err
		}
		if payload.Error != nil {
			return nil, fmt.Errorf("wiki: query category members: %s: %s", payload.Error.Code, payload.Error.Info)
		}
		if payload.Query == nil {
			return nil, fault.Data("query.categorymembers")
		}
		for _, member := range payload.Query.CategoryMembers {
			out = append(out, CategoryMember{Title: member.Title, PageID: member.PageID})
		}
		if !continueQuery(params, payload.Continue) {
			return out, nil
		}
	}
}

// call performs one API request and decodes the JSON response.
func (c *Client) call(ctx context.Context, params url.Values, payload any) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	endpoint := *c.baseURL
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("wiki: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", fault.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: unexpected status %s", fault.ErrSourceUnavailable, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(payload); err != nil {
		return fmt.Errorf("wiki: decode response: %w", err)
	}
	return nil
}

// continueQuery folds the continuation tokens into params and reports
// whether another page remains.
func continueQuery(params url.Values, tokens map[string]string) bool {
	if len(tokens) == 0 {
		return false
	}
	for key, value := range tokens {
		params.Set(key, value)
	}
	return true
}
