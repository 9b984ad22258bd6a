// Package index talks to the hatchery package index: per-package metadata,
// basket listings and basket searches.
package index

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/glorpus-work/woezel/internal/logger"
	"github.com/glorpus-work/woezel/pkg/model"
)

const (
	DefaultHost   = "badge.team"
	DefaultBasket = "gameon"
)

// Client fetches index documents over an Opener.
type Client struct {
	opener Opener
	host   string
	basket string
}

var _ Fetcher = (*Client)(nil)

// NewClient creates a Client. Empty host or basket fall back to the defaults.
func NewClient(opener Opener, host, basket string) *Client {
	if host == "" {
		host = DefaultHost
	}
	if basket == "" {
		basket = DefaultBasket
	}
	return &Client{opener: opener, host: host, basket: basket}
}

// Host returns the index host.
func (c *Client) Host() string { return c.host }

// Basket returns the hardware basket listings and searches are scoped to.
func (c *Client) Basket() string { return c.basket }

// MetadataURL returns the metadata URL of a package, path-escaped.
func (c *Client) MetadataURL(name string) string {
	return fmt.Sprintf("https://%s/eggs/get/%s/json", c.host, url.PathEscape(name))
}

// ListURL returns the listing URL of the basket.
func (c *Client) ListURL() string {
	return fmt.Sprintf("https://%s/basket/%s/list/json", c.host, c.basket)
}

// SearchURL returns the search URL for query, path-escaped.
func (c *Client) SearchURL(query string) string {
	return fmt.Sprintf("https://%s/basket/%s/search/%s/json", c.host, c.basket, url.PathEscape(query))
}

func (c *Client) GetMetadata(ctx context.Context, name string) (*model.PackageMetadata, error) {
	body, err := c.opener.Open(ctx, c.MetadataURL(name))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	meta, err := model.DecodeMetadata(body)
	if err != nil {
		return nil, err
	}
	logger.Debug("fetched metadata", logger.Fields{"package": name, "version": meta.LatestVersion()})
	return meta, nil
}

func (c *Client) ListAll(ctx context.Context) ([]model.PackageSummary, error) {
	return c.summaries(ctx, c.ListURL())
}

// Search returns the packages matching query. An empty query or "*" lists
// the whole basket.
func (c *Client) Search(ctx context.Context, query string) ([]model.PackageSummary, error) {
	if query == "" || query == "*" {
		return c.ListAll(ctx)
	}
	return c.summaries(ctx, c.SearchURL(query))
}

func (c *Client) summaries(ctx context.Context, rawURL string) ([]model.PackageSummary, error) {
	body, err := c.opener.Open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return nonNilSummaries(body)
}

func nonNilSummaries(body io.Reader) ([]model.PackageSummary, error) {
	summaries, err := model.DecodeSummaries(body)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []model.PackageSummary{}
	}
	return summaries, nil
}
