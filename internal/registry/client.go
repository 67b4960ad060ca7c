// Package registry wraps the remote mod registry's read-only JSON API.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"nova/internal/domain"
)

// Client talks to the remote mod registry.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a registry client. If httpClient is nil,
// http.DefaultClient is used.
func NewClient(httpClient *http.Client, baseURL, userAgent string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

// doRequest performs a GET against path and decodes the JSON body into result.
func (c *Client) doRequest(ctx context.Context, path string, result any) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing response body: %w", cerr)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: registry resource %s", domain.ErrModNotFound, path)
	}

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 10*1024))
		if readErr != nil {
			return fmt.Errorf("%w: registry status %d; reading body: %v", domain.ErrDownloadFailed, resp.StatusCode, readErr)
		}
		return fmt.Errorf("%w: registry status %d: %s", domain.ErrDownloadFailed, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decoding response: %v", domain.ErrValidationFailed, err)
	}

	return nil
}

// GetMod fetches a mod summary by ID.
func (c *Client) GetMod(ctx context.Context, modID string) (*Mod, error) {
	var mod Mod
	if err := c.doRequest(ctx, "/mods/"+url.PathEscape(modID), &mod); err != nil {
		return nil, fmt.Errorf("getting mod %s: %w", modID, err)
	}
	if err := mod.validate(); err != nil {
		return nil, err
	}
	return &mod, nil
}

// GetModInfo fetches the extended description for a mod.
func (c *Client) GetModInfo(ctx context.Context, modID string) (*ModInfo, error) {
	var info ModInfo
	if err := c.doRequest(ctx, "/mods/"+url.PathEscape(modID)+"/info", &info); err != nil {
		return nil, fmt.Errorf("getting mod info %s: %w", modID, err)
	}
	return &info, nil
}

// GetModVersions fetches the full version list for a mod.
func (c *Client) GetModVersions(ctx context.Context, modID string) ([]ModVersion, error) {
	var versions []ModVersion
	if err := c.doRequest(ctx, "/mods/"+url.PathEscape(modID)+"/versions", &versions); err != nil {
		return nil, fmt.Errorf("getting versions for %s: %w", modID, err)
	}
	for i := range versions {
		if err := versions[i].validate(); err != nil {
			return nil, err
		}
	}
	return versions, nil
}

// GetVersionInfo fetches install metadata for one mod version.
func (c *Client) GetVersionInfo(ctx context.Context, modID, version string) (*VersionInfo, error) {
	path := "/mods/" + url.PathEscape(modID) + "/versions/" + url.PathEscape(version) + "/info"
	var info VersionInfo
	if err := c.doRequest(ctx, path, &info); err != nil {
		return nil, fmt.Errorf("getting version info %s@%s: %w", modID, version, err)
	}
	if err := info.validate(); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListMods fetches a page of the newest mods.
func (c *Client) ListMods(ctx context.Context, limit, offset int) ([]Mod, error) {
	path := "/mods?" + pageParams(limit, offset).Encode()
	var mods []Mod
	if err := c.doRequest(ctx, path, &mods); err != nil {
		return nil, fmt.Errorf("listing mods: %w", err)
	}
	for i := range mods {
		if err := mods[i].validate(); err != nil {
			return nil, err
		}
	}
	return mods, nil
}

// SearchMods fetches a page of mods matching query. An empty query lists the
// newest mods instead.
func (c *Client) SearchMods(ctx context.Context, query string, limit, offset int) ([]Mod, error) {
	if query == "" {
		return c.ListMods(ctx, limit, offset)
	}

	params := pageParams(limit, offset)
	params.Set("q", query)

	var mods []Mod
	if err := c.doRequest(ctx, "/mods/search?"+params.Encode(), &mods); err != nil {
		return nil, fmt.Errorf("searching mods: %w", err)
	}
	for i := range mods {
		if err := mods[i].validate(); err != nil {
			return nil, err
		}
	}
	return mods, nil
}

// GetNews fetches the launcher news feed.
func (c *Client) GetNews(ctx context.Context) ([]NewsItem, error) {
	var items []NewsItem
	if err := c.doRequest(ctx, "/news", &items); err != nil {
		return nil, fmt.Errorf("getting news: %w", err)
	}
	for i := range items {
		if err := items[i].validate(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// GetNewsItem fetches one news entry by ID.
func (c *Client) GetNewsItem(ctx context.Context, id int64) (*NewsItem, error) {
	var item NewsItem
	if err := c.doRequest(ctx, "/news/"+strconv.FormatInt(id, 10), &item); err != nil {
		return nil, fmt.Errorf("getting news item %d: %w", id, err)
	}
	if err := item.validate(); err != nil {
		return nil, err
	}
	return &item, nil
}

func pageParams(limit, offset int) url.Values {
	if limit <= 0 {
		limit = 20
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	return params
}
