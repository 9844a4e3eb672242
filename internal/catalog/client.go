package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"cmrstac/internal/config"
	"cmrstac/internal/util"
)

const (
	collectionsSearchPath = "search/collections.json"
	ummResultsAccept      = "application/vnd.nasa.cmr.umm_results+json; version=1.10"
)

// Client searches the CMR collections endpoint.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

func NewClient(cfg config.Config) *Client {
	base := &http.Client{Timeout: time.Duration(cfg.CMRTimeoutMs) * time.Millisecond}
	return &Client{
		cfg:        cfg,
		httpClient: withToken(base, cfg.CMRToken),
		limiter:    NewRateLimiter(cfg.CMRRateLimitRPS),
	}
}

// withToken wraps base so every request carries an Earthdata bearer token.
func withToken(base *http.Client, token string) *http.Client {
	if strings.TrimSpace(token) == "" {
		return base
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	client.Timeout = base.Timeout
	return client
}

// SearchCollections runs a wildcard keyword search and returns the response
// body undecoded, so it can be archived before feed.entry is read.
func (c *Client) SearchCollections(ctx context.Context, keyword string) ([]byte, error) {
	query := util.KeywordQuery(keyword)
	if query == "" {
		return nil, fmt.Errorf("empty keyword")
	}

	endpoint, err := url.JoinPath(c.cfg.CMRAPIURL, collectionsSearchPath)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{"keyword": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.CMRUserAgent)
	req.Header.Set("Accept", ummResultsAccept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("cmr api error: status=%d body=%s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
