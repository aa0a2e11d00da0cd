package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dom/superhero-teams/internal/domain"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	DefaultURL     = "https://akabab.github.io/superhero-api/api/all.json"
	defaultTimeout = 30 * time.Second
	maxPayloadSize = 32 << 20
)

// Client performs the single bulk read of the remote catalog.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(url string, timeout time.Duration, logger *zap.Logger) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("catalog"),
	}
}

// FetchAll downloads and decodes the full catalog. Any non-2xx response or a
// payload that is not a JSON array fails the whole fetch.
func (c *Client) FetchAll(ctx context.Context) ([]RawHero, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrCatalogUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrCatalogUnavailable, err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", domain.ErrCatalogMalformed)
	}
	payload := gjson.ParseBytes(body)
	if !payload.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of heroes", domain.ErrCatalogMalformed)
	}

	var raws []RawHero
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogMalformed, err)
	}

	c.logger.Info("fetched catalog",
		zap.String("url", c.url),
		zap.Int64("records", payload.Get("#").Int()),
	)
	return raws, nil
}
