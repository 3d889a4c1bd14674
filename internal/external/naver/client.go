package naver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/VolumeQuant/quantcore/pkg/config"
	"github.com/VolumeQuant/quantcore/pkg/httputil"
	"github.com/VolumeQuant/quantcore/pkg/logger"
)

// Client handles communication with Naver Finance.
// ⭐ SSOT: Naver Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	chartURL   string
}

// NewClient creates a new Naver Finance client. Rate limiting and
// retry policy live on the shared HTTP client.
func NewClient(cfg config.NaverConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("source", "naver"),
		baseURL:    cfg.BaseURL,
		chartURL:   cfg.ChartURL,
	}
}

// fetchHTML fetches an HTML page from Naver Finance.
func (c *Client) fetchHTML(ctx context.Context, path string, params url.Values) (io.ReadCloser, error) {
	fullURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		"Referer":    c.baseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}
