package artwork

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	fetchTimeout = 10 * time.Second
	maxImageSize = 10 * 1024 * 1024
)

// HTTPFetcher downloads cover art over HTTP. No retries: a failed
// download means the notification for that event is dropped.
type HTTPFetcher struct {
	logger *zap.Logger
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with a bounded request timeout so a
// hung download cannot wedge the dispatcher worker.
func NewHTTPFetcher(logger *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		logger: logger,
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch downloads the image at url and returns its bytes.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build artwork request: %w", err)
	}
	req.Header.Set("User-Agent", "roonmpris/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("url is not an image: %s", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("read artwork body: %w", err)
	}

	f.logger.Debug("artwork fetched",
		zap.Int("bytes", len(data)),
		zap.String("url", url))
	return data, nil
}
