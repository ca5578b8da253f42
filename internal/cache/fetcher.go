package cache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// FetchTimeout bounds a single remote thumbnail download
const FetchTimeout = 15 * time.Second

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrEmptyBody        = errors.New("empty response body")
)

// RestyFetcher implements Fetcher over HTTP
type RestyFetcher struct {
	client *resty.Client
}

// NewRestyFetcher creates a fetcher whose requests time out after timeout
func NewRestyFetcher(timeout time.Duration) *RestyFetcher {
	return &RestyFetcher{
		client: resty.New().SetTimeout(timeout),
	}
}

// Fetch downloads url
func (f *RestyFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %w: %s", url, ErrUnexpectedStatus, resp.Status())
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, ErrEmptyBody)
	}

	return body, nil
}
