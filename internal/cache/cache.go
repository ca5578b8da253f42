// Handles caching of remote video thumbnails on local disk
package cache

import "context"

// Fetcher downloads a remote thumbnail.
// It returns an error for anything other than a 200 response with a non-empty body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RetentionSource reports the current retention window in days.
// It is consulted on every freshness check, so changes apply immediately.
type RetentionSource interface {
	RetentionDays() int
}

// RetentionDays is a fixed RetentionSource
type RetentionDays int

func (d RetentionDays) RetentionDays() int {
	return int(d)
}

// Source tells how a Result was produced
type Source int

const (
	// Hit means a fresh local file was served
	Hit Source = iota
	// Refetched means the thumbnail was downloaded and persisted
	Refetched
	// Degraded means the remote URL is returned because local caching failed
	Degraded
)

func (s Source) String() string {
	switch s {
	case Hit:
		return "hit"
	case Refetched:
		return "refetched"
	case Degraded:
		return "degraded"
	default:
		return "unknown"
	}
}

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the outcome of a Resolve call
type Result struct {
	URL    string `json:"url"`
	Source Source `json:"source"`
}

// Stats summarizes the files currently in the cache, fresh or stale
type Stats struct {
	Count      int   `json:"count"`
	TotalBytes int64 `json:"total_bytes"`
}
