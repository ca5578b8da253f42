package cache

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const day = 24 * time.Hour

// Characters allowed in a video id used as a file name component
var safeVideoID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Engine resolves (video id, quality) pairs to a servable thumbnail URL.
//
// Concurrent misses for the same pair share a single fetch. Sweep and clear may
// delete a file a concurrent Resolve just served; the next Resolve fetches it again.
type Engine struct {
	store      *DiskStore
	fetcher    Fetcher
	retention  RetentionSource
	publicURL  string
	remoteBase string
	now        func() time.Time
	inflight   singleflight.Group
}

// Option configures an Engine
type Option func(*Engine)

// WithFetcher replaces the default HTTP fetcher
func WithFetcher(f Fetcher) Option {
	return func(e *Engine) {
		e.fetcher = f
	}
}

// WithRemoteBase replaces the thumbnail host prefix
func WithRemoteBase(base string) Option {
	return func(e *Engine) {
		e.remoteBase = base
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine storing files in cacheDir, served under publicURL.
// A cache directory that cannot be created is logged, not returned: the engine
// then degrades every request to the remote URL.
func New(cacheDir, publicURL string, retention RetentionSource, opts ...Option) *Engine {
	e := &Engine{
		store:      NewDiskStore(cacheDir),
		retention:  retention,
		publicURL:  strings.TrimSuffix(publicURL, "/"),
		remoteBase: DefaultRemoteBase,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fetcher == nil {
		e.fetcher = NewRestyFetcher(FetchTimeout)
	}

	if err := e.store.Init(); err != nil {
		logrus.Errorf("Failed to create cache directory %s: %v", cacheDir, err)
	}

	return e
}

// Dir returns the cache directory
func (e *Engine) Dir() string {
	return e.store.Dir()
}

// RemoteURL returns the remote thumbnail URL, unknown qualities mapping to maxresdefault
func (e *Engine) RemoteURL(videoID string, quality string) string {
	return RemoteURL(e.remoteBase, videoID, Quality(quality))
}

// URL is Resolve without the source tag
func (e *Engine) URL(ctx context.Context, videoID string, quality string) string {
	return e.Resolve(ctx, videoID, quality).URL
}

// Resolve returns the URL that should represent the thumbnail right now.
// It never fails: any fetch or write error yields the remote URL.
func (e *Engine) Resolve(ctx context.Context, videoID string, quality string) Result {
	q := Quality(quality).Normalize()
	remote := RemoteURL(e.remoteBase, videoID, q)

	if !safeVideoID.MatchString(videoID) {
		logrus.Warnf("Refusing to cache thumbnail for unsafe video id %q", videoID)
		return Result{URL: remote, Source: Degraded}
	}
	name := fileName(videoID, q)

	if e.isFresh(name) {
		return Result{URL: e.localURL(name), Source: Hit}
	}

	v, _, _ := e.inflight.Do(name, func() (interface{}, error) {
		return e.refresh(ctx, name, remote), nil
	})
	return v.(Result)
}

// refresh downloads remote and stores it under name
func (e *Engine) refresh(ctx context.Context, name, remote string) Result {
	data, err := e.fetcher.Fetch(ctx, remote)
	if err != nil {
		logrus.Warnf("Serving remote thumbnail %s: %v", remote, err)
		return Result{URL: remote, Source: Degraded}
	}

	if err := e.store.Write(name, data); err != nil {
		logrus.Errorf("Failed to cache thumbnail %s: %v", name, err)
		return Result{URL: remote, Source: Degraded}
	}

	return Result{URL: e.localURL(name), Source: Refetched}
}

// SweepExpired deletes files older than the retention window.
// Errors are logged and skipped.
func (e *Engine) SweepExpired() {
	cutoff := e.now().Add(-e.retentionWindow())

	removed := 0
	for _, f := range e.store.List() {
		if !f.modTime.Before(cutoff) {
			continue
		}
		if err := e.store.Remove(f.path); err != nil {
			logrus.Errorf("Failed to remove expired thumbnail: %v", err)
			continue
		}
		removed++
	}

	logrus.Infof("Swept %d expired thumbnails", removed)
}

// ClearAll deletes every file in the cache directory, keeping the directory itself
func (e *Engine) ClearAll() {
	removed := e.store.RemoveAll()
	logrus.Infof("Cleared %d cached thumbnails", removed)
}

// Stats counts every cached thumbnail regardless of freshness
func (e *Engine) Stats() Stats {
	var stats Stats
	for _, f := range e.store.List() {
		stats.Count++
		stats.TotalBytes += f.size
	}
	return stats
}

func (e *Engine) isFresh(name string) bool {
	modTime, ok := e.store.ModTime(name)
	if !ok {
		return false
	}
	return e.now().Sub(modTime) < e.retentionWindow()
}

func (e *Engine) retentionWindow() time.Duration {
	return time.Duration(e.retention.RetentionDays()) * day
}

func (e *Engine) localURL(name string) string {
	return e.publicURL + "/" + name
}

func fileName(videoID string, q Quality) string {
	return videoID + "_" + string(q) + fileExt
}
