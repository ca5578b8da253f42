package config

import "sync"

// Options is a goroutine-safe, mutable view of the embed options.
// Values stored through Set are sanitized first.
type Options struct {
	mu   sync.RWMutex
	opts EmbedOptions
}

func NewOptions(o EmbedOptions) *Options {
	return &Options{opts: Sanitize(o)}
}

// Get returns a copy of the current options
func (o *Options) Get() EmbedOptions {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.opts
}

// Set replaces the current options
func (o *Options) Set(opts EmbedOptions) {
	opts = Sanitize(opts)
	o.mu.Lock()
	o.opts = opts
	o.mu.Unlock()
}

// RetentionDays returns the configured cache duration in days
func (o *Options) RetentionDays() int {
	return o.Get().CacheDuration
}

// DefaultQuality returns the configured thumbnail quality
func (o *Options) DefaultQuality() string {
	return o.Get().ThumbnailQuality
}
