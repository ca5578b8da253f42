package tests

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"

	"github.com/iTrooz/thumbnail-cache/internal/cache"
	"github.com/iTrooz/thumbnail-cache/internal/config"
	"github.com/iTrooz/thumbnail-cache/internal/server"
)

// upstream is a fake thumbnail host
type upstream struct {
	*httptest.Server
	hits atomic.Int32
}

// fixture_upstream creates a thumbnail host answering 500 byte images for every
// path except those containing "missing", which get a 404
func fixture_upstream() *upstream {
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, requ *http.Request) {
		u.hits.Add(1)
		if strings.Contains(requ.URL.Path, "missing") {
			http.NotFound(w, requ)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(bytes.Repeat([]byte{0xd8}, 500))
	}))
	return u
}

// fixture_config creates a test config pointing at the upstream
func fixture_config(upstreamURL, tempDir string) *config.Config {
	cfg := config.Default()
	cfg.Cache.Folder = tempDir
	cfg.Cache.PublicURL = "https://blog.example.com/thumbnails"
	cfg.Cache.RemoteBase = upstreamURL
	return &cfg
}

// fixture_server wires an engine and HTTP surface from cfg
func fixture_server(cfg *config.Config) (*server.Server, *cache.Engine) {
	options := config.NewOptions(cfg.Options)
	engine := cache.New(cfg.Cache.Folder, cfg.Cache.PublicURL, options,
		cache.WithRemoteBase(cfg.Cache.RemoteBase),
	)
	return server.New(cfg, options, engine), engine
}
