package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/sirupsen/logrus"

	"github.com/iTrooz/thumbnail-cache/internal/cache"
	"github.com/iTrooz/thumbnail-cache/internal/config"
	"github.com/iTrooz/thumbnail-cache/internal/videoid"
)

// ThumbnailCache is the part of the cache engine the HTTP surface uses
type ThumbnailCache interface {
	Resolve(ctx context.Context, videoID string, quality string) cache.Result
	ClearAll()
	Stats() cache.Stats
	Dir() string
}

// Server exposes the thumbnail cache over HTTP
type Server struct {
	config  *config.Config
	options *config.Options
	cache   ThumbnailCache
	app     *fiber.App
}

// ThumbnailResponse is the body of a thumbnail lookup
type ThumbnailResponse struct {
	VideoID string       `json:"video_id"`
	Quality string       `json:"quality"`
	URL     string       `json:"url"`
	Source  cache.Source `json:"source"`
}

// New creates a new server and registers its routes
func New(cfg *config.Config, options *config.Options, thumbnails ThumbnailCache) *Server {
	s := &Server{
		config:  cfg,
		options: options,
		cache:   thumbnails,
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
	}

	// Opened on every request, files are replaced and deleted underneath
	s.app.Use(staticPrefix(cfg.Cache.PublicURL), filesystem.New(filesystem.Config{
		Root: http.Dir(thumbnails.Dir()),
	}))

	api := s.app.Group("/api")
	api.Get("/thumbnail", s.handleThumbnail)
	api.Get("/thumbnail/:id", s.handleThumbnail)
	api.Get("/cache/stats", s.handleStats)
	api.Post("/cache/clear", s.handleClear)

	return s
}

// App returns the underlying fiber app (exported for testing)
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server
func (s *Server) Start() error {
	logrus.Infof("Starting thumbnail cache on port %d", s.config.Server.Port)
	logrus.Infof("Cache directory: %s", s.config.Cache.Folder)
	logrus.Infof("Public URL: %s", s.config.Cache.PublicURL)
	logrus.Infof("Retention: %d days", s.options.RetentionDays())

	return s.app.Listen(fmt.Sprintf(":%d", s.config.Server.Port))
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleThumbnail(c *fiber.Ctx) error {
	raw := c.Params("id")
	if raw == "" {
		raw = c.Query("id")
	}

	id := videoid.Extract(raw)
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid YouTube video ID",
		})
	}

	quality := c.Query("quality", s.options.DefaultQuality())
	result := s.cache.Resolve(c.UserContext(), id, quality)

	logrus.Debugf("Thumbnail %s/%s -> %s (%s)", id, quality, result.URL, result.Source)

	return c.JSON(ThumbnailResponse{
		VideoID: id,
		Quality: string(cache.Quality(quality).Normalize()),
		URL:     result.URL,
		Source:  result.Source,
	})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(s.cache.Stats())
}

func (s *Server) handleClear(c *fiber.Ctx) error {
	s.cache.ClearAll()
	return c.JSON(fiber.Map{
		"message": "Thumbnail cache cleared",
		"stats":   s.cache.Stats(),
	})
}

// staticPrefix returns the path component of the public URL
func staticPrefix(publicURL string) string {
	u, err := url.Parse(publicURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/thumbnails"
	}
	return strings.TrimSuffix(u.Path, "/")
}
