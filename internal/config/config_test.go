package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "test_config.yaml")

	configContent := `
server:
  port: 9999
cache:
  folder: "./test_cache"
  public_url: "https://example.com/thumbs"
options:
  thumbnail_quality: "hqdefault"
  cache_duration: 7
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	// Test loading the config
	config, err := Load(configFile)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify values
	if config.Server.Port != 9999 {
		t.Errorf("Expected port 9999, got %d", config.Server.Port)
	}

	if config.Cache.PublicURL != "https://example.com/thumbs" {
		t.Errorf("Expected public URL 'https://example.com/thumbs', got '%s'", config.Cache.PublicURL)
	}

	if config.Options.ThumbnailQuality != "hqdefault" {
		t.Errorf("Expected quality 'hqdefault', got '%s'", config.Options.ThumbnailQuality)
	}

	if config.Options.CacheDuration != 7 {
		t.Errorf("Expected cache duration 7, got %d", config.Options.CacheDuration)
	}

	// Keys absent from the file keep their defaults
	if config.Cache.RemoteBase != "https://i.ytimg.com/vi" {
		t.Errorf("Expected default remote base, got '%s'", config.Cache.RemoteBase)
	}

	if config.Cache.Schedule != "@weekly" {
		t.Errorf("Expected default schedule '@weekly', got '%s'", config.Cache.Schedule)
	}
}

func TestLoadClampsOptions(t *testing.T) {
	raw, err := yaml.Marshal(map[string]any{
		"options": map[string]any{
			"thumbnail_quality": "ultra",
			"cache_duration":    400,
		},
	})
	require.NoError(t, err)

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, raw, 0644))

	config, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "maxresdefault", config.Options.ThumbnailQuality)
	assert.Equal(t, DefaultCacheDuration, config.Options.CacheDuration)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   EmbedOptions
		want EmbedOptions
	}{
		{
			name: "valid options",
			in:   EmbedOptions{ThumbnailQuality: "sddefault", CacheDuration: 365},
			want: EmbedOptions{ThumbnailQuality: "sddefault", CacheDuration: 365},
		},
		{
			name: "lower bound",
			in:   EmbedOptions{ThumbnailQuality: "default", CacheDuration: 1},
			want: EmbedOptions{ThumbnailQuality: "default", CacheDuration: 1},
		},
		{
			name: "zero duration",
			in:   EmbedOptions{ThumbnailQuality: "mqdefault", CacheDuration: 0},
			want: EmbedOptions{ThumbnailQuality: "mqdefault", CacheDuration: 30},
		},
		{
			name: "negative duration",
			in:   EmbedOptions{ThumbnailQuality: "hqdefault", CacheDuration: -5},
			want: EmbedOptions{ThumbnailQuality: "hqdefault", CacheDuration: 30},
		},
		{
			name: "unknown quality",
			in:   EmbedOptions{ThumbnailQuality: "foo", CacheDuration: 10},
			want: EmbedOptions{ThumbnailQuality: "maxresdefault", CacheDuration: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in)
			if got != tt.want {
				t.Errorf("Sanitize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Default()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: true,
		},
		{
			name:    "missing folder",
			mutate:  func(c *Config) { c.Cache.Folder = "" },
			wantErr: true,
		},
		{
			name:    "invalid remote base",
			mutate:  func(c *Config) { c.Cache.RemoteBase = "not a url" },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	opts := NewOptions(EmbedOptions{ThumbnailQuality: "hqdefault", CacheDuration: 30})
	assert.Equal(t, 30, opts.RetentionDays())
	assert.Equal(t, "hqdefault", opts.DefaultQuality())

	opts.Set(EmbedOptions{ThumbnailQuality: "hqdefault", CacheDuration: 2})
	assert.Equal(t, 2, opts.RetentionDays())

	opts.Set(EmbedOptions{ThumbnailQuality: "bogus", CacheDuration: 1000})
	assert.Equal(t, EmbedOptions{ThumbnailQuality: "maxresdefault", CacheDuration: 30}, opts.Get())
}

func TestOptionsConcurrentAccess(t *testing.T) {
	opts := NewOptions(EmbedOptions{CacheDuration: 10})

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(2)
		go func(days int) {
			defer wg.Done()
			opts.Set(EmbedOptions{CacheDuration: days})
		}(i)
		go func() {
			defer wg.Done()
			days := opts.RetentionDays()
			assert.GreaterOrEqual(t, days, MinCacheDuration)
		}()
	}
	wg.Wait()
}
