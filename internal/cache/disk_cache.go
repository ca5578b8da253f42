package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	fileExt     = ".jpg"
	tempPattern = ".tmp-*"
)

// DiskStore keeps thumbnails as flat files directly under one directory
type DiskStore struct {
	cacheDir string
	remove   func(path string) error
}

// cachedFile is a thumbnail found on disk
type cachedFile struct {
	path    string
	size    int64
	modTime time.Time
}

// NewDiskStore creates a new disk store rooted at cacheDir
func NewDiskStore(cacheDir string) *DiskStore {
	return &DiskStore{
		cacheDir: cacheDir,
		remove:   os.Remove,
	}
}

// Init ensures the cache directory exists
func (d *DiskStore) Init() error {
	return os.MkdirAll(d.cacheDir, 0755)
}

// Dir returns the cache directory
func (d *DiskStore) Dir() string {
	return d.cacheDir
}

// Path returns the file path of a cache file name
func (d *DiskStore) Path(name string) string {
	return filepath.Join(d.cacheDir, name)
}

// ModTime returns the modification time of name, and false if it is missing
func (d *DiskStore) ModTime(name string) (time.Time, bool) {
	info, err := os.Stat(d.Path(name))
	if err != nil || !info.Mode().IsRegular() {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Write stores data under name, replacing any previous file.
// Data goes to a temporary file first and is renamed into place.
func (d *DiskStore) Write(name string, data []byte) error {
	tmp, err := os.CreateTemp(d.cacheDir, tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	target := d.Path(name)
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move %s into place: %w", target, err)
	}

	logrus.Debugf("Cached thumbnail: %s", target)
	return nil
}

// List returns every thumbnail file in the cache directory
func (d *DiskStore) List() []cachedFile {
	matches, err := filepath.Glob(filepath.Join(d.cacheDir, "*"+fileExt))
	if err != nil {
		logrus.Errorf("Failed to list cache directory %s: %v", d.cacheDir, err)
		return nil
	}

	files := make([]cachedFile, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			// Removed since the glob
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, cachedFile{
			path:    path,
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	return files
}

// Remove deletes the file at path, which must come from List.
// A file that is already gone is not an error.
func (d *DiskStore) Remove(path string) error {
	if err := d.remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// RemoveAll deletes every regular file in the cache directory, keeping the directory.
// It returns the number of files removed.
func (d *DiskStore) RemoveAll() int {
	entries, err := os.ReadDir(d.cacheDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.Errorf("Failed to read cache directory %s: %v", d.cacheDir, err)
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(d.cacheDir, entry.Name())
		if err := d.remove(path); err != nil {
			if !os.IsNotExist(err) {
				logrus.Errorf("Failed to remove cache file %s: %v", path, err)
			}
			continue
		}
		removed++
	}
	return removed
}
