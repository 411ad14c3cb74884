package storage

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// videoExtensions are the extensions accepted as-is when deriving an
// artifact name. Anything else is normalized to .mp4 so the destination
// renders the file as playable video.
var videoExtensions = []string{".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm"}

// DefaultFilename is used when a URL carries no usable basename.
const DefaultFilename = "video.mp4"

// Store owns the local artifact directory. Under the single-worker
// discipline at most one artifact is live at a time, so there is no
// locking beyond existence checks.
type Store struct {
	dir string
}

// New creates the artifact directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the artifact directory path.
func (s *Store) Dir() string {
	return s.dir
}

// DeriveFilename extracts an artifact name from a download URL. URLs
// without a dotted basename fall back to DefaultFilename; basenames
// without a recognized video extension are renamed to end in .mp4.
func DeriveFilename(rawURL string) string {
	name := ""
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}
	if name == "" || name == "." || name == "/" || !strings.Contains(name, ".") {
		return DefaultFilename
	}
	if !hasVideoExtension(name) {
		name = strings.TrimSuffix(name, path.Ext(name)) + ".mp4"
	}
	return name
}

func hasVideoExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range videoExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Allocate returns the destination path for a URL's artifact, removing any
// stale file of the same derived name so the fetch starts clean.
func (s *Store) Allocate(rawURL string) (string, error) {
	dest := filepath.Join(s.dir, DeriveFilename(rawURL))
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return "", fmt.Errorf("remove stale artifact %s: %w", dest, err)
		}
	}
	return dest, nil
}

// Remove deletes an artifact if it still exists. Missing files are not an
// error: cleanup is unconditional and may race a prior cleanup.
func (s *Store) Remove(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(path)
}

// Usage reports the number of artifact files and their total size.
func (s *Store) Usage() (files int, bytes int64, err error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, 0, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files++
		bytes += info.Size()
	}
	return files, bytes, nil
}

// PurgeResult is the outcome of a storage purge.
type PurgeResult struct {
	FilesDeleted int
	BytesFreed   int64
}

// Purge deletes every artifact file and reports what was reclaimed.
func (s *Store) Purge() (PurgeResult, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return PurgeResult{}, err
	}

	var res PurgeResult
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		p := filepath.Join(s.dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if err := os.Remove(p); err != nil {
			continue
		}
		res.FilesDeleted++
		res.BytesFreed += info.Size()
	}
	return res, nil
}
