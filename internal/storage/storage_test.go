package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDeriveFilename(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/movie.mp4", "movie.mp4"},
		{"https://example.com/clip.webm", "clip.webm"},
		{"https://example.com/CLIP.MKV", "CLIP.MKV"},
		{"https://example.com/file.bin", "file.mp4"},
		{"https://example.com/archive.tar.gz", "archive.tar.mp4"},
		{"https://example.com/", "video.mp4"},
		{"https://example.com", "video.mp4"},
		{"https://example.com/download", "video.mp4"},
		{"https://example.com/movie.mp4?token=abc", "movie.mp4"},
		{"https://example.com/a/b/c/clip.mov", "clip.mov"},
		{"", "video.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := DeriveFilename(tt.url); got != tt.want {
				t.Errorf("DeriveFilename(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestStore_Allocate_RemovesStaleFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	stale := filepath.Join(dir, "movie.mp4")
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	dest, err := s.Allocate("https://example.com/movie.mp4")
	if err != nil {
		t.Fatalf("Allocate() error: %v", err)
	}
	if dest != stale {
		t.Errorf("Allocate() = %q, want %q", dest, stale)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file still exists after Allocate")
	}
}

func TestStore_Purge(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// 3 files, 5 MiB total.
	sizes := []int{1 << 20, 2 << 20, 2 << 20}
	for i, size := range sizes {
		name := filepath.Join(dir, "file"+string(rune('a'+i))+".mp4")
		if err := os.WriteFile(name, make([]byte, size), 0644); err != nil {
			t.Fatal(err)
		}
	}

	res, err := s.Purge()
	if err != nil {
		t.Fatalf("Purge() error: %v", err)
	}
	if res.FilesDeleted != 3 {
		t.Errorf("FilesDeleted = %d, want 3", res.FilesDeleted)
	}
	if res.BytesFreed != 5242880 {
		t.Errorf("BytesFreed = %d, want 5242880", res.BytesFreed)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("directory has %d entries after purge, want 0", len(entries))
	}
}

func TestStore_Purge_Empty(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	res, err := s.Purge()
	if err != nil {
		t.Fatalf("Purge() error: %v", err)
	}
	if res.FilesDeleted != 0 || res.BytesFreed != 0 {
		t.Errorf("Purge() = %+v, want zero result", res)
	}
}

func TestStore_Remove_MissingFile(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := s.Remove(filepath.Join(s.Dir(), "gone.mp4")); err != nil {
		t.Errorf("Remove() on missing file = %v, want nil", err)
	}
}

func TestStore_Usage(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.mp4"), make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.mp4"), make([]byte, 200), 0644); err != nil {
		t.Fatal(err)
	}

	files, bytes, err := s.Usage()
	if err != nil {
		t.Fatalf("Usage() error: %v", err)
	}
	if files != 2 || bytes != 300 {
		t.Errorf("Usage() = (%d, %d), want (2, 300)", files, bytes)
	}
}
