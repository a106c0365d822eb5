package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestThumbnailPathMirrorsSourceTree(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "photos")
	rooted := NewRooted(RootPictures, root)

	tests := []struct {
		name   string
		status FileStatus
		want   string
	}{
		{
			name:   "file at root",
			status: FileStatus{Rooted: rooted, Path: filepath.Join(root, "a.jpg")},
			want:   filepath.Join(root, DefaultCacheDirName, "a.jpg.jpg"),
		},
		{
			name: "nested file",
			status: FileStatus{
				Rooted: rooted.Descend(filepath.Join(root, "2020", "summer")),
				Path:   filepath.Join(root, "2020", "summer", "b.png"),
			},
			want: filepath.Join(root, DefaultCacheDirName, "2020", "summer", "b.png.jpg"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ThumbnailPath(DefaultCacheDirName, tt.status); got != tt.want {
				t.Errorf("ThumbnailPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCachePath(t *testing.T) {
	got := CachePath("/r", ".cache")
	want := filepath.Join("/r", ".cache", CacheFileName)
	if got != want {
		t.Errorf("CachePath() = %q, want %q", got, want)
	}
}

func TestRootedLabel(t *testing.T) {
	if got := NewRooted(RootVideos, "/v").Label(); got != "videos" {
		t.Errorf("Label() = %q, want videos", got)
	}
	dir := filepath.Clean("/mnt/camera")
	if got := NewRooted("", dir).Label(); got != dir {
		t.Errorf("Label() = %q, want %q", got, dir)
	}
}

func TestDescendKeepsRoot(t *testing.T) {
	r := NewRooted(RootPictures, "/p")
	child := r.Descend("/p/x")
	if child.RootDir != r.RootDir || child.RootName != r.RootName {
		t.Errorf("Descend changed the root: %+v", child)
	}
	if r.LeafDir != filepath.Clean("/p") {
		t.Errorf("Descend mutated the parent: %+v", r)
	}
}

func TestFileURL(t *testing.T) {
	got := FileURL("/tmp/my pics/a.jpg.jpg")
	if !strings.HasPrefix(got, "file:///tmp/") {
		t.Errorf("FileURL() = %q, want file:///tmp/ prefix", got)
	}
	if !strings.Contains(got, "my%20pics") {
		t.Errorf("FileURL() = %q, want escaped space", got)
	}
}

func TestNewFileStatus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(path, make([]byte, 2048), 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	status := NewFileStatus(NewRooted("", dir), path, info)
	if status.Size != 2048 {
		t.Errorf("Size = %d, want 2048", status.Size)
	}
	if status.MtimeMs != float64(mtime.UnixMilli()) {
		t.Errorf("MtimeMs = %v, want %v", status.MtimeMs, float64(mtime.UnixMilli()))
	}
	if status.BirthtimeMs == 0 {
		t.Error("BirthtimeMs should be populated")
	}
}
