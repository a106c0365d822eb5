package media

import (
	"net/url"
	"path/filepath"
	"strings"
)

const (
	// DefaultCacheDirName is the hidden directory created inside every root
	// to hold its cache database and thumbnails.
	DefaultCacheDirName = ".media-browser"

	// CacheFileName is the name of the cache database inside the cache directory.
	CacheFileName = "cache.db"

	// ThumbnailExtension is appended to a file's base name to name its thumbnail.
	ThumbnailExtension = ".jpg"
)

// CacheDir returns the hidden cache directory of a root.
func CacheDir(rootDir, cacheDirName string) string {
	return filepath.Join(rootDir, cacheDirName)
}

// CachePath returns the path of a root's cache database.
func CachePath(rootDir, cacheDirName string) string {
	return filepath.Join(CacheDir(rootDir, cacheDirName), CacheFileName)
}

// ThumbnailDir returns the directory inside the root's cache directory that
// mirrors status.LeafDir.
func ThumbnailDir(cacheDirName string, rooted Rooted) string {
	rel, err := filepath.Rel(rooted.RootDir, rooted.LeafDir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return CacheDir(rooted.RootDir, cacheDirName)
	}
	return filepath.Join(CacheDir(rooted.RootDir, cacheDirName), rel)
}

// ThumbnailPath returns where the thumbnail of status is stored. The
// thumbnail keeps the full source name so that a.png and a.jpg in the same
// directory do not collide.
func ThumbnailPath(cacheDirName string, status FileStatus) string {
	return filepath.Join(ThumbnailDir(cacheDirName, status.Rooted), filepath.Base(status.Path)+ThumbnailExtension)
}

// FileURL converts an absolute path to a file:// URL.
func FileURL(path string) string {
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return u.String()
}
