package media

import (
	"errors"
	"path/filepath"
)

// ErrCancelled is returned by any pipeline step that observes a cancelled run.
var ErrCancelled = errors.New("cancelled")

// RootName identifies a well-known root. The empty name marks a root added
// by the user as an arbitrary path.
type RootName string

const (
	RootDocuments RootName = "documents"
	RootDownloads RootName = "downloads"
	RootMusic     RootName = "music"
	RootPictures  RootName = "pictures"
	RootVideos    RootName = "videos"
)

// KnownRoots lists the well-known roots in display order.
var KnownRoots = []RootName{RootDocuments, RootDownloads, RootMusic, RootPictures, RootVideos}

// Rooted is a configured root and the directory currently being scanned
// beneath it.
type Rooted struct {
	RootName RootName `json:"rootName,omitempty"`
	RootDir  string   `json:"rootDir"`
	LeafDir  string   `json:"leafDir"`
}

// NewRooted returns the Rooted value for the top of a root.
func NewRooted(name RootName, dir string) Rooted {
	dir = filepath.Clean(dir)
	return Rooted{RootName: name, RootDir: dir, LeafDir: dir}
}

// Descend returns a copy of r positioned at the subdirectory leafDir.
func (r Rooted) Descend(leafDir string) Rooted {
	r.LeafDir = leafDir
	return r
}

// Label is the human-readable name of the root used in status messages.
func (r Rooted) Label() string {
	if r.RootName != "" {
		return string(r.RootName)
	}
	return r.RootDir
}

// FileStatus is a discovered file's identity snapshot. Identity for caching
// is (Path, Size, MtimeMs); BirthtimeMs is informational.
type FileStatus struct {
	Rooted
	Path        string  `json:"path"`
	Size        int64   `json:"size"`
	MtimeMs     float64 `json:"mtimeMs"`
	BirthtimeMs float64 `json:"birthtimeMs"`
}

// FileProperties is the metadata returned by the enrichment service.
type FileProperties struct {
	ContentType string `json:"contentType"`
	// Duration is in 100ns units.
	Duration   int64  `json:"duration"`
	Width      int64  `json:"width"`
	Height     int64  `json:"height"`
	Rating     int64  `json:"rating"`
	RatingText string `json:"ratingText"`
	// Keywords holds a serialized array such as ["a","b"].
	Keywords    string `json:"keywords"`
	CameraModel string `json:"cameraModel"`
	// DateTaken is in milliseconds since the Unix epoch.
	DateTaken        float64 `json:"dateTaken"`
	LatitudeDecimal  float64 `json:"latitudeDecimal"`
	LongitudeDecimal float64 `json:"longitudeDecimal"`
	// More holds any other properties as key\tvalue lines separated by \n.
	More string `json:"more"`
}

// FileInfo is a FileStatus merged with its FileProperties. ThumbnailURL is
// derived on every run and never stored.
type FileInfo struct {
	FileStatus
	FileProperties
	ThumbnailURL string `json:"thumbnailUrl"`
}
