package media

import (
	"io/fs"
	"path/filepath"
	"time"
)

// Millis converts t to fractional milliseconds since the Unix epoch.
func Millis(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Millisecond)
}

// NewFileStatus builds the FileStatus of the file at path found under rooted.
func NewFileStatus(rooted Rooted, path string, info fs.FileInfo) FileStatus {
	return FileStatus{
		Rooted:      rooted,
		Path:        filepath.Clean(path),
		Size:        info.Size(),
		MtimeMs:     Millis(info.ModTime()),
		BirthtimeMs: Millis(birthTime(info)),
	}
}
