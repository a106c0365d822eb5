//go:build !linux && !darwin && !windows

package media

import (
	"io/fs"
	"time"
)

func birthTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
