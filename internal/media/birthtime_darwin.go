package media

import (
	"io/fs"
	"syscall"
	"time"
)

func birthTime(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		sec, nsec := st.Birthtimespec.Unix()
		return time.Unix(sec, nsec)
	}
	return info.ModTime()
}
