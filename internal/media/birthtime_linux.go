package media

import (
	"io/fs"
	"syscall"
	"time"
)

// birthTime falls back to the inode change time, the closest value the
// portable stat call reports on Linux.
func birthTime(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		sec, nsec := st.Ctim.Unix()
		return time.Unix(sec, nsec)
	}
	return info.ModTime()
}
