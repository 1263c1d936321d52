//go:build unix

package httpserver

import (
	"os"
	"syscall"
)

// inodeOf extracts the inode number ETag scheme needs.
func inodeOf(info os.FileInfo) uint64 {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return st.Ino
	}
	return 0
}
