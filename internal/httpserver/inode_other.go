//go:build !unix

package httpserver

import "os"

// inodeOf has no portable equivalent outside unix; the ETag scheme
// falls back to 0 for the inode component on such platforms.
func inodeOf(os.FileInfo) uint64 { return 0 }
