package httpserver

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/chorn/czhttpd/internal/mime"
)

// StaticDeps bundles the config the static handler needs: MIME
// resolution, ETag computation, and Cache-Control.
type StaticDeps struct {
	MimeTable      *mime.Table
	HTTPCache      bool
	HTTPCacheAgeS  int
	ServerSoftware string
}

// ServeStatic handles the regular-file case: MIME lookup, conditional
// ETag handling, and the 200/304 response.
func ServeStatic(deps StaticDeps) func(req *Request, fsPath string, info os.FileInfo) *Response {
	return func(req *Request, fsPath string, info os.FileInfo) *Response {
		contentType := deps.MimeTable.Resolve(fsPath, true)

		if deps.HTTPCache {
			etag := computeETag(info, deps.ServerSoftware)
			if inm, ok := req.HeaderValue("if-none-match"); ok && inm == etag {
				resp := NewResponse(304, ReasonFor(304))
				resp.Framing = FramingNone
				return resp
			}
			f, err := os.Open(fsPath)
			if err != nil {
				return errorResponse(500)
			}
			defer f.Close()
			data, err := readAll(f, info.Size())
			if err != nil {
				return errorResponse(500)
			}
			resp := identityResponse(200, data, contentType)
			if deps.HTTPCacheAgeS > 0 {
				resp.AddHeader("Cache-Control", fmt.Sprintf("max-age=%d", deps.HTTPCacheAgeS))
			}
			resp.AddHeader("ETag", etag)
			return resp
		}

		f, err := os.Open(fsPath)
		if err != nil {
			return errorResponse(500)
		}
		defer f.Close()
		data, err := readAll(f, info.Size())
		if err != nil {
			return errorResponse(500)
		}
		return identityResponse(200, data, contentType)
	}
}

// computeETag implements "<mtime_hex>-<inode_hex>-<server_software>"
// scheme, quoted as an HTTP entity tag.
func computeETag(info os.FileInfo, serverSoftware string) string {
	mtimeHex := strconv.FormatInt(info.ModTime().Unix(), 16)
	inodeHex := strconv.FormatUint(inodeOf(info), 16)
	return `"` + mtimeHex + "-" + inodeHex + "-" + serverSoftware + `"`
}

func readAll(f *os.File, size int64) ([]byte, error) {
	buf := make([]byte, size)
	_, err := io.ReadFull(f, buf)
	return buf, err
}
