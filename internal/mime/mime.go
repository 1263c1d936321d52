// Package mime resolves a served path to a Content-Type:
// configured extension table first, then an external content-sniffing
// probe, then the table's "default" entry, then application/octet-stream.
package mime

import (
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Table is an immutable extension->MIME mapping. The zero value is usable
// and falls straight through to Default.
type Table struct {
	byExt   map[string]string
	Default string
}

// NewTable builds a Table from a lowercased-extension->MIME map. entries
// should not include the leading dot. A "default" key, if present, is
// pulled out into Table.Default.
func NewTable(entries map[string]string) *Table {
	t := &Table{byExt: make(map[string]string, len(entries)), Default: "application/octet-stream"}
	for ext, mt := range entries {
		ext = strings.ToLower(ext)
		if ext == "default" {
			t.Default = mt
			continue
		}
		t.byExt[ext] = mt
	}
	return t
}

// DefaultTable is the built-in extension table, grounded on gorox's
// staticHandlet default set.
func DefaultTable() *Table {
	return NewTable(defaultEntries)
}

// extensionOf lowercases the final path segment, strips a leading dot,
// and returns everything after the first remaining dot.
func extensionOf(path string) string {
	name := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		name = path[i+1:]
	}
	name = strings.ToLower(name)
	name = strings.TrimPrefix(name, ".")
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return ""
}

// Resolve returns the Content-Type for path. If the configured table has
// no entry, it probes the file's content (unless probe is disabled),
// falling back to the table's default entry, then octet-stream.
func (t *Table) Resolve(path string, probeContent bool) string {
	if t == nil {
		t = DefaultTable()
	}
	if ext := extensionOf(path); ext != "" {
		if mt, ok := t.byExt[ext]; ok {
			return mt
		}
	}
	if probeContent {
		if mt, ok := probe(path); ok {
			return mt
		}
	}
	if t.Default != "" {
		return t.Default
	}
	return "application/octet-stream"
}

// probe sniffs a file's content: unreadable becomes
// application/octet-stream, a detected text/* type is normalized to
// text/plain, otherwise the detected type is returned as-is.
func probe(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "application/octet-stream", true
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "application/octet-stream", true
	}
	detected := mt.String()
	if idx := strings.IndexByte(detected, ';'); idx >= 0 {
		detected = detected[:idx]
	}
	if strings.HasPrefix(detected, "text/") {
		return "text/plain", true
	}
	return detected, true
}

// SymlinkDirAnnotation is the fixed label used for a directory listing
// entry that is a symlink targeting a directory.
const SymlinkDirAnnotation = "symbolic link->Directory"

var defaultEntries = map[string]string{
	"7z": "application/x-7z-compressed", "atom": "application/atom+xml",
	"bin": "application/octet-stream", "bmp": "image/x-ms-bmp",
	"css": "text/css", "deb": "application/octet-stream",
	"dll": "application/octet-stream", "doc": "application/msword",
	"dmg": "application/octet-stream", "exe": "application/octet-stream",
	"flv": "video/x-flv", "gif": "image/gif",
	"htm": "text/html", "html": "text/html",
	"ico": "image/x-icon", "img": "application/octet-stream",
	"iso": "application/octet-stream", "jar": "application/java-archive",
	"jpg": "image/jpeg", "jpeg": "image/jpeg",
	"js": "application/javascript", "json": "application/json",
	"m4a": "audio/x-m4a", "mov": "video/quicktime",
	"mp3": "audio/mpeg", "mp4": "video/mp4",
	"mpeg": "video/mpeg", "mpg": "video/mpeg",
	"pdf": "application/pdf", "png": "image/png",
	"ppt": "application/vnd.ms-powerpoint", "ps": "application/postscript",
	"rar": "application/x-rar-compressed", "rss": "application/rss+xml",
	"rtf": "application/rtf", "svg": "image/svg+xml",
	"txt": "text/plain", "war": "application/java-archive",
	"webm": "video/webm", "webp": "image/webp",
	"xls": "application/vnd.ms-excel", "xml": "text/xml",
	"zip": "application/zip", "php": "application/x-httpd-php",
	"default": "application/octet-stream",
}
