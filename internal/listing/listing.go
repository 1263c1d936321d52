// Package listing renders directory index pages as an HTML table and
// caches the rendered HTML on disk, keyed by directory path and
// protected by dirlock.
package listing

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chorn/czhttpd/internal/dirlock"
)

// entry is one row of the rendered table.
type entry struct {
	name     string
	isDir    bool
	hidden   bool
	size     int64
	modTime  string
	kind     string
	href     string
}

// Options controls directory-listing rendering behavior.
type Options struct {
	AllowHidden bool
	DocRoot     string
	CacheDir    string // empty disables the on-disk cache
}

// htmlEscaper mirrors gorox's staticHTMLEscaper.
var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return htmlEscaper.Replace(s) }

// Render builds the "Index of <path>" HTML page for dirPath, whose
// request path (as seen by the client) is urlPath.
func Render(dirPath, urlPath string, opts Options) (string, error) {
	fis, err := os.ReadDir(dirPath)
	if err != nil {
		return "", err
	}

	entries := make([]entry, 0, len(fis))
	for _, fi := range fis {
		name := fi.Name()
		hidden := strings.HasPrefix(name, ".")
		if hidden && !opts.AllowHidden {
			continue
		}
		info, err := fi.Info()
		if err != nil {
			continue
		}
		e := entry{name: name, isDir: fi.IsDir(), hidden: hidden, modTime: info.ModTime().UTC().Format("2006-01-02 15:04:05")}
		if fi.IsDir() {
			e.kind = "Directory"
			e.size = -1
			e.href = name + "/"
		} else {
			e.kind = "File"
			e.size = info.Size()
			e.href = name
			if info.Mode()&os.ModeSymlink != 0 {
				if target, err := os.Stat(filepath.Join(dirPath, name)); err == nil && target.IsDir() {
					e.kind = "symbolic link->Directory"
				}
			}
		}
		entries = append(entries, e)
	}

	// Ordering rule: hidden group (if shown) then directories-before-files,
	// each lexically ascending within its group.
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.hidden != b.hidden {
			return a.hidden // hidden entries sort first
		}
		if a.isDir != b.isDir {
			return a.isDir
		}
		return a.name < b.name
	})

	var b strings.Builder
	fmt.Fprintf(&b, "<!DOCTYPE html><html><head><title>Index of %s</title></head><body>\n", escape(urlPath))
	fmt.Fprintf(&b, "<h1>Index of %s</h1>\n", escape(urlPath))
	b.WriteString(`<table><tr><th>Name</th><th>Last-Modified</th><th>Size</th><th>Type</th></tr>` + "\n")

	if !isDocRoot(dirPath, opts.DocRoot) {
		b.WriteString(`<tr><td><a href="../">../</a></td><td></td><td>-</td><td>Directory</td></tr>` + "\n")
	}

	for _, e := range entries {
		sizeCell := "-"
		if !e.isDir {
			sizeCell = formatSize(e.size)
		}
		fmt.Fprintf(&b, "<tr><td><a href=\"%s\">%s</a></td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			escape(e.href), escape(e.name), e.modTime, sizeCell, e.kind)
	}

	b.WriteString("</table></body></html>")
	return b.String(), nil
}

func isDocRoot(dirPath, docRoot string) bool {
	return filepath.Clean(dirPath) == filepath.Clean(docRoot)
}

// formatSize renders a byte count below 1024 as a whole number of B, and
// larger counts as K/M/G with one decimal place.
func formatSize(size int64) string {
	const unit = 1024.0
	f := float64(size)
	switch {
	case size < unit:
		return fmt.Sprintf("%dB", size)
	case f < unit*unit:
		return fmt.Sprintf("%.1fK", f/unit)
	case f < unit*unit*unit:
		return fmt.Sprintf("%.1fM", f/(unit*unit))
	default:
		return fmt.Sprintf("%.1fG", f/(unit*unit*unit))
	}
}

// CachePathFor returns the on-disk cache file for dirPath: the directory
// path with all "/" removed, suffixed ".html", under cacheDir.
func CachePathFor(cacheDir, dirPath string) string {
	key := strings.ReplaceAll(dirPath, "/", "")
	return filepath.Join(cacheDir, key+".html")
}

// GetOrRender returns the rendered HTML for dirPath, regenerating and
// caching it under cacheDir when the cache file is missing or older
// than the directory's mtime. The regeneration is gated by a dirlock so
// concurrent workers or sibling processes never observe a partially
// written cache file.
func GetOrRender(dirPath, urlPath string, opts Options) (string, error) {
	if opts.CacheDir == "" {
		return Render(dirPath, urlPath, opts)
	}

	cachePath := CachePathFor(opts.CacheDir, dirPath)
	if fresh, html, err := tryCached(cachePath, dirPath); err != nil {
		return "", err
	} else if fresh {
		return html, nil
	}

	if err := os.MkdirAll(opts.CacheDir, 0755); err != nil {
		return "", err
	}
	lock, err := dirlock.Acquire(cachePath + ".lock")
	if err != nil {
		return "", err
	}
	defer lock.Release()

	// Another worker may have refreshed the cache while we waited for the
	// lock; re-check before regenerating.
	if fresh, html, err := tryCached(cachePath, dirPath); err == nil && fresh {
		return html, nil
	}

	html, err := Render(dirPath, urlPath, opts)
	if err != nil {
		return "", err
	}
	tmp := cachePath + ".tmp"
	if err := os.WriteFile(tmp, []byte(html), 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, cachePath); err != nil {
		return "", err
	}
	return html, nil
}

// tryCached reports whether cachePath exists and is not older than
// dirPath's mtime, returning its contents when fresh.
func tryCached(cachePath, dirPath string) (fresh bool, html string, err error) {
	cacheInfo, cerr := os.Stat(cachePath)
	if cerr != nil {
		if os.IsNotExist(cerr) {
			return false, "", nil
		}
		return false, "", cerr
	}
	dirInfo, derr := os.Stat(dirPath)
	if derr != nil {
		return false, "", derr
	}
	if dirInfo.ModTime().After(cacheInfo.ModTime()) {
		return false, "", nil
	}
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return false, "", err
	}
	return true, string(data), nil
}

// RemoveCacheDir deletes the HTML listing cache directory, called at
// clean shutdown.
func RemoveCacheDir(cacheDir string) error {
	if cacheDir == "" {
		return nil
	}
	return os.RemoveAll(cacheDir)
}
