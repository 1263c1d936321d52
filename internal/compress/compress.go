// Package compress is a pluggable response encoder for identity
// responses, wired through github.com/newacorn/goutils/compress: Encode
// runs a whole, already-buffered body through that package's Writer.
package compress

import (
	"bytes"
	"strings"

	"github.com/newacorn/goutils/compress"
)

// Config is the compression policy read from ServerConfig.
type Config struct {
	Enable  bool
	Types   []string
	Level   int
	MinSize int64
	Cache   bool
}

// Eligible reports whether a response of contentType and size should be
// compressed for a client advertising acceptEncoding, per the
// COMPRESS_TYPES / COMPRESS_MIN_SIZE policy.
func Eligible(cfg Config, contentType string, size int64, acceptEncoding string) bool {
	if !cfg.Enable || size < cfg.MinSize {
		return false
	}
	if !strings.Contains(acceptEncoding, "gzip") {
		return false
	}
	base := contentType
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = base[:i]
	}
	for _, t := range cfg.Types {
		if strings.EqualFold(t, base) {
			return true
		}
	}
	return false
}

// Encode gzip-compresses body at cfg.Level using the compress package's
// Writer, returning the compressed bytes.
func Encode(cfg Config, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := compress.NewWriter(&buf, cfg.Level)
	if _, err := w.Write(body); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
