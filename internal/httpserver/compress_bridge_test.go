package httpserver

import (
	"strconv"
	"strings"
	"testing"

	"github.com/chorn/czhttpd/internal/compress"
)

func TestApplyCompressionEncodesEligibleBody(t *testing.T) {
	cfg := compress.Config{Enable: true, Types: []string{"text/plain"}, Level: 6, MinSize: 10}
	resp := identityResponse(200, []byte(strings.Repeat("compress me please ", 20)), "text/plain")
	originalLen := len(resp.Body)

	ApplyCompression(resp, cfg, "gzip, deflate")

	if headerValue(resp, "Content-Encoding") != "gzip" {
		t.Fatal("expected a Content-Encoding: gzip header")
	}
	if len(resp.Body) >= originalLen {
		t.Errorf("expected the body to shrink, got %d >= %d", len(resp.Body), originalLen)
	}
	if headerValue(resp, "Content-Length") != strconv.Itoa(len(resp.Body)) {
		t.Errorf("Content-Length header out of sync with the encoded body length")
	}
}

func TestApplyCompressionSkipsChunkedResponses(t *testing.T) {
	cfg := compress.Config{Enable: true, Types: []string{"text/plain"}, Level: 6, MinSize: 1}
	resp := NewResponse(200, "OK")
	resp.Framing = FramingChunked

	ApplyCompression(resp, cfg, "gzip")
	if headerValue(resp, "Content-Encoding") == "gzip" {
		t.Error("chunked responses should never be compressed")
	}
}

func TestApplyCompressionSkipsWhenDisabled(t *testing.T) {
	cfg := compress.Config{Enable: false}
	resp := identityResponse(200, []byte(strings.Repeat("x", 1000)), "text/plain")
	ApplyCompression(resp, cfg, "gzip")
	if headerValue(resp, "Content-Encoding") == "gzip" {
		t.Error("compression should be skipped when disabled")
	}
}
