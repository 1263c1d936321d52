package httpserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chorn/czhttpd/internal/mime"
)

func TestServeStaticReturns200WithBody(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	serve := ServeStatic(StaticDeps{MimeTable: mime.DefaultTable(), ServerSoftware: "czhttpd/test"})
	req := &Request{Header: map[string]string{}}
	resp := serve(req, path, info)

	if resp.Status != 200 {
		t.Fatalf("Status = %d, want 200", resp.Status)
	}
	if string(resp.Body) != "hello world" {
		t.Errorf("Body = %q, want hello world", resp.Body)
	}
	if headerValue(resp, "Content-Type") != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", headerValue(resp, "Content-Type"))
	}
}

func TestServeStaticETagNotModified(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	deps := StaticDeps{MimeTable: mime.DefaultTable(), HTTPCache: true, HTTPCacheAgeS: 60, ServerSoftware: "czhttpd/test"}
	serve := ServeStatic(deps)

	first := serve(&Request{Header: map[string]string{}}, path, info)
	if first.Status != 200 {
		t.Fatalf("first Status = %d, want 200", first.Status)
	}
	etag := headerValue(first, "ETag")
	if etag == "" {
		t.Fatal("expected an ETag header on the first response")
	}

	second := serve(&Request{Header: map[string]string{"if-none-match": etag}}, path, info)
	if second.Status != 304 {
		t.Errorf("second Status = %d, want 304", second.Status)
	}
}
