package httpserver

import (
	"os"
	"path/filepath"
	"testing"
)

func testDeps(t *testing.T, docRoot string) RouteDeps {
	t.Helper()
	return RouteDeps{
		DocRoot:       docRoot,
		IndexFilename: "index.html",
		ServerAddr:    "127.0.0.1",
		Port:          8080,
		ServeStatic: func(req *Request, fsPath string, info os.FileInfo) *Response {
			return identityResponse(200, []byte("static:"+filepath.Base(fsPath)), "text/plain")
		},
		ServeListing: func(req *Request, dirPath string) *Response {
			return identityResponse(200, []byte("listing:"+dirPath), "text/html")
		},
	}
}

func TestRouteServesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	req := &Request{Method: MethodGET, Path: "/a.txt"}
	resp := Route(req, testDeps(t, dir))
	if resp.Status != 200 {
		t.Fatalf("Status = %d, want 200", resp.Status)
	}
	if string(resp.Body) != "static:a.txt" {
		t.Errorf("Body = %q, want static:a.txt", resp.Body)
	}
}

func TestRouteMissingFileIs404(t *testing.T) {
	dir := t.TempDir()
	req := &Request{Method: MethodGET, Path: "/nope.txt"}
	resp := Route(req, testDeps(t, dir))
	if resp.Status != 404 {
		t.Errorf("Status = %d, want 404", resp.Status)
	}
}

func TestRouteTraversalIs403(t *testing.T) {
	dir := t.TempDir()
	req := &Request{Method: MethodGET, Path: "/../../etc/passwd"}
	resp := Route(req, testDeps(t, dir))
	if resp.Status != 403 {
		t.Errorf("Status = %d, want 403", resp.Status)
	}
}

func TestRouteHiddenFileIs403WhenDisallowed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".secret"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	req := &Request{Method: MethodGET, Path: "/.secret"}
	deps := testDeps(t, dir)
	deps.AllowHidden = false
	resp := Route(req, deps)
	if resp.Status != 403 {
		t.Errorf("Status = %d, want 403", resp.Status)
	}
}

func TestRouteDirectoryMissingSlashRedirects(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	req := &Request{Method: MethodGET, Path: "/sub"}
	resp := Route(req, testDeps(t, dir))
	if resp.Status != 301 {
		t.Fatalf("Status = %d, want 301", resp.Status)
	}
	loc := headerValue(resp, "Location")
	if loc != "http://127.0.0.1:8080/sub/" {
		t.Errorf("Location = %q, want http://127.0.0.1:8080/sub/", loc)
	}
}

func TestRouteDirectoryServesIndex(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "index.html"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	req := &Request{Method: MethodGET, Path: "/sub/"}
	resp := Route(req, testDeps(t, dir))
	if resp.Status != 200 {
		t.Fatalf("Status = %d, want 200", resp.Status)
	}
	if string(resp.Body) != "static:index.html" {
		t.Errorf("Body = %q, want static:index.html", resp.Body)
	}
}

func TestRouteDirectoryServesListing(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	req := &Request{Method: MethodGET, Path: "/sub/"}
	resp := Route(req, testDeps(t, dir))
	if resp.Status != 200 {
		t.Fatalf("Status = %d, want 200", resp.Status)
	}
	if string(resp.Body) != "listing:"+sub {
		t.Errorf("Body = %q, want listing:%s", resp.Body, sub)
	}
}

func TestRoutePostOnNonCGIFileIs405(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	req := &Request{Method: MethodPOST, Path: "/a.txt"}
	resp := Route(req, testDeps(t, dir))
	if resp.Status != 405 {
		t.Errorf("Status = %d, want 405", resp.Status)
	}
}

func TestRoutePostOnDirectoryIs405(t *testing.T) {
	dir := t.TempDir()
	req := &Request{Method: MethodPOST, Path: "/"}
	resp := Route(req, testDeps(t, dir))
	if resp.Status != 405 {
		t.Errorf("Status = %d, want 405", resp.Status)
	}
}

func TestRouteOverrideHookClaimsRequest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.php"), []byte("x"), 0755); err != nil {
		t.Fatal(err)
	}
	deps := testDeps(t, dir)
	deps.Override = func(req *Request, fsPath string, info os.FileInfo) (*Response, bool) {
		return identityResponse(200, []byte("cgi-output"), "text/plain"), true
	}
	req := &Request{Method: MethodPOST, Path: "/a.php"}
	resp := Route(req, deps)
	if resp.Status != 200 || string(resp.Body) != "cgi-output" {
		t.Errorf("expected the override hook's response, got status=%d body=%q", resp.Status, resp.Body)
	}
}
