package httpserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chorn/czhttpd/internal/cgi"
)

func TestCGIOverrideHookDelegatesForNonCGIFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	hook := CGIOverrideHook(cgi.Config{Exts: []string{"php"}}, nil)
	_, handled := hook(&Request{}, path, info)
	if handled {
		t.Error("expected the hook to delegate for a non-executable, non-CGI-extension file")
	}
}

func TestCGIOverrideHookRunsScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.sh")
	script := "#!/bin/sh\necho 'Content-Type: text/plain'\necho ''\necho cgi-ran\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	hook := CGIOverrideHook(cgi.Config{
		Exts:         []string{"sh"},
		TimeoutS:     5,
		Interpreters: map[string]string{"sh": "/bin/sh"},
		DocRoot:      dir,
	}, nil)

	resp, handled := hook(&Request{Method: MethodGET, Header: map[string]string{}}, path, info)
	if !handled {
		t.Fatal("expected the hook to claim a script matching a configured extension")
	}
	if resp.Status != 200 {
		t.Fatalf("Status = %d, want 200", resp.Status)
	}
}
