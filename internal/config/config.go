// Package config loads and validates the key=value configuration file
// consumed by the server, and the command-line overrides layered on top
// of it.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ServerConfig holds every setting the request-serving pipeline reads.
// Built once at startup and not changed afterwards; there is no reload
// path.
type ServerConfig struct {
	Port    uint16
	MaxConn int

	KeepAlive      bool
	IdleTimeoutS   int
	RecvTimeoutS   int
	MaxBodyBytes   int64

	HTTPCache      bool
	HTTPCacheAgeS  int

	IndexFilename  string
	AllowHidden    bool
	FollowSymlinks bool

	HTMLCache    bool
	HTMLCacheDir string

	DocRoot        string
	ServerSoftware string
	ServerAddr     string
	LogFile        string

	CGIEnable    bool
	CGIExts      []string
	CGITimeoutS  int

	CompressEnable  bool
	CompressTypes   []string
	CompressLevel   int
	CompressMinSize int64
	CompressCache   bool
}

// Default returns the configuration baseline lists, before any
// config file or CLI flag is applied.
func Default() ServerConfig {
	return ServerConfig{
		Port:            8080,
		MaxConn:         12,
		KeepAlive:       true,
		IdleTimeoutS:    30,
		RecvTimeoutS:    5,
		MaxBodyBytes:    16384,
		HTTPCache:       false,
		HTTPCacheAgeS:   200,
		IndexFilename:   "index.html",
		AllowHidden:     false,
		FollowSymlinks:  false,
		HTMLCache:       false,
		HTMLCacheDir:    filepath.Join(os.TempDir(), fmt.Sprintf("czhttpd-%d", os.Getpid())),
		ServerSoftware:  "czhttpd/1.0",
		LogFile:         "/dev/null",
		CGIEnable:       true,
		CGIExts:         []string{"php"},
		CGITimeoutS:     300,
		CompressEnable:  false,
		CompressLevel:   6,
		CompressMinSize: 1024,
	}
}

// Load reads a key=value file (one assignment per line, "#" comments and
// blank lines skipped) into cfg, validating every recognized key.
// An unrecognized key is ignored; a malformed value for a recognized
// key is a fatal configuration error.
func Load(path string, cfg *ServerConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("config:%d: missing '=' in %q", lineNo, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if err := applyKey(cfg, key, value); err != nil {
			return fmt.Errorf("config:%d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

func applyKey(cfg *ServerConfig, key, value string) error {
	switch key {
	case "MAX_CONN":
		n, err := nonNegativeInt(value)
		if err != nil {
			return err
		}
		cfg.MaxConn = n
	case "PORT":
		n, err := nonNegativeInt(value)
		if err != nil {
			return err
		}
		cfg.Port = uint16(n)
	case "HTTP_KEEP_ALIVE":
		b, err := boolFlag(value)
		if err != nil {
			return err
		}
		cfg.KeepAlive = b
	case "HTTP_TIMEOUT":
		n, err := nonNegativeInt(value)
		if err != nil {
			return err
		}
		cfg.IdleTimeoutS = n
	case "HTTP_RECV_TIMEOUT":
		n, err := nonNegativeInt(value)
		if err != nil {
			return err
		}
		cfg.RecvTimeoutS = n
	case "HTTP_BODY_SIZE":
		n, err := nonNegativeInt(value)
		if err != nil {
			return err
		}
		cfg.MaxBodyBytes = int64(n)
	case "HTTP_CACHE":
		b, err := boolFlag(value)
		if err != nil {
			return err
		}
		cfg.HTTPCache = b
	case "HTTP_CACHE_AGE":
		n, err := nonNegativeInt(value)
		if err != nil {
			return err
		}
		cfg.HTTPCacheAgeS = n
	case "INDEX_FILE":
		if value == "" {
			return errors.New("INDEX_FILE must not be empty")
		}
		cfg.IndexFilename = value
	case "HIDDEN_FILES":
		b, err := boolFlag(value)
		if err != nil {
			return err
		}
		cfg.AllowHidden = b
	case "FOLLOW_SYMLINKS":
		b, err := boolFlag(value)
		if err != nil {
			return err
		}
		cfg.FollowSymlinks = b
	case "HTML_CACHE":
		b, err := boolFlag(value)
		if err != nil {
			return err
		}
		cfg.HTMLCache = b
	case "HTML_CACHE_DIR":
		cfg.HTMLCacheDir = value
	case "LOG_FILE":
		if value == "" {
			return errors.New("LOG_FILE must not be empty")
		}
		cfg.LogFile = value
	case "CGI_ENABLE":
		b, err := boolFlag(value)
		if err != nil {
			return err
		}
		cfg.CGIEnable = b
	case "CGI_EXTS":
		cfg.CGIExts = splitCommaList(value)
	case "CGI_TIMEOUT":
		n, err := nonNegativeInt(value)
		if err != nil {
			return err
		}
		cfg.CGITimeoutS = n
	case "COMPRESS":
		b, err := boolFlag(value)
		if err != nil {
			return err
		}
		cfg.CompressEnable = b
	case "COMPRESS_TYPES":
		cfg.CompressTypes = splitCommaList(value)
	case "COMPRESS_LEVEL":
		n, err := nonNegativeInt(value)
		if err != nil {
			return err
		}
		cfg.CompressLevel = n
	case "COMPRESS_MIN_SIZE":
		n, err := nonNegativeInt(value)
		if err != nil {
			return err
		}
		cfg.CompressMinSize = int64(n)
	case "COMPRESS_CACHE":
		b, err := boolFlag(value)
		if err != nil {
			return err
		}
		cfg.CompressCache = b
	default:
		// unrecognized keys are ignored, matching silence on
		// forward-compatible extension.
	}
	return nil
}

func nonNegativeInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("expected a non-negative decimal, got %q", value)
	}
	return n, nil
}

func boolFlag(value string) (bool, error) {
	switch value {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("expected 0 or 1, got %q", value)
	}
}

func splitCommaList(value string) []string {
	value = strings.Trim(value, `"`)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Finalize resolves DocRoot to an absolute, real path and derives
// ServerAddr. It must be called once CLI overrides have been applied.
func Finalize(cfg *ServerConfig, docRootOverride, serverAddr string) error {
	root := cfg.DocRoot
	if docRootOverride != "" {
		root = docRootOverride
	}
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return err
	}
	cfg.DocRoot = real
	cfg.ServerAddr = serverAddr
	return nil
}
