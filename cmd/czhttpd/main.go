// Command czhttpd is a standalone per-user web server: it serves files
// and directory listings from a document root, optionally runs CGI
// scripts, and optionally compresses responses.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chorn/czhttpd/internal/cgi"
	"github.com/chorn/czhttpd/internal/compress"
	"github.com/chorn/czhttpd/internal/config"
	"github.com/chorn/czhttpd/internal/httpserver"
	"github.com/chorn/czhttpd/internal/listing"
	"github.com/chorn/czhttpd/internal/logging"
	"github.com/chorn/czhttpd/internal/mime"
)

// exit codes
const (
	exitOK        = 0
	exitFatal     = 113
	exitMissingOS = 127
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		port       int
		verbose    bool
	)
	flag.StringVar(&configPath, "c", "", "path to configuration file")
	flag.IntVar(&port, "p", 0, "listen port override")
	flag.BoolVar(&verbose, "v", false, "log to stdout instead of LOG_FILE")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		if err := config.Load(configPath, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "czhttpd: config: %v\n", err)
			return exitFatal
		}
	}
	if port != 0 {
		cfg.Port = uint16(port)
	}
	if cfg.Port <= 1024 {
		fmt.Fprintf(os.Stderr, "czhttpd: port %d is reserved, refusing to start\n", cfg.Port)
		return exitFatal
	}

	docRootOverride := ""
	if flag.NArg() > 0 {
		docRootOverride = flag.Arg(0)
	}
	serverAddr, err := localAddr()
	if err != nil {
		fmt.Fprintf(os.Stderr, "czhttpd: cannot determine local address: %v\n", err)
		return exitMissingOS
	}
	if err := config.Finalize(&cfg, docRootOverride, serverAddr); err != nil {
		fmt.Fprintf(os.Stderr, "czhttpd: doc root: %v\n", err)
		return exitFatal
	}

	logger, err := logging.Open(cfg.LogFile, verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "czhttpd: cannot open log: %v\n", err)
		return exitFatal
	}
	defer logger.Close()

	if cfg.HTMLCache {
		if err := os.MkdirAll(cfg.HTMLCacheDir, 0755); err != nil {
			logger.Logf("fatal: cannot create html cache dir: %v", err)
			return exitFatal
		}
	}

	mimeTable := mime.DefaultTable()
	srv := buildServer(&cfg, mimeTable, logger)

	if err := srv.Listen(); err != nil {
		logger.Logf("fatal: cannot bind port %d: %v", cfg.Port, err)
		return exitFatal
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Logf("shutting down")
		srv.Shutdown()
		if cfg.HTMLCache {
			listing.RemoveCacheDir(cfg.HTMLCacheDir)
		}
		os.Exit(exitOK)
	}()

	logger.Logf("czhttpd listening on %s:%d, serving %s", cfg.ServerAddr, cfg.Port, cfg.DocRoot)
	srv.Serve()
	return exitOK
}

func buildServer(cfg *config.ServerConfig, mimeTable *mime.Table, logger logging.Logger) *httpserver.Server {
	staticDeps := httpserver.StaticDeps{
		MimeTable:      mimeTable,
		HTTPCache:      cfg.HTTPCache,
		HTTPCacheAgeS:  cfg.HTTPCacheAgeS,
		ServerSoftware: cfg.ServerSoftware,
	}
	listingDeps := httpserver.ListingDeps{Options: listing.Options{
		AllowHidden: cfg.AllowHidden,
		DocRoot:     cfg.DocRoot,
		CacheDir: func() string {
			if cfg.HTMLCache {
				return cfg.HTMLCacheDir
			}
			return ""
		}(),
	}}

	var override httpserver.OverrideHook
	if cfg.CGIEnable {
		override = httpserver.CGIOverrideHook(cgi.Config{
			Exts:           cfg.CGIExts,
			TimeoutS:       cfg.CGITimeoutS,
			Interpreters:   cgi.DefaultInterpreters,
			ServerSoftware: cfg.ServerSoftware,
			ServerName:     cfg.ServerAddr,
			ServerAddr:     cfg.ServerAddr,
			Port:           cfg.Port,
			DocRoot:        cfg.DocRoot,
		}, logger.Logf)
	}

	routeDeps := httpserver.RouteDeps{
		DocRoot:        cfg.DocRoot,
		IndexFilename:  cfg.IndexFilename,
		AllowHidden:    cfg.AllowHidden,
		FollowSymlinks: cfg.FollowSymlinks,
		ServerAddr:     cfg.ServerAddr,
		Port:           cfg.Port,
		Override:       override,
		ServeStatic:    httpserver.ServeStatic(staticDeps),
		ServeListing:   httpserver.ServeListing(listingDeps),
	}

	return &httpserver.Server{
		Addr:           "",
		Port:           cfg.Port,
		MaxConn:        cfg.MaxConn,
		KeepAlive:      cfg.KeepAlive,
		IdleTimeout:    time.Duration(cfg.IdleTimeoutS) * time.Second,
		RecvTimeout:    time.Duration(cfg.RecvTimeoutS) * time.Second,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		ServerSoftware: cfg.ServerSoftware,
		Compress: compress.Config{
			Enable:  cfg.CompressEnable,
			Types:   cfg.CompressTypes,
			Level:   cfg.CompressLevel,
			MinSize: cfg.CompressMinSize,
			Cache:   cfg.CompressCache,
		},
		Route: func(req *httpserver.Request) *httpserver.Response {
			return httpserver.Route(req, routeDeps)
		},
		Logger: logger,
	}
}

// localAddr picks the address the server advertises in Location headers
// and the CGI SERVER_ADDR variable: the first non-loopback interface
// address, falling back to loopback.
func localAddr() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}
	return "127.0.0.1", nil
}
