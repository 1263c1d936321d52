package httpserver

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// OverrideHook is the single handler-override point: it inspects the
// resolved filesystem path and either writes a complete response
// (handled=true) or delegates back to the static handler.
type OverrideHook func(req *Request, fsPath string, info os.FileInfo) (resp *Response, handled bool)

// RouteDeps bundles everything Route needs beyond the Request, so Route
// itself doesn't depend on config/mime/listing and stays decoupled from
// how its ambient globals are constructed.
type RouteDeps struct {
	DocRoot        string
	IndexFilename  string
	AllowHidden    bool
	FollowSymlinks bool
	ServerAddr     string
	Port           uint16

	Override    OverrideHook // nil if no module registered (CGI disabled)
	ServeStatic func(req *Request, fsPath string, info os.FileInfo) *Response
	ServeListing func(req *Request, dirPath string) *Response
}

// Route decodes the URL, applies the hidden/symlink/traversal checks,
// then classifies the target as a file, directory, or missing path and
// dispatches accordingly.
func Route(req *Request, deps RouteDeps) *Response {
	decodedPath, err := url.PathUnescape(req.Path)
	if err != nil {
		return errorResponse(400)
	}

	fsPath := filepath.Join(deps.DocRoot, filepath.FromSlash(decodedPath))
	if !withinRoot(fsPath, deps.DocRoot) {
		return errorResponse(403)
	}

	if isHiddenSegment(decodedPath) && !deps.AllowHidden {
		return errorResponse(403)
	}

	lst, err := os.Lstat(fsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errorResponse(404)
		}
		return errorResponse(500)
	}

	isSymlink := lst.Mode()&os.ModeSymlink != 0
	if isSymlink && !deps.FollowSymlinks {
		return errorResponse(403)
	}

	info := lst
	if isSymlink {
		resolved, err := os.Stat(fsPath)
		if err != nil {
			if os.IsNotExist(err) {
				return errorResponse(404)
			}
			return errorResponse(500)
		}
		info = resolved
		if !withinRoot(mustEvalSymlinks(fsPath, deps.DocRoot), deps.DocRoot) && !deps.FollowSymlinks {
			return errorResponse(403)
		}
	}

	if info.IsDir() {
		return routeDirectory(req, deps, fsPath, decodedPath)
	}

	return dispatchFile(req, deps, fsPath, info)
}

func routeDirectory(req *Request, deps RouteDeps, fsPath, decodedPath string) *Response {
	if req.Method == MethodPOST {
		return errorResponse(405)
	}

	hasTrailingSlash := strings.HasSuffix(req.Path, "/")
	isRoot := cleanEqual(fsPath, deps.DocRoot)

	if !hasTrailingSlash && !isRoot {
		resp := NewResponse(301, ReasonFor(301))
		location := "http://" + deps.ServerAddr + ":" + portString(deps.Port) + req.Path + "/"
		resp.AddHeader("Location", location)
		resp.Framing = FramingNone
		return resp
	}

	indexPath := filepath.Join(fsPath, deps.IndexFilename)
	if info, err := os.Stat(indexPath); err == nil && info.Mode().IsRegular() {
		return dispatchFile(req, deps, indexPath, info)
	}

	if !isSearchable(fsPath) {
		return errorResponse(403)
	}
	if deps.ServeListing == nil {
		return errorResponse(403)
	}
	return deps.ServeListing(req, fsPath)
}

func dispatchFile(req *Request, deps RouteDeps, fsPath string, info os.FileInfo) *Response {
	if deps.Override != nil {
		if resp, handled := deps.Override(req, fsPath, info); handled {
			return resp
		}
	}
	// POST only reaches here when no override (CGI) claimed the request,
	//: "POST only for CGI".
	if req.Method == MethodPOST {
		return errorResponse(405)
	}
	if deps.ServeStatic == nil {
		return errorResponse(500)
	}
	return deps.ServeStatic(req, fsPath, info)
}

func isHiddenSegment(decodedPath string) bool {
	segments := strings.Split(decodedPath, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return strings.HasPrefix(segments[i], ".")
		}
	}
	return false
}

func withinRoot(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && rel != "..")
}

func mustEvalSymlinks(path, fallback string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fallback
	}
	return resolved
}

func cleanEqual(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

func isSearchable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0111 != 0
}

func portString(p uint16) string {
	return strconv.Itoa(int(p))
}
