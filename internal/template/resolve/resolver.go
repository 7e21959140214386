// Package resolve turns template, block and string identifiers into text.
//
// An identifier is an absolute URL, a filesystem path (anything containing a
// path separator) or a bare name. Bare template names resolve to a built-in
// template or to the configured templates base URL; bare block and string
// names are reported with ErrBareName so the caller can consult its own
// stores.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Kind selects how a bare name is resolved.
type Kind int

const (
	KindTemplate Kind = iota
	KindBlock
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "template"
	case KindBlock:
		return "block"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// maxBodySize caps a single fetched or read resource.
const maxBodySize = 16 << 20

var (
	// ErrInvalidPath means the identifier could not be turned into a path or URL.
	ErrInvalidPath = errors.New("invalid identifier")

	// ErrFetch means the HTTP request itself failed.
	ErrFetch = errors.New("fetch failed")

	// ErrBadStatus means the server answered with a non-2xx status.
	ErrBadStatus = errors.New("unexpected HTTP status")

	// ErrRead means a local file could not be read.
	ErrRead = errors.New("read failed")

	// ErrBareName means the identifier is a bare name the resolver does not
	// own (blocks and strings).
	ErrBareName = errors.New("bare name")
)

// BuiltinLookup returns the content of a built-in template by name.
type BuiltinLookup func(name string) (string, bool)

// Resolver fetches identifiers over HTTP or from disk. It keeps no cache;
// resolving the same identifier twice fetches it twice.
type Resolver struct {
	client    *http.Client
	baseURL   string
	builtins  BuiltinLookup
	workDir   string
	userAgent string
	logger    *log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBaseURL sets the URL bare template names are resolved against.
func WithBaseURL(u string) Option {
	return func(r *Resolver) { r.baseURL = strings.TrimSuffix(u, "/") }
}

// WithTimeout bounds every HTTP request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.client.Timeout = d }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithBuiltins sets the lookup for built-in template names.
func WithBuiltins(lookup BuiltinLookup) Option {
	return func(r *Resolver) { r.builtins = lookup }
}

// WithWorkDir sets the directory relative paths are resolved against.
func WithWorkDir(dir string) Option {
	return func(r *Resolver) { r.workDir = dir }
}

// WithUserAgent sets the User-Agent header of HTTP requests.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) { r.userAgent = ua }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		client: &http.Client{},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the text an identifier refers to.
func (r *Resolver) Resolve(ctx context.Context, identifier string, kind Kind) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", fmt.Errorf("%w: empty %s identifier", ErrInvalidPath, kind)
	}

	if u, ok := ParseURL(identifier); ok {
		if u.Scheme == "file" {
			return r.readFile(u.Path)
		}
		return r.Fetch(ctx, u.String())
	}

	if strings.ContainsAny(identifier, `/\`) {
		path, err := r.absPath(identifier)
		if err != nil {
			return "", err
		}
		return r.readFile(path)
	}

	switch kind {
	case KindTemplate:
		if r.builtins != nil {
			if content, ok := r.builtins(identifier); ok {
				r.logger.Debug("using built-in template", "name", identifier)
				return content, nil
			}
		}
		if r.baseURL == "" {
			return "", fmt.Errorf("%w: no templates base URL configured for %q", ErrInvalidPath, identifier)
		}
		return r.Fetch(ctx, r.baseURL+"/"+identifier+".yaml")
	default:
		return "", fmt.Errorf("%w: %s %q", ErrBareName, kind, identifier)
	}
}

// Fetch GETs rawURL and returns the body. Non-2xx answers are ErrBadStatus.
func (r *Resolver) Fetch(ctx context.Context, rawURL string) (string, error) {
	r.logger.Debug("fetching", "url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidPath, rawURL, err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrFetch, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned %d", ErrBadStatus, rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("%w: reading body of %s: %w", ErrFetch, rawURL, err)
	}
	return string(body), nil
}

func (r *Resolver) absPath(p string) (string, error) {
	if !filepath.IsAbs(p) && r.workDir != "" {
		p = filepath.Join(r.workDir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidPath, p, err)
	}
	return abs, nil
}

func (r *Resolver) readFile(path string) (string, error) {
	r.logger.Debug("reading", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	return string(data), nil
}

// ParseURL reports whether s is an absolute http, https or file URL.
func ParseURL(s string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || !u.IsAbs() {
		return nil, false
	}
	switch u.Scheme {
	case "http", "https":
		return u, u.Host != ""
	case "file":
		return u, u.Path != ""
	default:
		return nil, false
	}
}

// IsURL reports whether s is an absolute http, https or file URL.
func IsURL(s string) bool {
	_, ok := ParseURL(s)
	return ok
}
