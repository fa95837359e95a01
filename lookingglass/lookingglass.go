package lookingglass

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/lgdns/lgdig/resolver"
)

var (
	// ErrUnsupportedScheme means the looking glass URL scheme is not one of
	// http, https, ws or ssh.
	ErrUnsupportedScheme = errors.New("unsupported looking glass scheme")

	// ErrUnsupportedTarget means the scheme is known but the rest of the URL
	// cannot name a reachable looking glass, e.g. a ws URL with a remote host.
	ErrUnsupportedTarget = errors.New("unsupported looking glass target")
)

// Resolver maps looking glass URLs to tunnel Exchangers. Identical URL strings
// always map to the identical Exchanger instance within one Resolver. The
// Resolver owns the tunnels it creates; Close() releases them all exactly once.
type Resolver struct {
	mu     sync.Mutex
	cache  map[string]resolver.Exchanger
	closed bool
}

// NewResolver creates an empty Resolver ready for Resolve calls.
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string]resolver.Exchanger)}
}

// Resolve returns the tunnel Exchanger for the supplied URL, creating and
// caching it on first sight. The insecure flag disables TLS certificate
// checking (http tunnels) and host key checking (ssh tunnels); it only takes
// effect the first time a given URL is resolved.
func (t *Resolver) Resolve(rawURL string, insecure bool) (resolver.Exchanger, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if xchg, ok := t.cache[rawURL]; ok {
		return xchg, nil
	}

	xchg, err := newTunnel(rawURL, insecure)
	if err != nil {
		return nil, err
	}
	t.cache[rawURL] = xchg

	return xchg, nil
}

// Close releases every tunnel created by this Resolver. Safe to call multiple
// times; only the first call does the work.
func (t *Resolver) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	for _, xchg := range t.cache {
		if closer, ok := xchg.(io.Closer); ok {
			closer.Close()
		}
	}
}

// newTunnel dispatches on the URL scheme.
func newTunnel(rawURL string, insecure bool) (resolver.Exchanger, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTarget, err.Error())
	}

	switch u.Scheme {
	case "http", "https":
		return newHTTPTunnel(u, insecure), nil
	case "ws":
		return newSocketBridge(u)
	case "ssh":
		return newSSHTunnel(u, insecure)
	}

	return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedScheme, u.Scheme)
}
