package lookingglass

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/miekg/dns"

	"github.com/lgdns/lgdig/resolver"
)

// socketBridge relays queries to a bridge process listening on a local
// unix-domain socket. A ws URL must encode only the socket path; it cannot
// name a remote host.
type socketBridge struct {
	path string
}

func newSocketBridge(u *url.URL) (*socketBridge, error) {
	if len(u.Host) > 0 {
		return nil, fmt.Errorf("%w: ws looking glass '%s' must name a local socket path, not a host",
			ErrUnsupportedTarget, u.Host)
	}
	path := u.Path
	if len(path) == 0 {
		path = u.Opaque // ws:relative/path parses into Opaque
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: ws looking glass URL contains no socket path",
			ErrUnsupportedTarget)
	}

	return &socketBridge{path: path}, nil
}

func (t *socketBridge) Exchange(ctx context.Context, c resolver.ExchangeConfig,
	q *dns.Msg, server string) (*dns.Msg, time.Duration, error) {
	req, err := newRequest(c, q, server)
	if err != nil {
		return nil, 0, err
	}

	dialer := &net.Dialer{Timeout: c.Timeout}
	conn, err := dialer.DialContext(ctx, "unix", t.path)
	if err != nil {
		return nil, 0, err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	start := time.Now()
	resp, err := roundTrip(conn, conn, req)
	if err != nil {
		return nil, 0, err
	}
	r, err := unpackResponse(resp)
	if err != nil {
		return nil, 0, err
	}

	return r, time.Now().Sub(start), nil
}
