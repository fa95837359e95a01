package resolver

import (
	"context"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/lgdns/lgdig/dnsutil"
)

// ExchangeConfig carries the per-exchange settings an Exchanger needs. It is
// passed by value so Exchangers can be shared across queries with differing
// settings.
type ExchangeConfig struct {
	Net     string        // dnsutil.UDPNetwork or dnsutil.TCPNetwork
	Timeout time.Duration // Applies to one exchange attempt
	UDPSize uint16        // Read buffer size for UDP exchanges
	LocalIP net.IP        // Optional source address to bind, nil for any
}

// Exchanger performs one DNS message exchange with one server. The server is
// an address in host:port form. Implementations must be safe for concurrent
// use.
type Exchanger interface {
	Exchange(ctx context.Context, c ExchangeConfig, q *dns.Msg,
		server string) (r *dns.Msg, rtt time.Duration, err error)
}

// Family constrains which address families of a nameserver are used.
type Family int

const (
	FamilyAny Family = iota
	FamilyIPv4
	FamilyIPv6
)

// Config defines one logical query's transport settings. The zero value is not
// useful; callers populate it from their effective option set.
type Config struct {
	Servers  []string      // host or host:port - tried in order
	Port     string        // Default port for servers without one
	Timeout  time.Duration // Per exchange attempt, not overall
	Attempts int           // Total tries across the server list
	TCPOnly  bool
	IgnoreTC bool // Accept truncated responses rather than retrying over TCP
	Family   Family
	LocalIP  net.IP
	UDPSize  uint16
}

// Response is the outcome of a successful logical query.
type Response struct {
	Msg    *dns.Msg
	Server string // The host:port which answered
	Rtt    time.Duration
	When   time.Time // Wall-clock time the response arrived
	Size   int       // Response size in wire bytes
}

// JoinPort coerces a default port onto a server address which lacks one.
// IPv6 literals gain brackets as a side effect.
func JoinPort(server, port string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	if len(port) == 0 {
		port = dnsutil.Domain
	}

	return net.JoinHostPort(server, port)
}
