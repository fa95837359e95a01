package resolver

import (
	"context"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/lgdns/lgdig/dnsutil"
)

// Direct is the default Exchanger. It speaks to the server itself using the
// miekg client, one exchange per call, no retries and no truncation handling -
// that is Query's job.
type Direct struct{}

// NewDirect creates a ready to use direct UDP/TCP Exchanger.
func NewDirect() *Direct {
	return &Direct{}
}

func (t *Direct) Exchange(ctx context.Context, c ExchangeConfig, q *dns.Msg,
	server string) (r *dns.Msg, rtt time.Duration, err error) {
	client := &dns.Client{
		Net:     c.Net,
		Timeout: c.Timeout,
		UDPSize: c.UDPSize,
	}
	if c.LocalIP != nil {
		client.Dialer = &net.Dialer{Timeout: c.Timeout, LocalAddr: localAddr(c)}
	}

	r, rtt, err = client.ExchangeContext(ctx, q, server)

	return
}

// localAddr wraps the source IP in the address type matching the network as
// net.Dialer refuses a mismatched LocalAddr type.
func localAddr(c ExchangeConfig) net.Addr {
	if c.Net == dnsutil.TCPNetwork {
		return &net.TCPAddr{IP: c.LocalIP}
	}

	return &net.UDPAddr{IP: c.LocalIP}
}
