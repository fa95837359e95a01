package resolver

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/lgdns/lgdig/dnsutil"
	"github.com/lgdns/lgdig/log"
)

// Resolver drives one logical query to completion against a Config. It is
// cheap to construct, one per query.
type Resolver struct {
	cfg  Config
	xchg Exchanger
}

// New creates a Resolver. A nil Exchanger selects the Direct UDP/TCP one.
func New(cfg Config, xchg Exchanger) *Resolver {
	if xchg == nil {
		xchg = NewDirect()
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.UDPSize == 0 {
		cfg.UDPSize = dnsutil.MaxUDPSize
	}

	return &Resolver{cfg: cfg, xchg: xchg}
}

// Query issues the supplied message to the configured servers until one
// produces a response. Servers are tried in order, the whole list up to
// Attempts times. A truncated answer triggers one re-ask of the same server
// over TCP unless that is disabled. Query performs no interpretation of the
// response beyond truncation; rcode handling is the caller's business.
func (t *Resolver) Query(ctx context.Context, q *dns.Msg) (*Response, error) {
	servers := t.filteredServers()
	if len(servers) == 0 {
		return nil, ErrNoServers
	}

	network := dnsutil.UDPNetwork
	if t.cfg.TCPOnly {
		network = dnsutil.TCPNetwork
	}

	var lastErr error
	var lastServer string
	for attempt := 0; attempt < t.cfg.Attempts; attempt++ {
		for _, server := range servers {
			r, rtt, err := t.exchange(ctx, network, q, server)
			lastServer = server
			if err != nil {
				lastErr = err
				var derr *dns.Error
				if !isTimeout(err) && errors.As(err, &derr) {
					return nil, &MalformedError{Server: server, Err: err}
				}
				continue
			}

			if r.Truncated && network == dnsutil.UDPNetwork && !t.cfg.IgnoreTC {
				r, rtt, err = t.exchange(ctx, dnsutil.TCPNetwork, q, server)
				if err != nil {
					lastErr = err
					continue
				}
			}

			return &Response{
				Msg:    r,
				Server: server,
				Rtt:    rtt,
				When:   time.Now(),
				Size:   r.Len(),
			}, nil
		}
	}

	if lastErr == nil { // Can't happen, but don't return a nil error
		lastErr = context.DeadlineExceeded
	}

	return nil, classify(lastErr, lastServer)
}

// exchange runs one attempt against one server with the per-attempt timeout.
func (t *Resolver) exchange(ctx context.Context, network string, q *dns.Msg,
	server string) (*dns.Msg, time.Duration, error) {
	c := ExchangeConfig{
		Net:     network,
		Timeout: t.cfg.Timeout,
		UDPSize: t.cfg.UDPSize,
		LocalIP: t.cfg.LocalIP,
	}
	ctxWithTO, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	if log.IfDebug() {
		log.Debugf("Exchange %s %s %s", network, server,
			dnsutil.TypeToString(q.Question[0].Qtype)+" "+q.Question[0].Name)
	}
	r, rtt, err := t.xchg.Exchange(ctxWithTO, c, q, server)
	if log.IfDebug() {
		if err != nil {
			log.Debugf("Exchange %s failed: %s", server, err.Error())
		} else {
			log.Debugf("Exchange %s %s %d bytes in %s", server,
				dnsutil.RcodeToString(r.Rcode), r.Len(), rtt.Round(time.Millisecond))
		}
	}

	return r, rtt, err
}

// filteredServers returns the server list with default ports applied and
// addresses outside the configured family removed. Hostname servers pass the
// family filter untouched as their family is unknowable here.
func (t *Resolver) filteredServers() []string {
	servers := make([]string, 0, len(t.cfg.Servers))
	for _, s := range t.cfg.Servers {
		host := s
		if h, _, err := net.SplitHostPort(s); err == nil {
			host = h
		}
		if ip := net.ParseIP(host); ip != nil {
			if t.cfg.Family == FamilyIPv4 && ip.To4() == nil {
				continue
			}
			if t.cfg.Family == FamilyIPv6 && ip.To4() != nil {
				continue
			}
		}
		servers = append(servers, JoinPort(s, t.cfg.Port))
	}

	return servers
}
