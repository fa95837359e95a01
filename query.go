package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/dchest/siphash"
	"github.com/miekg/dns"

	"github.com/lgdns/lgdig/log"
	"github.com/lgdns/lgdig/resolver"
)

// finalizeQueries computes each query's effective options, nameserver list and
// transport. This can only run after the whole argument list has been scanned
// because the global options and the global server list aren't known until
// then.
func (t *lgdig) finalizeQueries() error {
	for _, q := range t.queries {
		eff := t.opts.copy()
		if err := applyOptions(eff, t.globalOpts); err != nil {
			return err
		}
		if err := applyOptions(eff, q.opts); err != nil {
			return err
		}
		q.eff = eff

		if _, ok := dns.IsDomainName(q.name); !ok {
			return semanticErrorf("'%s' is not a valid domain name", q.name)
		}

		if eff.bindIP != nil {
			if err := probeBindAddress(eff.bindIP); err != nil {
				return wrapSemantic(err, "cannot bind to '%s'", eff.bindIP.String())
			}
		}

		servers := q.servers
		if len(servers) == 0 {
			servers = t.globalServers
		}
		if len(servers) == 0 {
			servers = systemServers()
		}
		resolved, err := resolveServers(servers)
		if err != nil {
			return err
		}
		q.resolved = resolved

		if len(eff.lookingGlass) > 0 {
			xchg, err := t.glass.Resolve(eff.lookingGlass, eff.insecure)
			if err != nil {
				return wrapSemantic(err, "looking glass '%s'", eff.lookingGlass)
			}
			q.xchg = xchg
		}
	}

	return nil
}

// probeBindAddress checks that the source address is locally usable so the
// failure surfaces as one clear error instead of one per exchange.
func probeBindAddress(ip net.IP) error {
	conn, err := net.ListenPacket("udp", net.JoinHostPort(ip.String(), "0"))
	if err != nil {
		return err
	}
	conn.Close()

	return nil
}

// systemServers returns the stub resolvers configured on this host. An
// unreadable resolv.conf yields an empty list which the renderer reports as
// "no servers were queried".
func systemServers() []string {
	cfg, err := dns.ClientConfigFromFile(resolvConf)
	if err != nil {
		log.Minorf("cannot read %s: %s", resolvConf, err.Error())
		return nil
	}

	return cfg.Servers
}

// resolveServers expands hostname servers into their addresses. IP literals
// (with or without a port) pass through untouched.
func resolveServers(servers []string) ([]string, error) {
	out := make([]string, 0, len(servers))
	for _, s := range servers {
		host, port := s, ""
		if h, p, err := net.SplitHostPort(s); err == nil {
			host, port = h, p
		}
		if ip := net.ParseIP(host); ip != nil {
			out = append(out, s)
			continue
		}
		addrs, err := net.LookupHost(host)
		if err != nil {
			return nil, wrapSemantic(err, "cannot resolve server '%s'", host)
		}
		for _, a := range addrs {
			if len(port) > 0 {
				a = net.JoinHostPort(a, port)
			}
			out = append(out, a)
		}
	}

	return out, nil
}

// effectiveQuestion picks the query's type and class: its own value, else the
// process-wide default, else A/IN.
func (t *query) effectiveQuestion(eff *options) dns.Question {
	qt := t.qtype
	if qt == 0 {
		qt = eff.qtype
	}
	if qt == 0 {
		qt = dns.TypeA
	}
	qc := t.qclass
	if qc == 0 {
		qc = eff.qclass
	}
	if qc == 0 {
		qc = dns.ClassINET
	}

	return dns.Question{Name: dns.Fqdn(t.name), Qtype: qt, Qclass: uint16(qc)}
}

// buildMsg constructs the outgoing message from the effective options.
func (t *query) buildMsg() *dns.Msg {
	eff := t.eff
	m := new(dns.Msg)
	m.Id = dns.Id()
	m.Opcode = dns.OpcodeQuery
	m.RecursionDesired = eff.recurse
	m.Authoritative = eff.aaFlag
	m.AuthenticatedData = eff.adFlag
	m.CheckingDisabled = eff.cdFlag
	m.Question = append(m.Question, t.effectiveQuestion(eff))

	if eff.ednsVersion != ednsDisabled {
		m.Extra = append(m.Extra, t.buildOpt())
	}

	return m
}

// buildOpt assembles the OPT RR carrying the EDNS state.
func (t *query) buildOpt() *dns.OPT {
	eff := t.eff
	opt := new(dns.OPT)
	opt.Hdr.Name = "."
	opt.Hdr.Rrtype = dns.TypeOPT
	opt.SetUDPSize(eff.ednsSize)
	opt.SetVersion(uint8(eff.ednsVersion))
	if eff.ednsFlags&doFlag != 0 {
		opt.SetDo()
	}

	for _, o := range eff.ednsOpts {
		if cookie, ok := o.(*dns.EDNS0_COOKIE); ok && len(cookie.Cookie) == 0 {
			o = &dns.EDNS0_COOKIE{Code: dns.EDNS0COOKIE, Cookie: t.clientCookie()}
		}
		opt.Option = append(opt.Option, o)
	}

	return opt
}

// clientCookie derives the rfc7873 client cookie the rfc9018 way: a keyed
// siphash-2-4 over the servers this query targets, keyed with a per-invocation
// secret. Stable within a query, unlinkable across runs.
func (t *query) clientCookie() string {
	sum := siphash.Hash(cookieSecret[0], cookieSecret[1],
		[]byte(strings.Join(t.resolved, ",")))
	cookie := make([]byte, 8)
	for ix := 0; ix < 8; ix++ {
		cookie[ix] = byte(sum >> (8 * uint(7-ix)))
	}

	return hex.EncodeToString(cookie)
}

// execute runs one finalized query and writes its rendered output. Transport
// failures are part of the output, not process errors.
func (t *lgdig) execute(ctx context.Context, q *query, out io.Writer) {
	eff := q.eff
	res := resolver.New(resolver.Config{
		Servers:  q.resolved,
		Port:     eff.port,
		Timeout:  time.Duration(eff.timeout * float64(time.Second)),
		Attempts: eff.attempts,
		TCPOnly:  eff.tcpOnly,
		IgnoreTC: eff.ignoreTC,
		Family:   eff.family,
		LocalIP:  eff.bindIP,
		UDPSize:  eff.ednsSize,
	}, q.xchg)

	resp, err := res.Query(ctx, q.buildMsg())
	fmt.Fprint(out, render(resp, err, eff))
}
