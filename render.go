package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/lgdns/lgdig/dnsutil"
	"github.com/lgdns/lgdig/resolver"
)

// render turns the outcome of one query into its textual form. Transport
// failures render as the familiar notices rather than aborting the run.
func render(resp *resolver.Response, err error, eff *options) string {
	if err != nil {
		return renderError(err)
	}
	if eff.short {
		return renderShort(resp, eff)
	}

	return renderFull(resp, eff)
}

func renderError(err error) string {
	if errors.Is(err, resolver.ErrNoServers) {
		return ";; no servers were queried\n\n"
	}
	var merr *resolver.MalformedError
	if errors.As(err, &merr) {
		return fmt.Sprintf(
			";; Warning: Message parser reports malformed message from %s\n\n",
			merr.Server)
	}

	return ";; connection timed out; no servers could be reached\n\n"
}

// renderShort prints just the rdata of each answer record, one per line.
func renderShort(resp *resolver.Response, eff *options) string {
	var sb strings.Builder
	for _, rr := range resp.Msg.Answer {
		sb.WriteString(rdataString(rr))
		if eff.identify {
			fmt.Fprintf(&sb, " from server %s in %d ms",
				resp.Server, resp.Rtt.Milliseconds())
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

func renderFull(resp *resolver.Response, eff *options) string {
	var sb strings.Builder
	m := resp.Msg

	if eff.showComments {
		sb.WriteString(";; Got answer:\n")
		fmt.Fprintf(&sb, ";; ->>HEADER<<- opcode: %s, status: %s, id: %d\n",
			dnsutil.OpcodeToString(m.Opcode), dnsutil.RcodeToString(m.Rcode), m.Id)
		fmt.Fprintf(&sb,
			";; flags:%s; QUERY: %d, ANSWER: %d, AUTHORITY: %d, ADDITIONAL: %d\n",
			flagsString(m), len(m.Question), len(m.Answer), len(m.Ns), len(m.Extra))
		if m.RecursionDesired && !m.RecursionAvailable {
			sb.WriteString(";; WARNING: recursion requested but not available\n")
		}
		if opt := m.IsEdns0(); opt != nil {
			renderOpt(&sb, opt)
		}
	}

	if eff.showQuestion && len(m.Question) > 0 {
		if eff.showComments {
			sb.WriteString("\n;; QUESTION SECTION:\n")
		}
		for _, q := range m.Question {
			sb.WriteString(questionLine(q, eff))
			sb.WriteByte('\n')
		}
	}

	renderSection(&sb, "ANSWER", m.Answer, eff, eff.showAnswer)
	renderSection(&sb, "AUTHORITY", m.Ns, eff, eff.showAuthority)
	renderSection(&sb, "ADDITIONAL", withoutOpt(m.Extra), eff, eff.showAdditional)

	if eff.showStats {
		host := resp.Server
		port := eff.port
		if h, p, err := net.SplitHostPort(resp.Server); err == nil {
			host, port = h, p
		}
		sb.WriteByte('\n')
		fmt.Fprintf(&sb, ";; Query time: %d msec\n", resp.Rtt.Milliseconds())
		fmt.Fprintf(&sb, ";; SERVER: %s#%s(%s)\n", host, port, host)
		fmt.Fprintf(&sb, ";; WHEN: %s\n", resp.When.Format(time.UnixDate))
		fmt.Fprintf(&sb, ";; MSG SIZE  rcvd: %d\n", resp.Size)
	}
	sb.WriteByte('\n')

	return sb.String()
}

// flagsString renders the header flags in their customary order. The result
// starts with a space whenever any flag is set so it splices directly after
// ";; flags:".
func flagsString(m *dns.Msg) string {
	var sb strings.Builder
	add := func(set bool, name string) {
		if set {
			sb.WriteByte(' ')
			sb.WriteString(name)
		}
	}
	add(m.Response, "qr")
	add(m.Authoritative, "aa")
	add(m.Truncated, "tc")
	add(m.RecursionDesired, "rd")
	add(m.RecursionAvailable, "ra")
	add(m.AuthenticatedData, "ad")
	add(m.CheckingDisabled, "cd")

	return sb.String()
}

func renderOpt(sb *strings.Builder, opt *dns.OPT) {
	sb.WriteString("\n;; OPT PSEUDOSECTION:\n")
	ednsFlags := ""
	if opt.Do() {
		ednsFlags = " do"
	}
	fmt.Fprintf(sb, "; EDNS: version: %d, flags:%s; udp: %d\n",
		opt.Version(), ednsFlags, opt.UDPSize())
	for _, o := range opt.Option {
		switch o := o.(type) {
		case *dns.EDNS0_NSID:
			fmt.Fprintf(sb, "; NSID: %s\n", nsidString(o.Nsid))
		case *dns.EDNS0_COOKIE:
			fmt.Fprintf(sb, "; COOKIE: %s\n", o.Cookie)
		default:
			fmt.Fprintf(sb, "; OPT=%d\n", o.Option())
		}
	}
}

// nsidString renders an NSID payload the dig way: space-separated hex octets
// followed by the printable-ASCII reading in parentheses.
func nsidString(nsid string) string {
	raw, err := hex.DecodeString(nsid)
	if err != nil {
		return nsid
	}
	var hexpart, ascii strings.Builder
	for ix, b := range raw {
		if ix > 0 {
			hexpart.WriteByte(' ')
		}
		fmt.Fprintf(&hexpart, "%02x", b)
		if b >= 0x20 && b < 0x7f {
			ascii.WriteByte(b)
		} else {
			ascii.WriteByte('.')
		}
	}

	return fmt.Sprintf("%s (%q)", hexpart.String(), ascii.String())
}

func renderSection(sb *strings.Builder, name string, rrs []dns.RR,
	eff *options, show bool) {
	if !show || len(rrs) == 0 {
		return
	}
	if eff.showComments {
		fmt.Fprintf(sb, "\n;; %s SECTION:\n", name)
	}
	for _, rr := range rrs {
		sb.WriteString(rrLine(rr, eff))
		sb.WriteByte('\n')
	}
}

// withoutOpt strips the OPT pseudo record, which renders in its own section.
func withoutOpt(rrs []dns.RR) []dns.RR {
	out := make([]dns.RR, 0, len(rrs))
	for _, rr := range rrs {
		if rr.Header().Rrtype == dns.TypeOPT {
			continue
		}
		out = append(out, rr)
	}

	return out
}

func questionLine(q dns.Question, eff *options) string {
	line := padTo24(";" + q.Name)
	line += "\t" // Empty TTL column keeps the type aligned with the answers
	if eff.showClass {
		line += dnsutil.ClassToString(q.Qclass) + "\t"
	}
	line += dnsutil.TypeToString(q.Qtype)

	return line
}

// rrLine renders one resource record in presentation format with the columns
// the display toggles call for.
func rrLine(rr dns.RR, eff *options) string {
	hdr := rr.Header()
	line := padTo24(hdr.Name)
	if eff.showTTL {
		line += strconv.FormatUint(uint64(hdr.Ttl), 10) + "\t"
	}
	if eff.showClass {
		line += dnsutil.ClassToString(hdr.Class) + "\t"
	}
	line += dnsutil.TypeToString(hdr.Rrtype) + "\t"

	switch rr := rr.(type) {
	case *dns.SOA:
		if eff.multiline {
			return line + multilineSOA(rr)
		}
	case *dns.DNSKEY:
		if eff.rrComments {
			return line + rdataString(rr) +
				fmt.Sprintf("\n; key id = %d", rr.KeyTag())
		}
	}

	return line + rdataString(rr)
}

// rdataString is the presentation form of the rdata alone. miekg renders the
// whole record as header-then-rdata so stripping the header prefix leaves
// exactly the rdata text.
func rdataString(rr dns.RR) string {
	return strings.TrimPrefix(rr.String(), rr.Header().String())
}

// multilineSOA renders the SOA rdata in the parenthesized master-file form
// with one numeric field per line.
func multilineSOA(soa *dns.SOA) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s (\n", soa.Ns, soa.Mbox)
	fmt.Fprintf(&sb, "\t\t\t\t%-10d ; serial\n", soa.Serial)
	fmt.Fprintf(&sb, "\t\t\t\t%-10d ; refresh\n", soa.Refresh)
	fmt.Fprintf(&sb, "\t\t\t\t%-10d ; retry\n", soa.Retry)
	fmt.Fprintf(&sb, "\t\t\t\t%-10d ; expire\n", soa.Expire)
	fmt.Fprintf(&sb, "\t\t\t\t%-10d ; minimum\n", soa.Minttl)
	sb.WriteString("\t\t\t\t)")

	return sb.String()
}

// padTo24 appends tabs until the text reaches at least column 24, the layout
// the reference client uses for the owner-name column.
func padTo24(s string) string {
	col := len(s)
	pad := ""
	for {
		col = (col/8 + 1) * 8
		pad += "\t"
		if col >= 24 {
			break
		}
	}

	return s + pad
}
