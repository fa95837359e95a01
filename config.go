package main

import (
	"crypto/rand"
	"encoding/binary"
	"net"
	"runtime/debug"

	"github.com/miekg/dns"

	"github.com/lgdns/lgdig/dnsutil"
	"github.com/lgdns/lgdig/resolver"
)

const (
	programName = "lgdig"

	defaultProjectURL = "https://github.com/lgdns/lgdig"

	resolvConf = "/etc/resolv.conf"

	defaultPort     = "53"
	defaultTimeout  = 5.0 // Seconds
	minTimeout      = 1.0
	defaultAttempts = 3 // dig-compatible: retry=2

	ednsDisabled = -1

	doFlag = uint16(1) << 15 // DNSSEC OK bit within ednsFlags
)

// cookieSecret seeds the siphash derivation of EDNS client cookies. Fresh per
// invocation so cookies are unlinkable across runs.
var cookieSecret [2]uint64

func init() {
	var seed [16]byte
	rand.Read(seed[:]) // rand.Read never fails per its contract
	cookieSecret[0] = binary.BigEndian.Uint64(seed[0:8])
	cookieSecret[1] = binary.BigEndian.Uint64(seed[8:16])
}

// options is the full set of dig-style toggles. A single global instance forms
// the base; each query layers its own +options over a copy, so options must
// stay copyable via copy().
type options struct {
	// Header flags of the outgoing query
	recurse bool
	aaFlag  bool
	adFlag  bool
	cdFlag  bool

	// EDNS. Version ednsDisabled means no OPT RR at all, but the remaining
	// EDNS fields are preserved so a later re-enable retains them.
	ednsVersion int
	ednsSize    uint16
	ednsFlags   uint16
	ednsOpts    []dns.EDNS0 // Ordered, deduplicated by option code

	// Transport
	tcpOnly      bool
	ignoreTC     bool
	timeout      float64 // Seconds, floor minTimeout
	attempts     int     // Floor 1
	family       resolver.Family
	bindIP       net.IP // nil means any source address
	port         string
	lookingGlass string // Empty means direct queries
	insecure     bool   // Skip TLS/hostkey verification on looking glass tunnels

	// Display
	showQuestion   bool
	showAnswer     bool
	showAuthority  bool
	showAdditional bool
	showComments   bool
	showStats      bool
	showClass      bool
	showTTL        bool
	identify       bool
	short          bool
	multiline      bool
	rrComments     bool

	// Process-wide query defaults, 0 means unset
	qtype  uint16
	qclass uint16

	// Trust anchor plumbing for +trusted-key
	trustedKeys []*dns.DNSKEY
}

// newOptions returns the dig-compatible defaults.
func newOptions() *options {
	return &options{
		recurse:        true,
		ednsVersion:    0,
		ednsSize:       dnsutil.MaxUDPSize,
		timeout:        defaultTimeout,
		attempts:       defaultAttempts,
		port:           defaultPort,
		showQuestion:   true,
		showAnswer:     true,
		showAuthority:  true,
		showAdditional: true,
		showComments:   true,
		showStats:      true,
		showClass:      true,
		showTTL:        true,
	}
}

// copy returns an independent clone. The slices are duplicated so per-query
// mutation never leaks back into the global base.
func (t *options) copy() *options {
	c := *t
	c.ednsOpts = append([]dns.EDNS0(nil), t.ednsOpts...)
	c.trustedKeys = append([]*dns.DNSKEY(nil), t.trustedKeys...)

	return &c
}

// setEDNSOpt appends the option, replacing any existing option of the same
// code so duplicates cannot accumulate.
func (t *options) setEDNSOpt(o dns.EDNS0) {
	for ix, existing := range t.ednsOpts {
		if existing.Option() == o.Option() {
			t.ednsOpts[ix] = o
			return
		}
	}
	t.ednsOpts = append(t.ednsOpts, o)
}

// removeEDNSOpt removes the option with the supplied code. Removing an absent
// option is a no-op, not an error.
func (t *options) removeEDNSOpt(code uint16) {
	for ix, existing := range t.ednsOpts {
		if existing.Option() == code {
			t.ednsOpts = append(t.ednsOpts[:ix], t.ednsOpts[ix+1:]...)
			return
		}
	}
}

// hasEDNSOpt reports whether an option with the supplied code is present.
func (t *options) hasEDNSOpt(code uint16) bool {
	for _, existing := range t.ednsOpts {
		if existing.Option() == code {
			return true
		}
	}

	return false
}

// projectURL prefers the module path embedded at build time.
func projectURL() string {
	if info, ok := debug.ReadBuildInfo(); ok && len(info.Main.Path) > 0 {
		return "https://" + info.Main.Path
	}

	return defaultProjectURL
}
