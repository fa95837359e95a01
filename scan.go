package main

import (
	"net"
	"strconv"
	"strings"

	"github.com/miekg/dns"

	"github.com/lgdns/lgdig/dnsutil"
	"github.com/lgdns/lgdig/lookingglass"
	"github.com/lgdns/lgdig/resolver"
)

type parseResult int // This is a ternary variable
const (
	parseStop     parseResult = iota // No error, but don't continue
	parseContinue                    // No errors and continue
	parseFailed                      // Errors, do not continue
)

// query is one DNS question to ask: its identity, its own nameservers and its
// own option overlay. Queries are created by the scanner and finalized only
// after the whole argument list is known.
type query struct {
	name   string
	qtype  uint16 // 0 means fall back to the global default, then A
	qclass uint16 // 0 means fall back to the global default, then IN

	servers []string // Verbatim @tokens; empty means use the global list
	opts    []string // Verbatim +tokens layered over the global options

	// Set by finalize()
	eff      *options
	resolved []string // Nameservers with hostnames expanded
	xchg     resolver.Exchanger
}

// lgdig holds the state accumulated by one invocation.
type lgdig struct {
	opts          *options
	globalServers []string
	globalOpts    []string
	queries       []*query
	serveMode     bool // -g: run as a looking-glass bridge instead of querying

	glass *lookingglass.Resolver
}

func newLgdig() *lgdig {
	return &lgdig{opts: newOptions()}
}

// scanArgs consumes the argument vector in a single left-to-right pass,
// advancing an index and never re-reading a position. Tokens mutate either the
// global state or the currently open query; bare names, -x and -q open a new
// query which then becomes current. Deciding what a token means is strictly
// positional, which is why this is a hand-rolled scan rather than a flags
// package.
func (t *lgdig) scanArgs(args []string) (parseResult, error) {
	var current *query

	for ix := 0; ix < len(args); ix++ {
		arg := args[ix]

		switch {
		case strings.HasPrefix(arg, "@"):
			server := arg[1:]
			if len(server) == 0 {
				return parseFailed, cmdLineErrorf("missing server after '@'")
			}
			if current != nil {
				current.servers = append(current.servers, server)
			} else {
				t.globalServers = append(t.globalServers, server)
			}

		case arg == "-x":
			ix++
			if ix >= len(args) {
				return parseFailed, cmdLineErrorf("option '-x' requires an address")
			}
			name, err := dnsutil.ReverseName(args[ix])
			if err != nil {
				return parseFailed, wrapSemantic(err, "bad -x address")
			}
			current = &query{name: name, qtype: dns.TypePTR, qclass: dns.ClassINET}
			t.queries = append(t.queries, current)

		case arg == "-q":
			ix++
			if ix >= len(args) {
				return parseFailed, cmdLineErrorf("option '-q' requires a name")
			}
			current = &query{name: args[ix]}
			t.queries = append(t.queries, current)

		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			res, err := t.dashOption(args, &ix)
			if res != parseContinue || err != nil {
				return res, err
			}

		case strings.HasPrefix(arg, "+"):
			if current != nil {
				current.opts = append(current.opts, arg)
			} else {
				t.globalOpts = append(t.globalOpts, arg)
			}

		default:
			// A bare term. Before any query exists it may set the process-wide
			// default class or type; otherwise it names a new query, possibly
			// trailed by its own type and class terms.
			if current == nil {
				if t.opts.qclass == 0 {
					if c, ok := dnsutil.StringToClass(arg); ok {
						t.opts.qclass = c
						continue
					}
				}
				if t.opts.qtype == 0 {
					if v, ok := dnsutil.StringToType(arg); ok {
						t.opts.qtype = v
						continue
					}
				}
			}

			current = &query{name: arg}
			t.queries = append(t.queries, current)
			for ix+1 < len(args) && isBareTerm(args[ix+1]) &&
				(current.qtype == 0 || current.qclass == 0) {
				next := args[ix+1]
				if current.qtype == 0 {
					if v, ok := dnsutil.StringToType(next); ok {
						current.qtype = v
						ix++
						continue
					}
				}
				if current.qclass == 0 {
					if c, ok := dnsutil.StringToClass(next); ok {
						current.qclass = c
						ix++
						continue
					}
				}
				break // Leave the unmatched term for normal processing
			}
		}
	}

	if len(t.queries) == 0 && !t.serveMode {
		// dig's fallback: ask the root for its nameservers
		t.queries = append(t.queries,
			&query{name: ".", qtype: dns.TypeNS, qclass: dns.ClassINET})
	}

	return parseContinue, nil
}

func isBareTerm(arg string) bool {
	return len(arg) > 0 && arg[0] != '@' && arg[0] != '-' && arg[0] != '+'
}

// dashOption handles the single-letter dash options. The value, if the option
// takes one, is either the inline suffix ('-p53') or the following argument
// ('-p 53'). Boolean options take no value at all.
func (t *lgdig) dashOption(args []string, ixp *int) (parseResult, error) {
	arg := args[*ixp]
	letter := arg[1]
	inline := arg[2:]

	// Boolean options first
	if len(inline) == 0 {
		switch letter {
		case '4':
			t.opts.family = resolver.FamilyIPv4
			return parseContinue, nil
		case '6':
			t.opts.family = resolver.FamilyIPv6
			return parseContinue, nil
		case 'k':
			t.opts.insecure = true
			return parseContinue, nil
		case 'g':
			t.serveMode = true
			return parseContinue, nil
		case 'h':
			printUsage()
			return parseStop, nil
		case 'v':
			printVersion()
			return parseStop, nil
		}
	}

	value := inline
	if len(value) == 0 {
		*ixp++
		if *ixp >= len(args) {
			return parseFailed, cmdLineErrorf("option '%s' requires a value", arg)
		}
		value = args[*ixp]
	}

	switch letter {
	case 'b':
		ip := net.ParseIP(value)
		if ip == nil {
			return parseFailed, semanticErrorf("'%s' is not a valid bind address", value)
		}
		t.opts.bindIP = ip
	case 'c':
		c, ok := dnsutil.StringToClass(value)
		if !ok {
			return parseFailed, cmdLineErrorf("'%s' is not a valid class", value)
		}
		t.opts.qclass = c
	case 'p':
		if !validPort(value) {
			return parseFailed, cmdLineErrorf("'%s' is not a valid port", value)
		}
		t.opts.port = value
	case 't':
		v, ok := dnsutil.StringToType(value)
		if !ok {
			return parseFailed, cmdLineErrorf("'%s' is not a valid type", value)
		}
		t.opts.qtype = v
	case 'u':
		t.opts.lookingGlass = value
	default:
		return parseFailed, cmdLineErrorf("unrecognized option '%s'", arg)
	}

	return parseContinue, nil
}

func validPort(s string) bool {
	v, err := strconv.Atoi(s)

	return err == nil && v >= 0 && v <= 65535
}
