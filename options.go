package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/miekg/dns"
)

// The +option grammar. Raw tokens are stored verbatim during the argument scan
// and only interpreted at query finalization - global list first, then the
// query's own list, later wins - because the global list isn't complete until
// the whole argument vector has been scanned.

// applyOptions interprets each token against opts in order.
func applyOptions(opts *options, tokens []string) error {
	for _, tok := range tokens {
		if err := applyOption(opts, tok); err != nil {
			return err
		}
	}

	return nil
}

// valuedOption is a keyword taking "=value". The keyword must be followed by
// '=' at its exact boundary or end-of-token; anything else is a different
// option entirely, so a keyword never swallows a longer name sharing its
// prefix.
type valuedOption struct {
	keyword  string
	required bool // A bare keyword is MissingArgument when true
	apply    func(opts *options, tok, val string) error
}

var valuedOptions = []valuedOption{
	{"bufsize", true, applyBufsize},
	{"edns", false, applyEDNS},
	{"retry", true, applyRetry},
	{"tries", true, applyTries},
	{"timeout", true, applyTimeout},
	{"time", true, applyTimeout},
	{"trusted-key", true, applyTrustedKey},
}

// applyOption interprets one +token as a mutation of opts.
func applyOption(opts *options, tok string) error {
	body := strings.TrimPrefix(tok, "+")
	if len(body) == 0 {
		return cmdLineErrorf("unrecognized option '%s'", tok)
	}

	for _, vo := range valuedOptions {
		val, present, match := matchValued(body, vo.keyword)
		if !match {
			continue
		}
		if !present {
			if vo.required {
				return cmdLineErrorf("option '+%s' requires a value", vo.keyword)
			}
			val = ""
		}
		return vo.apply(opts, tok, val)
	}

	value := true
	name := body
	if strings.HasPrefix(body, "no") {
		value = false
		name = body[2:]
	}
	if toggle, ok := toggleOptions[name]; ok {
		toggle(opts, value)
		return nil
	}

	return cmdLineErrorf("unrecognized option '%s'", tok)
}

// matchValued splits "keyword=value". Returns the value, whether a value was
// present and whether the keyword matched at all.
func matchValued(body, keyword string) (string, bool, bool) {
	if body == keyword {
		return "", false, true
	}
	if strings.HasPrefix(body, keyword+"=") {
		return body[len(keyword)+1:], true, true
	}

	return "", false, false
}

func applyBufsize(opts *options, tok, val string) error {
	v, err := strconv.Atoi(val)
	if err != nil || v < 0 || v > 65535 {
		return cmdLineErrorf("bad numeric argument in '%s'", tok)
	}
	opts.ednsSize = uint16(v)
	if opts.ednsVersion == ednsDisabled {
		opts.ednsVersion = 0
	}

	return nil
}

func applyEDNS(opts *options, tok, val string) error {
	if len(val) == 0 { // Bare +edns just turns EDNS on
		if opts.ednsVersion == ednsDisabled {
			opts.ednsVersion = 0
		}
		return nil
	}
	v, err := strconv.Atoi(val)
	if err != nil || v < 0 || v > 255 {
		return cmdLineErrorf("bad numeric argument in '%s'", tok)
	}
	opts.ednsVersion = v

	return nil
}

func applyRetry(opts *options, tok, val string) error {
	v, err := strconv.Atoi(val)
	if err != nil {
		return cmdLineErrorf("bad numeric argument in '%s'", tok)
	}
	opts.attempts = v + 1 // retry counts re-tries, not tries
	if opts.attempts < 1 {
		opts.attempts = 1
	}

	return nil
}

func applyTries(opts *options, tok, val string) error {
	v, err := strconv.Atoi(val)
	if err != nil {
		return cmdLineErrorf("bad numeric argument in '%s'", tok)
	}
	opts.attempts = v
	if opts.attempts < 1 {
		opts.attempts = 1
	}

	return nil
}

func applyTimeout(opts *options, tok, val string) error {
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return cmdLineErrorf("bad numeric argument in '%s'", tok)
	}
	if v < minTimeout {
		v = minTimeout
	}
	opts.timeout = v

	return nil
}

func applyTrustedKey(opts *options, tok, val string) error {
	return loadTrustedKeys(opts, val)
}

// toggleOptions maps boolean keywords to their mutation. The scanner passes
// false for the "+no<x>" negative form.
var toggleOptions = map[string]func(*options, bool){
	"aa":     func(o *options, v bool) { o.aaFlag = v },
	"aaflag": func(o *options, v bool) { o.aaFlag = v },
	"aaonly": func(o *options, v bool) { o.aaFlag = v },
	"ad":     func(o *options, v bool) { o.adFlag = v },
	"adflag": func(o *options, v bool) { o.adFlag = v },
	"cd":     func(o *options, v bool) { o.cdFlag = v },
	"cdflag": func(o *options, v bool) { o.cdFlag = v },

	"recurse": func(o *options, v bool) { o.recurse = v },

	"dnssec": func(o *options, v bool) {
		if v {
			o.ednsFlags |= doFlag
			if o.ednsVersion == ednsDisabled {
				o.ednsVersion = 0
			}
		} else {
			o.ednsFlags &^= doFlag
		}
	},

	"edns": func(o *options, v bool) {
		// Only the negative form reaches here; bare +edns is a valued option.
		// EDNS-dependent settings are purposely retained across a disable so a
		// later re-enable restores them.
		if v {
			if o.ednsVersion == ednsDisabled {
				o.ednsVersion = 0
			}
		} else {
			o.ednsVersion = ednsDisabled
		}
	},

	"nsid": func(o *options, v bool) {
		if !v {
			o.removeEDNSOpt(dns.EDNS0NSID) // Tolerant of absence
			return
		}
		if o.ednsVersion != ednsDisabled {
			o.setEDNSOpt(&dns.EDNS0_NSID{Code: dns.EDNS0NSID})
		}
	},

	"cookie": func(o *options, v bool) {
		if !v {
			o.removeEDNSOpt(dns.EDNS0COOKIE)
			return
		}
		if o.ednsVersion != ednsDisabled {
			// Placeholder; the client cookie value is derived per query once
			// the server list is known
			o.setEDNSOpt(&dns.EDNS0_COOKIE{Code: dns.EDNS0COOKIE})
		}
	},

	"tcp":    func(o *options, v bool) { o.tcpOnly = v },
	"vc":     func(o *options, v bool) { o.tcpOnly = v },
	"ignore": func(o *options, v bool) { o.ignoreTC = v },

	"short":      func(o *options, v bool) { o.short = v },
	"identify":   func(o *options, v bool) { o.identify = v },
	"comments":   func(o *options, v bool) { o.showComments = v },
	"rrcomments": func(o *options, v bool) { o.rrComments = v },
	"question":   func(o *options, v bool) { o.showQuestion = v },
	"answer":     func(o *options, v bool) { o.showAnswer = v },
	"authority":  func(o *options, v bool) { o.showAuthority = v },
	"additional": func(o *options, v bool) { o.showAdditional = v },
	"stats":      func(o *options, v bool) { o.showStats = v },
	"cl":         func(o *options, v bool) { o.showClass = v },
	"ttlid":      func(o *options, v bool) { o.showTTL = v },
	"multiline":  func(o *options, v bool) { o.multiline = v },

	"all": func(o *options, v bool) {
		o.showComments = v
		o.showQuestion = v
		o.showAnswer = v
		o.showAuthority = v
		o.showAdditional = v
		o.showStats = v
	},
}

// loadTrustedKeys reads trust-anchor DNSKEY records from a master-format file.
// Any read or parse failure fails the whole invocation; trust material is not
// something to limp past.
func loadTrustedKeys(opts *options, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return wrapSemantic(err, "cannot read trusted-key file '%s'", path)
	}
	defer f.Close()

	zp := dns.NewZoneParser(f, ".", path)
	zp.SetDefaultTTL(3600) // Trust anchor files routinely omit TTLs

	found := 0
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		if key, ok := rr.(*dns.DNSKEY); ok {
			opts.trustedKeys = append(opts.trustedKeys, key)
			found++
		}
	}
	if err := zp.Err(); err != nil {
		return wrapSemantic(err, "cannot parse trusted-key file '%s'", path)
	}
	if found == 0 {
		return semanticErrorf("no DNSKEY records in trusted-key file '%s'", path)
	}

	return nil
}
