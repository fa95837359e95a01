package main

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/miekg/dns"

	"github.com/lgdns/lgdig/resolver"
)

func testResponse(t *testing.T) *resolver.Response {
	t.Helper()
	m := new(dns.Msg)
	m.Id = 1234
	m.Response = true
	m.RecursionDesired = true
	m.RecursionAvailable = true
	m.Question = []dns.Question{
		{Name: "example.com.", Qtype: dns.TypeA, Qclass: dns.ClassINET}}
	m.Answer = []dns.RR{mustRR(t, "example.com. 3600 IN A 192.0.2.80")}

	return &resolver.Response{
		Msg:    m,
		Server: "192.0.2.1:53",
		Rtt:    12 * time.Millisecond,
		When:   time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC),
		Size:   56,
	}
}

func TestRenderFull(t *testing.T) {
	resp := testResponse(t)
	got := render(resp, nil, newOptions())

	expect := `;; Got answer:
;; ->>HEADER<<- opcode: QUERY, status: NOERROR, id: 1234
;; flags: qr rd ra; QUERY: 1, ANSWER: 1, AUTHORITY: 0, ADDITIONAL: 0

;; QUESTION SECTION:
;example.com.			IN	A

;; ANSWER SECTION:
example.com.		3600	IN	A	192.0.2.80

;; Query time: 12 msec
;; SERVER: 192.0.2.1#53(192.0.2.1)
;; WHEN: ` + resp.When.Format(time.UnixDate) + `
;; MSG SIZE  rcvd: 56

`
	if got != expect {
		t.Errorf("Full render mismatch.\nGot:\n%q\nWant:\n%q", got, expect)
	}
}

func TestRenderWarningRecursion(t *testing.T) {
	resp := testResponse(t)
	resp.Msg.RecursionAvailable = false
	got := render(resp, nil, newOptions())
	if !strings.Contains(got, ";; WARNING: recursion requested but not available") {
		t.Error("Expected the recursion warning in:", got)
	}
}

func TestRenderShort(t *testing.T) {
	resp := testResponse(t)
	eff := newOptions()
	eff.short = true

	if got := render(resp, nil, eff); got != "192.0.2.80\n" {
		t.Errorf("Short render mismatch: %q", got)
	}

	eff.identify = true
	expect := "192.0.2.80 from server 192.0.2.1:53 in 12 ms\n"
	if got := render(resp, nil, eff); got != expect {
		t.Errorf("Short+identify mismatch: %q", got)
	}
}

func TestRenderErrors(t *testing.T) {
	eff := newOptions()

	if got := render(nil, resolver.ErrNoServers, eff); got != ";; no servers were queried\n\n" {
		t.Errorf("No-servers render mismatch: %q", got)
	}

	nerr := &resolver.NetworkError{Server: "192.0.2.1:53",
		Err: fmt.Errorf("i/o timeout")}
	if got := render(nil, nerr, eff); got != ";; connection timed out; no servers could be reached\n\n" {
		t.Errorf("Timeout render mismatch: %q", got)
	}

	merr := &resolver.MalformedError{Server: "192.0.2.1:53",
		Err: fmt.Errorf("overflow")}
	expect := ";; Warning: Message parser reports malformed message from 192.0.2.1:53\n\n"
	if got := render(nil, merr, eff); got != expect {
		t.Errorf("Malformed render mismatch: %q", got)
	}
}

func TestRenderToggles(t *testing.T) {
	resp := testResponse(t)

	eff := newOptions()
	eff.showComments = false
	got := render(resp, nil, eff)
	if strings.Contains(got, ";; Got answer:") ||
		strings.Contains(got, ";; ANSWER SECTION:") {
		t.Error("+nocomments should suppress the comment lines:", got)
	}
	if !strings.Contains(got, "192.0.2.80") {
		t.Error("+nocomments should keep the records:", got)
	}

	eff = newOptions()
	eff.showAnswer = false
	if got := render(resp, nil, eff); strings.Contains(got, "192.0.2.80") {
		t.Error("+noanswer should suppress the answer records")
	}

	eff = newOptions()
	eff.showStats = false
	if got := render(resp, nil, eff); strings.Contains(got, ";; Query time:") {
		t.Error("+nostats should suppress the stats block")
	}

	eff = newOptions()
	eff.showQuestion = false
	if got := render(resp, nil, eff); strings.Contains(got, ";example.com.") {
		t.Error("+noquestion should suppress the question line")
	}
}

func TestRenderColumnToggles(t *testing.T) {
	rr := mustRR(t, "example.com. 3600 IN A 192.0.2.80")

	eff := newOptions()
	if got := rrLine(rr, eff); got != "example.com.\t\t3600\tIN\tA\t192.0.2.80" {
		t.Errorf("Default columns mismatch: %q", got)
	}

	eff.showClass = false
	if got := rrLine(rr, eff); got != "example.com.\t\t3600\tA\t192.0.2.80" {
		t.Errorf("+nocl mismatch: %q", got)
	}

	eff.showClass = true
	eff.showTTL = false
	if got := rrLine(rr, eff); got != "example.com.\t\tIN\tA\t192.0.2.80" {
		t.Errorf("+nottlid mismatch: %q", got)
	}
}

func TestRenderOptPseudosection(t *testing.T) {
	resp := testResponse(t)
	opt := new(dns.OPT)
	opt.Hdr.Name = "."
	opt.Hdr.Rrtype = dns.TypeOPT
	opt.SetUDPSize(1232)
	opt.SetDo()
	opt.Option = append(opt.Option, &dns.EDNS0_NSID{
		Code: dns.EDNS0NSID, Nsid: "6865"})
	resp.Msg.Extra = append(resp.Msg.Extra, opt)

	got := render(resp, nil, newOptions())
	for _, want := range []string{
		";; OPT PSEUDOSECTION:",
		"; EDNS: version: 0, flags: do; udp: 1232",
		`; NSID: 68 65 ("he")`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("OPT render missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, ";; ADDITIONAL SECTION:") {
		t.Error("The OPT RR must not leak into the additional section")
	}
}

func TestRenderMultilineSOA(t *testing.T) {
	rr := mustRR(t,
		"example.com. 3600 IN SOA ns.example.com. admin.example.com. 2026082301 7200 3600 1209600 300")

	eff := newOptions()
	eff.multiline = true
	got := rrLine(rr, eff)
	for _, want := range []string{
		"ns.example.com. admin.example.com. (",
		"2026082301 ; serial",
		"7200       ; refresh",
		"; minimum",
		")",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Multiline SOA missing %q in:\n%s", want, got)
		}
	}
}

func TestRenderDNSKEYComment(t *testing.T) {
	rr := mustRR(t,
		". 172800 IN DNSKEY 257 3 8 AwEAAaz/tAm8yTn4Mfeh5eyI96WSVexTBAvkMgJzkKTOiW1vkIbzxeF3")
	key := rr.(*dns.DNSKEY)

	eff := newOptions()
	eff.rrComments = true
	got := rrLine(rr, eff)
	want := fmt.Sprintf("; key id = %d", key.KeyTag())
	if !strings.Contains(got, want) {
		t.Errorf("DNSKEY comment missing %q in:\n%s", want, got)
	}
}

func TestFlagsString(t *testing.T) {
	m := new(dns.Msg)
	if got := flagsString(m); got != "" {
		t.Errorf("No flags should render empty, got %q", got)
	}
	m.Response = true
	m.Authoritative = true
	m.Truncated = true
	m.RecursionDesired = true
	m.RecursionAvailable = true
	m.AuthenticatedData = true
	m.CheckingDisabled = true
	if got := flagsString(m); got != " qr aa tc rd ra ad cd" {
		t.Errorf("Flags order mismatch: %q", got)
	}
}

func TestPadTo24(t *testing.T) {
	testCases := []struct {
		in   string
		tabs int
	}{
		{"a.", 3},
		{"example.", 2},
		{"example.com.", 2},
		{"a-name-of-15-ch.", 1},
		{"a-name-well-past-column-24.example.com.", 1},
	}

	for tx, tc := range testCases {
		got := padTo24(tc.in)
		if got != tc.in+strings.Repeat("\t", tc.tabs) {
			t.Errorf("%d: padTo24(%q) = %q", tx, tc.in, got)
		}
	}
}

func TestNSIDString(t *testing.T) {
	if got := nsidString("68656c6c6f"); got != `68 65 6c 6c 6f ("hello")` {
		t.Errorf("NSID mismatch: %q", got)
	}
	if got := nsidString("0001"); got != `00 01 ("..")` {
		t.Errorf("Unprintable NSID mismatch: %q", got)
	}
	if got := nsidString("zz"); got != "zz" { // Not hex: pass through
		t.Errorf("Bad hex NSID mismatch: %q", got)
	}
}
