package resolver

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
)

type scriptStep struct {
	r   *dns.Msg
	err error
}

type scriptExchanger struct {
	steps    []scriptStep
	ix       int
	servers  []string
	networks []string
}

func (t *scriptExchanger) Exchange(ctx context.Context, c ExchangeConfig, q *dns.Msg,
	server string) (*dns.Msg, time.Duration, error) {
	t.servers = append(t.servers, server)
	t.networks = append(t.networks, c.Net)
	step := t.steps[t.ix]
	if t.ix < len(t.steps)-1 {
		t.ix++
	}

	return step.r, time.Millisecond, step.err
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func newQuery(name string) *dns.Msg {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeA)

	return m
}

func newAnswer(q *dns.Msg, truncated bool) *dns.Msg {
	r := new(dns.Msg)
	r.SetReply(q)
	r.Truncated = truncated

	return r
}

func TestQueryNoServers(t *testing.T) {
	res := New(Config{Timeout: time.Second}, &scriptExchanger{})
	_, err := res.Query(context.Background(), newQuery("example.net"))
	if !errors.Is(err, ErrNoServers) {
		t.Error("Expected ErrNoServers, got", err)
	}
}

func TestQueryFirstServerAnswers(t *testing.T) {
	q := newQuery("example.net")
	xchg := &scriptExchanger{steps: []scriptStep{{r: newAnswer(q, false)}}}
	res := New(Config{
		Servers:  []string{"192.0.2.1", "192.0.2.2"},
		Port:     "53",
		Timeout:  time.Second,
		Attempts: 3,
	}, xchg)

	resp, err := res.Query(context.Background(), q)
	if err != nil {
		t.Fatal("Unexpected error", err)
	}
	if resp.Server != "192.0.2.1:53" {
		t.Error("Wrong server identity", resp.Server)
	}
	if len(xchg.servers) != 1 {
		t.Error("Expected exactly one exchange, got", xchg.servers)
	}
	if resp.Size != resp.Msg.Len() {
		t.Error("Size mismatch", resp.Size, resp.Msg.Len())
	}
}

func TestQueryIteratesServersAndAttempts(t *testing.T) {
	q := newQuery("example.net")
	xchg := &scriptExchanger{steps: []scriptStep{{err: timeoutError{}}}}
	res := New(Config{
		Servers:  []string{"192.0.2.1", "192.0.2.2"},
		Port:     "53",
		Timeout:  time.Second,
		Attempts: 2,
	}, xchg)

	_, err := res.Query(context.Background(), q)
	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatal("Expected NetworkError, got", err)
	}
	if len(xchg.servers) != 4 { // 2 servers x 2 attempts
		t.Error("Expected four exchanges, got", xchg.servers)
	}
	if nerr.Server != "192.0.2.2:53" {
		t.Error("Wrong last server", nerr.Server)
	}
}

func TestQueryTruncationRetriesOverTCP(t *testing.T) {
	q := newQuery("example.net")
	xchg := &scriptExchanger{steps: []scriptStep{
		{r: newAnswer(q, true)},
		{r: newAnswer(q, false)},
	}}
	res := New(Config{
		Servers:  []string{"192.0.2.1"},
		Port:     "53",
		Timeout:  time.Second,
		Attempts: 1,
	}, xchg)

	resp, err := res.Query(context.Background(), q)
	if err != nil {
		t.Fatal("Unexpected error", err)
	}
	if resp.Msg.Truncated {
		t.Error("Truncated answer should have been replaced by the TCP one")
	}
	if len(xchg.networks) != 2 || xchg.networks[0] != "udp" || xchg.networks[1] != "tcp" {
		t.Error("Expected udp then tcp, got", xchg.networks)
	}
}

func TestQueryIgnoreTC(t *testing.T) {
	q := newQuery("example.net")
	xchg := &scriptExchanger{steps: []scriptStep{{r: newAnswer(q, true)}}}
	res := New(Config{
		Servers:  []string{"192.0.2.1"},
		Timeout:  time.Second,
		Attempts: 1,
		IgnoreTC: true,
	}, xchg)

	resp, err := res.Query(context.Background(), q)
	if err != nil {
		t.Fatal("Unexpected error", err)
	}
	if !resp.Msg.Truncated {
		t.Error("IgnoreTC should keep the truncated answer")
	}
	if len(xchg.networks) != 1 {
		t.Error("IgnoreTC should not retry, got", xchg.networks)
	}
}

func TestQueryMalformedStopsEarly(t *testing.T) {
	q := newQuery("example.net")
	xchg := &scriptExchanger{steps: []scriptStep{
		{err: &dns.Error{}},
	}}
	res := New(Config{
		Servers:  []string{"192.0.2.1", "192.0.2.2"},
		Port:     "53",
		Timeout:  time.Second,
		Attempts: 3,
	}, xchg)

	_, err := res.Query(context.Background(), q)
	var merr *MalformedError
	if !errors.As(err, &merr) {
		t.Fatal("Expected MalformedError, got", err)
	}
	if merr.Server != "192.0.2.1:53" {
		t.Error("Malformed error names wrong server", merr.Server)
	}
	if len(xchg.servers) != 1 {
		t.Error("Malformed response should stop the query, got", xchg.servers)
	}
}

func TestFamilyFiltering(t *testing.T) {
	cfg := Config{
		Servers: []string{"192.0.2.1", "2001:db8::1", "ns.example.net"},
		Port:    "53",
		Family:  FamilyIPv4,
	}
	res := New(cfg, &scriptExchanger{steps: []scriptStep{{err: timeoutError{}}}})
	got := res.filteredServers()
	want := []string{"192.0.2.1:53", "ns.example.net:53"}
	if len(got) != len(want) {
		t.Fatal("FamilyIPv4 filter wrong", got)
	}
	for ix := range want {
		if got[ix] != want[ix] {
			t.Error("FamilyIPv4 filter wrong at", ix, got)
		}
	}

	cfg.Family = FamilyIPv6
	res = New(cfg, &scriptExchanger{steps: []scriptStep{{err: timeoutError{}}}})
	got = res.filteredServers()
	if len(got) != 2 || got[0] != "[2001:db8::1]:53" {
		t.Error("FamilyIPv6 filter wrong", got)
	}
}

func TestJoinPort(t *testing.T) {
	testCases := []struct{ in, port, want string }{
		{"192.0.2.1", "53", "192.0.2.1:53"},
		{"192.0.2.1:5353", "53", "192.0.2.1:5353"},
		{"::1", "53", "[::1]:53"},
		{"ns.example.net", "9053", "ns.example.net:9053"},
		{"ns.example.net", "", "ns.example.net:domain"},
	}
	for ix, tc := range testCases {
		if got := JoinPort(tc.in, tc.port); got != tc.want {
			t.Error(ix, "JoinPort got", got, "want", tc.want)
		}
	}
}

func TestIsTimeout(t *testing.T) {
	if !isTimeout(timeoutError{}) {
		t.Error("net timeout not detected")
	}
	if !isTimeout(context.DeadlineExceeded) {
		t.Error("context deadline not detected")
	}
	if isTimeout(errors.New("nope")) {
		t.Error("plain error misdetected as timeout")
	}
	var _ net.Error = timeoutError{} // Compile-time check the fake is a net.Error
}
