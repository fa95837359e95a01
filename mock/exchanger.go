package mock

import (
	"context"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/lgdns/lgdig/resolver"
)

// Action is one scripted step for an Exchanger. Normally exactly one of Msg or
// Err is set.
type Action struct {
	Msg *dns.Msg
	Rtt time.Duration
	Err error
}

// Exchanger implements resolver.Exchanger with a pre-loaded script of
// responses. Each call to Exchange consumes the next Action; when the script
// runs dry the last Action repeats. Servers and networks of each exchange are
// recorded for later inspection.
type Exchanger struct {
	mu       sync.Mutex
	script   []Action
	next     int
	Servers  []string
	Networks []string
}

// NewExchanger creates an Exchanger which replays the supplied actions in order.
func NewExchanger(actions ...Action) *Exchanger {
	return &Exchanger{script: actions}
}

func (t *Exchanger) Exchange(ctx context.Context, c resolver.ExchangeConfig,
	q *dns.Msg, server string) (*dns.Msg, time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Servers = append(t.Servers, server)
	t.Networks = append(t.Networks, c.Net)

	if len(t.script) == 0 {
		return nil, 0, context.DeadlineExceeded
	}
	a := t.script[t.next]
	if t.next < len(t.script)-1 {
		t.next++
	}

	var r *dns.Msg
	if a.Msg != nil {
		r = a.Msg.Copy()
		r.Id = q.Id // Mimic a real exchange which echoes the query Id
	}

	return r, a.Rtt, a.Err
}

// Calls returns how many exchanges have been attempted.
func (t *Exchanger) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.Servers)
}
