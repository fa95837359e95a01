package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/miekg/dns"
)

// ErrNoServers is returned by Query when the Config contains no nameservers at
// all, meaning no exchange was even attempted.
var ErrNoServers = errors.New("no servers were queried")

// NetworkError reports that every exchange attempt failed at the transport
// level - timeouts, refused connections and the like. It is not fatal to the
// application; the renderer turns it into the familiar dig notice.
type NetworkError struct {
	Server string // Last server attempted
	Err    error  // Last underlying error
}

func (t *NetworkError) Error() string {
	return fmt.Sprintf("network error talking to %s: %s", t.Server, t.Err.Error())
}

func (t *NetworkError) Unwrap() error {
	return t.Err
}

// MalformedError reports that a server sent back bytes which did not parse as
// a DNS message.
type MalformedError struct {
	Server string
	Err    error
}

func (t *MalformedError) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", t.Server, t.Err.Error())
}

func (t *MalformedError) Unwrap() error {
	return t.Err
}

// classify converts an exchange error into one of our error kinds. Unpack
// failures from miekg arrive as *dns.Error so they distinguish a malformed
// response from a transport failure.
func classify(err error, server string) error {
	var derr *dns.Error
	if errors.As(err, &derr) {
		return &MalformedError{Server: server, Err: err}
	}

	return &NetworkError{Server: server, Err: err}
}

// isTimeout returns true for deadline-style failures.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
