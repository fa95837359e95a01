package lookingglass

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/miekg/dns"

	"github.com/lgdns/lgdig/dnsutil"
	"github.com/lgdns/lgdig/resolver"
)

// maxLine bounds one protocol line. A DNS message is at most 64k so base64
// plus JSON framing fits comfortably.
const maxLine = 128 * 1024

// request is the query half of the bridge protocol. Msg is the wire-format
// DNS message; encoding/json transports []byte as base64.
type request struct {
	Server  string  `json:"server"`
	TCP     bool    `json:"tcp,omitempty"`
	Timeout float64 `json:"timeout,omitempty"` // Seconds
	Msg     []byte  `json:"msg"`
}

// response is the answer half. Exactly one of Msg and Err is set.
type response struct {
	Msg []byte `json:"msg,omitempty"`
	Err string `json:"err,omitempty"`
}

// newRequest converts an exchange into its protocol form.
func newRequest(c resolver.ExchangeConfig, q *dns.Msg, server string) (*request, error) {
	wire, err := q.Pack()
	if err != nil {
		return nil, err
	}

	return &request{
		Server:  server,
		TCP:     c.Net == dnsutil.TCPNetwork,
		Timeout: c.Timeout.Seconds(),
		Msg:     wire,
	}, nil
}

// unpackResponse converts a protocol response back into a message. A non-empty
// Err field travels back as a plain error; an unparseable Msg becomes a
// *dns.Error so callers classify it as a malformed response.
func unpackResponse(resp *response) (*dns.Msg, error) {
	if len(resp.Err) > 0 {
		return nil, fmt.Errorf("looking glass: %s", resp.Err)
	}
	r := new(dns.Msg)
	if err := r.Unpack(resp.Msg); err != nil {
		return nil, err
	}

	return r, nil
}

// roundTrip writes one request line and reads one response line over a
// stream-style tunnel (unix socket or ssh pipe).
func roundTrip(w io.Writer, r io.Reader, req *request) (*response, error) {
	enc, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	enc = append(enc, '\n')
	if _, err = w.Write(enc); err != nil {
		return nil, err
	}

	line, err := readLine(bufio.NewReaderSize(r, maxLine))
	if err != nil {
		return nil, err
	}
	resp := &response{}
	if err = json.Unmarshal(line, resp); err != nil {
		return nil, fmt.Errorf("looking glass sent junk: %w", err)
	}

	return resp, nil
}

// readLine reads one newline-terminated protocol line, rejecting over-long
// input rather than silently truncating it.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, err
	}
	if len(line) >= maxLine {
		return nil, fmt.Errorf("looking glass line exceeds %d bytes", maxLine)
	}

	return line, nil
}

// timeoutOrDefault converts the protocol's float seconds to a duration with a
// sane floor so a hostile client cannot request an unbounded exchange.
func timeoutOrDefault(secs float64) time.Duration {
	if secs < 1 {
		return 5 * time.Second
	}

	return time.Duration(secs * float64(time.Second))
}
