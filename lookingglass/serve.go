package lookingglass

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/miekg/dns"

	"github.com/lgdns/lgdig/dnsutil"
	"github.com/lgdns/lgdig/log"
	"github.com/lgdns/lgdig/resolver"
)

// Serve implements the answering end of the bridge protocol: it reads request
// lines from r, performs each exchange directly and writes response lines to
// w. It returns when r reaches EOF or becomes unreadable. Per-request failures
// are reported in-band to the peer, never fatally.
//
// This is what "lgdig -g" runs, either behind a unix-domain socket for the ws
// tunnel or as the remote command of the ssh tunnel.
func Serve(r io.Reader, w io.Writer) error {
	return serve(r, w, resolver.NewDirect())
}

// serve is Serve with an injectable Exchanger for tests.
func serve(r io.Reader, w io.Writer, xchg resolver.Exchanger) error {
	br := bufio.NewReaderSize(r, maxLine)
	bw := bufio.NewWriter(w)

	for {
		line, err := readLine(br)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if len(line) <= 1 { // Bare newlines between requests are tolerated
			continue
		}

		resp := handle(line, xchg)
		enc, err := json.Marshal(resp)
		if err != nil {
			return err
		}
		enc = append(enc, '\n')
		if _, err = bw.Write(enc); err != nil {
			return err
		}
		if err = bw.Flush(); err != nil {
			return err
		}
	}
}

// handle performs one bridge exchange. All failures are folded into the
// response's Err field.
func handle(line []byte, xchg resolver.Exchanger) *response {
	req := &request{}
	if err := json.Unmarshal(line, req); err != nil {
		return &response{Err: "bad request: " + err.Error()}
	}

	q := new(dns.Msg)
	if err := q.Unpack(req.Msg); err != nil {
		return &response{Err: "bad query message: " + err.Error()}
	}
	if len(req.Server) == 0 {
		return &response{Err: "no server in request"}
	}

	c := resolver.ExchangeConfig{
		Net:     dnsutil.UDPNetwork,
		Timeout: timeoutOrDefault(req.Timeout),
		UDPSize: dnsutil.MaxUDPSize,
	}
	if req.TCP {
		c.Net = dnsutil.TCPNetwork
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	if log.IfDebug() {
		log.Debugf("Bridge exchange %s %s", c.Net, req.Server)
	}
	r, _, err := xchg.Exchange(ctx, c, q, req.Server)
	if err != nil {
		return &response{Err: err.Error()}
	}
	wire, err := r.Pack()
	if err != nil {
		return &response{Err: "cannot pack response: " + err.Error()}
	}

	return &response{Msg: wire}
}
