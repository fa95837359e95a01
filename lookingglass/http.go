package lookingglass

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/miekg/dns"

	"github.com/lgdns/lgdig/resolver"
)

// httpTunnel POSTs each query to a web looking glass as a JSON document and
// expects the protocol response back as the body.
type httpTunnel struct {
	url    string
	client *http.Client
}

func newHTTPTunnel(u *url.URL, insecure bool) *httpTunnel {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &httpTunnel{
		url:    u.String(),
		client: &http.Client{Transport: transport},
	}
}

func (t *httpTunnel) Exchange(ctx context.Context, c resolver.ExchangeConfig,
	q *dns.Msg, server string) (*dns.Msg, time.Duration, error) {
	req, err := newRequest(c, q, server)
	if err != nil {
		return nil, 0, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, 0, err
	}

	hReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url,
		bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	hReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	hResp, err := t.client.Do(hReq)
	if err != nil {
		return nil, 0, err
	}
	defer hResp.Body.Close()
	if hResp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("looking glass returned %s", hResp.Status)
	}

	resp := &response{}
	if err = json.NewDecoder(hResp.Body).Decode(resp); err != nil {
		return nil, 0, fmt.Errorf("looking glass sent junk: %w", err)
	}
	r, err := unpackResponse(resp)
	if err != nil {
		return nil, 0, err
	}

	return r, time.Now().Sub(start), nil
}

// Close discards idle connections held by the tunnel's http client.
func (t *httpTunnel) Close() error {
	t.client.CloseIdleConnections()

	return nil
}
