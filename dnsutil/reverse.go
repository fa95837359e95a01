package dnsutil

import (
	"fmt"
	"net"

	"github.com/miekg/dns"
)

// ReverseName converts an IP address literal into the reverse lookup qName,
// e.g. 192.0.2.5 becomes 5.2.0.192.in-addr.arpa. and ipv6 addresses become the
// nibble form under ip6.arpa. An error is returned if the literal does not
// parse as an IP address.
func ReverseName(literal string) (string, error) {
	if ip := net.ParseIP(literal); ip == nil {
		return "", fmt.Errorf("'%s' is not a valid IP address", literal)
	}

	return dns.ReverseAddr(literal)
}
