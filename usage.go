package main

import (
	"fmt"

	"github.com/lgdns/lgdig/log"
	"github.com/lgdns/lgdig/pregen"
)

const usageMessage = `NAME
	` + programName + ` -- a DNS query tool with looking-glass transports

SYNOPSIS
	` + programName + ` [global-options...] [query [query-options...]]...
	` + programName + ` -g

	Each query is a domain name optionally followed by a type and a
	class, or '-x address' for a reverse lookup, or '-q name' to force
	the next term to be a name. '@server' and '+option' terms before the
	first query apply to every query; after a query they apply to that
	query alone.

OPTIONS
	-4/-6     Only use IPv4/IPv6 nameserver addresses
	-b addr   Set the source address of outgoing queries
	-c class  Set the default query class (default: IN)
	-g        Run as a looking-glass bridge on stdin/stdout
	-h        Print this usage message and exit
	-k        Skip TLS and host-key verification on looking-glass tunnels
	-p port   Set the default nameserver port (default: ` + defaultPort + `)
	-q name   Query this name even if it looks like an option
	-t type   Set the default query type (default: A)
	-u url    Send queries via the looking glass at this URL. Supported
	          schemes: http, https, ws (unix socket path), ssh
	-v        Print version details and exit
	-x addr   Reverse lookup of an IPv4 or IPv6 address

	Plus-options follow the reference client: +short, +tcp, +norecurse,
	+dnssec, +nsid, +cookie, +bufsize=N, +edns=N, +noedns, +timeout=N,
	+tries=N, +retry=N, +trusted-key=file, display toggles and more.
`

func printUsage() {
	fmt.Fprint(log.Out(), usageMessage)
}

func printVersion() {
	fmt.Fprintf(log.Out(), "Program: %s %s Release: %s\n",
		programName, pregen.Version, pregen.ReleaseDate)
	fmt.Fprintf(log.Out(), "Project: %s\n", projectURL())
}
