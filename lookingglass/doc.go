/*
Package lookingglass relays DNS queries through a remote vantage point instead
of exchanging them directly. A looking glass is named by URL and the scheme
selects the tunnel:

	http, https  POST each query to a web looking glass
	ws           a bridge listening on a local unix-domain socket
	ssh          run the bridge remotely via an ssh command pipe

All tunnels speak the same protocol: one JSON object per query carrying the
target server, transport hints and the base64 wire-format message, answered by
one JSON object carrying the wire-format response or an error string. Serve()
implements the answering end of that protocol on top of the direct resolver,
which is what "lgdig -g" runs.

The Resolver memoizes tunnels by URL so every query naming the same looking
glass shares one instance, and owns their shutdown via Close().
*/
package lookingglass
