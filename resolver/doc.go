/*
Package resolver issues DNS queries on behalf of the application. It owns the
attempt/server iteration, per-attempt timeouts and UDP to TCP truncation
fallback, while the actual byte exchange is delegated to an Exchanger. The
default Exchanger talks directly to nameservers over UDP/TCP; alternative
Exchangers (such as the looking-glass tunnels) can be substituted without the
query logic changing.
*/
package resolver
