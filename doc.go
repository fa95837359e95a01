/*

Lgdig is a dig-style DNS query tool with pluggable transports. Queries are
normally exchanged directly over UDP or TCP, but they can also be relayed via
a remote "looking glass" reached over HTTP(S), a local unix-domain socket or
an ssh command pipe, which makes it possible to observe the DNS from another
vantage point while keeping the familiar dig command line and output format.

*/
package main
