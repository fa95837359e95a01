package main

import (
	"context"
	"io"
	"os"

	"github.com/lgdns/lgdig/log"
	"github.com/lgdns/lgdig/lookingglass"
	"github.com/lgdns/lgdig/osutil"
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdin, os.Stdout))
}

// realMain is main() with injectable streams and an exit code return. Exit
// code 1 means the invocation could not be constructed; transport failures
// during queries render as output and still exit 0, as the reference client's
// scripted callers expect.
func realMain(args []string, in io.Reader, out io.Writer) int {
	t := newLgdig()

	res, err := t.scanArgs(args)
	if err != nil {
		log.Majorf("%s: %s", programName, err.Error())
		if isCommandLineError(err) {
			log.Majorf("Run '%s -h' for usage", programName)
		}
		return 1
	}
	if res == parseStop {
		return 0
	}

	if t.serveMode {
		if err := lookingglass.Serve(in, out); err != nil {
			log.Majorf("%s: bridge: %s", programName, err.Error())
			return 1
		}
		return 0
	}

	t.glass = lookingglass.NewResolver()
	defer t.glass.Close()

	// An interrupt mid-query is a clean, silent exit. The tunnels are closed
	// here because os.Exit skips the deferred Close.
	sigc := make(chan os.Signal, 2)
	osutil.InterruptNotify(sigc)
	go func() {
		<-sigc
		t.glass.Close()
		os.Exit(0)
	}()

	if err := t.finalizeQueries(); err != nil {
		log.Majorf("%s: %s", programName, err.Error())
		return 1
	}

	ctx := context.Background()
	for _, q := range t.queries {
		t.execute(ctx, q, out)
	}

	return 0
}
