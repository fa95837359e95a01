//go:build !windows
// +build !windows

// Package osutil isolates the platform-specific parts of signal handling.
package osutil

import (
	"os"
	"os/signal"
	"syscall"
)

// InterruptNotify asks the OS to send user-initiated termination signals to the
// supplied channel.
func InterruptNotify(c chan os.Signal) {
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
}

// IsSignalINT returns true if the supplied signal is SIGINT.
func IsSignalINT(s os.Signal) bool {
	return s == os.Interrupt
}

// IsSignalTERM returns true if the supplied signal is SIGTERM. A noop on Windows.
func IsSignalTERM(s os.Signal) bool {
	return s == syscall.SIGTERM
}
