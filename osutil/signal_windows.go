//go:build windows
// +build windows

package osutil

import (
	"os"
	"os/signal"
)

// InterruptNotify asks the OS to send user-initiated termination signals to the
// supplied channel.
func InterruptNotify(c chan os.Signal) {
	signal.Notify(c, os.Interrupt)
}

// IsSignalINT returns true if the supplied signal is SIGINT.
func IsSignalINT(s os.Signal) bool {
	return s == os.Interrupt
}

// IsSignalTERM always returns false on Windows.
func IsSignalTERM(s os.Signal) bool {
	return false
}
