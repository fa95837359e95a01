package log

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type logLevel int

const (
	SilentLevel logLevel = iota
	MajorLevel
	MinorLevel
	DebugLevel
)

var (
	majorPrefix = ""        // Major output is user-facing so it gets no adornment
	minorPrefix = "  "      // Minor and debug prefixes visually subordinate their
	debugPrefix = "   Dbg:" // output to the major lines above them
	out         io.Writer
	level       logLevel
)

func init() {
	out = os.Stderr // Diagnostics stream - stdout belongs to the renderer
	level = MajorLevel
}

func (t logLevel) String() string {
	switch t {
	case MajorLevel:
		return "Major"
	case MinorLevel:
		return "Minor"
	case DebugLevel:
		return "Debug"
	}

	return "Silent"
}

// SetOut changes the output of logging to the supplied io.Writer. The default is
// os.Stderr. The supplied io.Writer must never be nil.
func SetOut(w io.Writer) {
	if w == nil {
		panic("log.SetOut() called with a nil io.Writer")
	}
	out = w
}

// Out returns the current io.Writer for callers which generate their own
// specialist output. The return value will never be nil.
func Out() io.Writer {
	return out
}

// SetLevel sets the current logging level.
func SetLevel(l logLevel) {
	level = l
}

// Level returns the current level.
func Level() logLevel {
	return level
}

// IfMajor returns true if Major logging is written to the output stream. The If*
// functions exist for cases where evaluation of the log arguments is expensive
// and the caller wishes to minimize that cost.
func IfMajor() bool {
	return level >= MajorLevel
}

func IfMinor() bool {
	return level >= MinorLevel
}

func IfDebug() bool {
	return level >= DebugLevel
}

// Majorf provides an approximate fmt.Printf equivalent interface to logging.
// Output is only generated if the level is >= Major. A newline is always added
// so the caller should not supply one. Multi-line output has each line prefixed
// with the level prefix.
func Majorf(format string, a ...interface{}) (n int, err error) {
	if level >= MajorLevel {
		return prefixAndPrintLines(fmt.Sprintf(format, a...), majorPrefix)
	}

	return 0, nil
}

// Major provides a fmt.Print like interface to logging. Output is only generated
// if the level is >= Major.
func Major(a ...interface{}) (n int, err error) {
	if level >= MajorLevel {
		return prefixAndPrintLines(fmt.Sprint(a...), majorPrefix)
	}

	return 0, nil
}

// Minorf provides a fmt.Printf equivalent interface to logging. Output is only
// generated if the level is >= Minor.
func Minorf(format string, a ...interface{}) (n int, err error) {
	if level >= MinorLevel {
		return prefixAndPrintLines(fmt.Sprintf(format, a...), minorPrefix)
	}

	return 0, nil
}

// Minor provides a fmt.Print like interface to logging. Output is only generated
// if the level is >= Minor.
func Minor(a ...interface{}) (n int, err error) {
	if level >= MinorLevel {
		return prefixAndPrintLines(fmt.Sprint(a...), minorPrefix)
	}

	return 0, nil
}

// Debugf provides a fmt.Printf equivalent interface to logging. Output is only
// generated if the level is >= Debug.
func Debugf(format string, a ...interface{}) (n int, err error) {
	if level >= DebugLevel {
		return prefixAndPrintLines(fmt.Sprintf(format, a...), debugPrefix)
	}

	return 0, nil
}

// Debug provides a fmt.Print like interface to logging. Output is only generated
// if the level is >= Debug.
func Debug(a ...interface{}) (n int, err error) {
	if level >= DebugLevel {
		return prefixAndPrintLines(fmt.Sprint(a...), debugPrefix)
	}

	return 0, nil
}

// prefixAndPrintLines is the common handler which takes potentially multiple
// lines and sends them to the out stream prefixed with the supplied prefix.
func prefixAndPrintLines(lines, prefix string) (int, error) {
	if !strings.Contains(lines, "\n") { // Expect this to be the common case
		return fmt.Fprint(out, prefix, lines, "\n")
	}

	ar := strings.Split(lines, "\n")

	for len(ar) > 0 && len(ar[len(ar)-1]) == 0 { // Chomp trailing empty lines
		ar = ar[:len(ar)-1]
	}

	s := strings.Join(ar, "\n"+prefix) // Line1 \nprefix Line2 \nprefix Line3

	return fmt.Fprint(out, prefix, s, "\n")
}
