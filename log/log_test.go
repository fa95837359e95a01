package log_test

import (
	"strings"
	"testing"

	"github.com/lgdns/lgdig/log"
	"github.com/lgdns/lgdig/mock"
)

func TestLevels(t *testing.T) {
	var w mock.IOWriter
	log.SetOut(&w)
	if log.Out() != &w {
		t.Fatal("SetOut or Out failed")
	}

	log.SetLevel(log.SilentLevel)
	if log.Level() != log.SilentLevel {
		t.Error("Set Silent failed")
	}
	if log.IfMajor() || log.IfMinor() || log.IfDebug() {
		t.Error("Silent should imply no other levels")
	}
	if log.MajorLevel.String() != "Major" ||
		log.MinorLevel.String() != "Minor" ||
		log.DebugLevel.String() != "Debug" ||
		log.SilentLevel.String() != "Silent" {
		t.Error("Level String() values are wrong")
	}

	log.Major("Should not log")
	log.Minor("Should not log")
	log.Debug("Should not log")
	log.Majorf("Should not log")
	log.Minorf("Should not log")
	log.Debugf("Should not log")
	if w.Len() > 0 {
		t.Error("Silent still logged", w.String())
	}

	w.Reset()
	log.SetLevel(log.MajorLevel)
	log.Major("a")
	log.Minor("b")
	log.Debug("c")
	log.Majorf("d")
	log.Minorf("e")
	log.Debugf("f")
	got := w.String()
	if !strings.Contains(got, "a") || !strings.Contains(got, "d") {
		t.Error("Major level dropped major output", got)
	}
	if strings.Contains(got, "b") || strings.Contains(got, "c") ||
		strings.Contains(got, "e") || strings.Contains(got, "f") {
		t.Error("Major level logged sub-major output", got)
	}

	w.Reset()
	log.SetLevel(log.DebugLevel)
	if !log.IfMajor() || !log.IfMinor() || !log.IfDebug() {
		t.Error("Debug should imply all levels")
	}
	log.Major("a")
	log.Minor("b")
	log.Debug("c")
	got = w.String()
	for _, want := range []string{"a", "b", "c"} {
		if !strings.Contains(got, want) {
			t.Error("Debug level dropped", want, "from", got)
		}
	}
}

func TestMultiLine(t *testing.T) {
	var w mock.IOWriter
	log.SetOut(&w)
	log.SetLevel(log.DebugLevel)
	log.Debugf("one\ntwo\nthree\n\n")
	got := w.String()
	if strings.Count(got, log.DebugPrefix) != 3 {
		t.Error("Expected three prefixed lines, got", got)
	}
	if !strings.HasSuffix(got, "three\n") {
		t.Error("Trailing empty lines not chomped", got)
	}
}
