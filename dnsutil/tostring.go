package dnsutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/miekg/dns"
)

// ClassToString converts an miekg class to a string, but if the resulting string
// is empty it's replaced with the rfc3597 generic form.
func ClassToString(c uint16) (s string) {
	s = dns.ClassToString[c]
	if len(s) == 0 {
		s = fmt.Sprintf("CLASS%d", c)
	}

	return
}

// TypeToString converts an miekg type to a string, but if the resulting string
// is empty it's replaced with the rfc3597 generic form.
func TypeToString(t uint16) (s string) {
	s = dns.TypeToString[t]
	if len(s) == 0 {
		s = fmt.Sprintf("TYPE%d", t)
	}

	return
}

// RcodeToString converts an miekg rcode to a string, but if the resulting string
// is empty it's replaced with the numeric value.
func RcodeToString(r int) (s string) {
	s = dns.RcodeToString[r]
	if len(s) == 0 {
		s = fmt.Sprintf("RCODE%d", r)
	}

	return
}

// OpcodeToString converts an miekg opcode to a string, but if the resulting
// string is empty it's replaced with the numeric value.
func OpcodeToString(o int) (s string) {
	s = dns.OpcodeToString[o]
	if len(s) == 0 {
		s = fmt.Sprintf("OPCODE%d", o)
	}

	return
}

// StringToType converts a case-insensitive type mnemonic to an miekg type.
// The rfc3597 generic form "TYPEnnn" is accepted as well. The bool return is
// false if the string matches neither form.
func StringToType(s string) (uint16, bool) {
	s = strings.ToUpper(s)
	if t, ok := dns.StringToType[s]; ok {
		return t, true
	}
	if v, ok := genericValue(s, "TYPE"); ok {
		return v, true
	}

	return 0, false
}

// StringToClass converts a case-insensitive class mnemonic to an miekg class.
// The rfc3597 generic form "CLASSnnn" is accepted as well. The bool return is
// false if the string matches neither form.
func StringToClass(s string) (uint16, bool) {
	s = strings.ToUpper(s)
	if c, ok := dns.StringToClass[s]; ok {
		return c, true
	}
	if v, ok := genericValue(s, "CLASS"); ok {
		return v, true
	}

	return 0, false
}

// genericValue parses the numeric part of an rfc3597 "TYPEnnn"/"CLASSnnn"
// mnemonic. The value must fit in a uint16.
func genericValue(s, prefix string) (uint16, bool) {
	if !strings.HasPrefix(s, prefix) || len(s) == len(prefix) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[len(prefix):], 10, 16)
	if err != nil {
		return 0, false
	}

	return uint16(v), true
}
