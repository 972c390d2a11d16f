package netcfg

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"unicode/utf8"
)

// placeholder is printed in place of unset optional fields.
const placeholder = "n/a"

type field struct {
	label string
	value string
}

func (s Snapshot) fields() []field {
	return []field{
		{"Interface", s.Alias},
		{"Index", strconv.Itoa(s.Index)},
		{"Mode", s.Mode.String()},
		{"IP Address", addrOrPlaceholder(s.IP)},
		{"Prefix Length", prefixOrPlaceholder(s.PrefixLength)},
		{"Gateway", addrOrPlaceholder(s.Gateway)},
		{"Preferred DNS", addrOrPlaceholder(s.DNSPrimary)},
		{"Alternate DNS", addrOrPlaceholder(s.DNSSecondary)},
		{"DNS Suffix", stringOrPlaceholder(s.DNSSuffix)},
	}
}

// measure records the widest rendered value for column alignment.
func (s *Snapshot) measure() {
	width := 0
	for _, f := range s.fields() {
		if n := utf8.RuneCountInString(f.value); n > width {
			width = n
		}
	}

	s.valueWidth = width
}

// Render produces a two-column table of the snapshot. Pure formatting,
// no decision logic.
func Render(s Snapshot) string {
	fields := s.fields()

	labelWidth := 0
	for _, f := range fields {
		if n := utf8.RuneCountInString(f.label); n > labelWidth {
			labelWidth = n
		}
	}

	valueWidth := s.valueWidth
	for _, f := range fields {
		if n := utf8.RuneCountInString(f.value); n > valueWidth {
			valueWidth = n
		}
	}

	var b strings.Builder
	border := fmt.Sprintf("+-%s-+-%s-+\n",
		strings.Repeat("-", labelWidth), strings.Repeat("-", valueWidth))

	b.WriteString(border)
	for _, f := range fields {
		fmt.Fprintf(&b, "| %-*s | %-*s |\n", labelWidth, f.label, valueWidth, f.value)
	}
	b.WriteString(border)

	return b.String()
}

func addrOrPlaceholder(addr netip.Addr) string {
	if !addr.IsValid() {
		return placeholder
	}

	return addr.String()
}

func prefixOrPlaceholder(bits int) string {
	if bits < 0 {
		return placeholder
	}

	return strconv.Itoa(bits)
}

func stringOrPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}

	return s
}
