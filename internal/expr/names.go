package expr

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ContextMark separates context components in a symbol name, as in
// "System`Plus" or "A`B`x".
const ContextMark = "`"

// Normalize returns the NFC form of a symbol name. All names entering
// the definition tables go through this so that visually identical
// names resolve to the same entity regardless of source encoding.
func Normalize(name string) string {
	return norm.NFC.String(name)
}

// IsQualified reports whether name is a fully qualified symbol name:
// it contains at least one context mark, does not begin or end with
// one, and has no empty context component.
func IsQualified(name string) bool {
	if name == "" {
		return false
	}
	if !strings.Contains(name, ContextMark) {
		return false
	}
	if strings.HasPrefix(name, ContextMark) || strings.HasSuffix(name, ContextMark) {
		return false
	}
	return !strings.Contains(name, ContextMark+ContextMark)
}

// IsContext reports whether name denotes a bare context, e.g. "Global`"
// or "A`B`": non-empty, ends with a context mark, no empty components.
func IsContext(name string) bool {
	if name == "" || !strings.HasSuffix(name, ContextMark) {
		return false
	}
	if strings.HasPrefix(name, ContextMark) {
		return false
	}
	return !strings.Contains(name, ContextMark+ContextMark)
}

// StripContext returns the short name of a possibly qualified symbol
// name: everything after the last context mark.
func StripContext(name string) string {
	if i := strings.LastIndex(name, ContextMark); i >= 0 {
		return name[i+1:]
	}
	return name
}

// ContextOf returns the context prefix of a qualified name, including
// the trailing mark, or "" for an unqualified name.
func ContextOf(name string) string {
	if i := strings.LastIndex(name, ContextMark); i >= 0 {
		return name[:i+1]
	}
	return ""
}
