package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arbelos-lang/arbelos/internal/defs"
	"github.com/arbelos-lang/arbelos/internal/rules"
)

// DumpSymbols renders a canonical text dump of the named symbols'
// merged definitions, in the given order. Names are resolved against
// the table's context settings. The format is stable so dumps can be
// compared byte-for-byte against golden files.
func DumpSymbols(ds *defs.Definitions, names []string) []byte {
	var b strings.Builder
	for _, name := range names {
		dumpSymbol(&b, ds, ds.LookupName(name))
	}
	return []byte(b.String())
}

func dumpSymbol(b *strings.Builder, ds *defs.Definitions, name string) {
	fmt.Fprintf(b, "symbol %s\n", name)

	attrs := ds.Attributes(name)
	if attrs != 0 {
		fmt.Fprintf(b, "  attributes %s\n", attrs)
	}

	options := ds.Options(name)
	if len(options) > 0 {
		keys := make([]string, 0, len(options))
		for key := range options {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		b.WriteString("  options\n")
		for _, key := range keys {
			fmt.Fprintf(b, "    %s -> %s\n", key, options[key])
		}
	}

	dumpList(b, rules.OwnValues, ds.OwnValues(name))
	dumpList(b, rules.DownValues, ds.DownValues(name))
	dumpList(b, rules.SubValues, ds.SubValues(name))
	dumpList(b, rules.UpValues, ds.UpValues(name))
	dumpList(b, rules.NValues, ds.NValues(name))
	dumpList(b, rules.DefaultValues, ds.DefaultValues(name))
	dumpList(b, rules.Messages, ds.MessageRules(name))
}

func dumpList(b *strings.Builder, cat rules.Category, list rules.List) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s (%d)\n", cat, len(list))
	for _, r := range list {
		fmt.Fprintf(b, "    %s\n", r)
	}
}
