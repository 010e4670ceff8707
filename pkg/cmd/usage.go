package cmd

import (
	"strconv"
	"strings"
)

// RenderUsage expands a usage template:
//
//	$f[i]  the i-th flag
//	$f     every flag, each followed by ", "
//	$c     the command's canonical name
//
// The template is scanned once, left to right. At any position the indexed
// form is tried before the bare $f, and substituted text is not scanned again,
// so a flag containing "$c" stays literal. Anything else, including ranges
// such as "$f[0 -1]", is left as is apart from a bare $f prefix.
func RenderUsage(template, name string, flags []string) string {
	var all strings.Builder
	for _, f := range flags {
		all.WriteString(f)
		all.WriteString(", ")
	}

	pairs := make([]string, 0, 2*len(flags)+4)
	for i, f := range flags {
		pairs = append(pairs, "$f["+strconv.Itoa(i)+"]", f)
	}
	pairs = append(pairs, "$f", all.String(), "$c", name)

	return strings.NewReplacer(pairs...).Replace(template)
}
