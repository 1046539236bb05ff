package pack

import (
	"strconv"
	"strings"
)

// RefPrefix marks reference tokens on the wire. A text value that itself
// starts with this prefix is boxed through the reference table so it cannot
// be misread as a token (prd001-pack-core R4.2).
const RefPrefix = "<>"

// objectToken renders an object reference token for a session-scoped id.
func objectToken(id int) string {
	return RefPrefix + strconv.Itoa(id)
}

// typeToken renders a type reference token for a registered or built-in
// type name.
func typeToken(name string) string {
	return RefPrefix + ":" + name
}

// isToken reports whether s carries the reference prefix.
func isToken(s string) bool {
	return strings.HasPrefix(s, RefPrefix)
}

// isTypeToken reports whether s is a type reference ("<>:name"). The caller
// must have established isToken(s).
func isTypeToken(s string) bool {
	return strings.HasPrefix(s[len(RefPrefix):], ":")
}

// typeTokenName extracts the type name from a type reference token.
func typeTokenName(s string) string {
	return s[len(RefPrefix)+1:]
}
