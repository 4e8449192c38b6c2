package classify

import (
	"strings"

	"docgap/internal/itemkind"
)

// Classification is a lint message split into the verb phrase and the
// item-kind phrase it ends with. When Matched is false the whole message is
// in Head and Tail is empty.
type Classification struct {
	Head    string
	Tail    string
	Kind    itemkind.Kind
	Matched bool
}

// Classify splits message at the item-kind suffix it ends with, if any.
func Classify(message string) Classification {
	kind, offset, ok := itemkind.LookupSuffix(message)
	if !ok {
		return Classification{Head: message}
	}
	return Classification{
		Head:    message[:offset],
		Tail:    message[offset:],
		Kind:    kind,
		Matched: true,
	}
}

// compactPrefixes are stripped in order by Shorten; each one is tried once.
var compactPrefixes = [...]string{
	"missing documentation for a ",
	"missing documentation for an ",
	"docs for function returning `Result` ",
	"docs for function which may panic ",
	"safe function's docs have ",
	"unsafe function's docs are ",
}

// Shorten drops the boilerplate lead-in of the documentation lints.
func Shorten(message string) string {
	for _, p := range compactPrefixes {
		message = strings.TrimPrefix(message, p)
	}
	return message
}
