// Package itemkind holds the closed set of documentable item kinds reported by
// the documentation lints, together with the suffix phrase each kind shows up
// as in a lint message and the key used for it in configuration files.
package itemkind

import (
	"fmt"
	"strings"
)

// Kind is the syntactic category of a documentable item.
type Kind uint8

const (
	AssociatedConstant Kind = iota
	AssociatedFunction
	AssociatedType
	Constant
	Crate
	Enum
	Function
	Macro
	Method
	Struct
	StructField
	Trait
	TypeAlias
	Variant
	Static
)

type entry struct {
	kind   Kind
	suffix string
	key    string
}

// table is checked top to bottom, first match wins. The associated_* rows
// must stay ahead of constant/function: "associated constant" also ends
// with "constant".
var table = [...]entry{
	{AssociatedConstant, "associated constant", "associated_constant"},
	{AssociatedFunction, "associated function", "associated_function"},
	{AssociatedType, "associated type", "associated_type"},
	{Constant, "constant", "constant"},
	{Crate, "the crate", "crate"},
	{Enum, "enum", "enum"},
	{Function, "function", "function"},
	{Macro, "macro", "macro"},
	{Method, "method", "method"},
	{Struct, "struct", "struct"},
	{StructField, "struct field", "struct_field"},
	{Trait, "trait", "trait"},
	{TypeAlias, "type alias", "type_alias"},
	{Variant, "variant", "variant"},
	{Static, "static", "static"},
}

// Suffix returns the phrase a lint message ends with for this kind.
func (k Kind) Suffix() string {
	if int(k) >= len(table) {
		return ""
	}
	return table[k].suffix
}

// Key returns the stable snake_case identifier used in config files and flags.
func (k Kind) Key() string {
	if int(k) >= len(table) {
		return ""
	}
	return table[k].key
}

func (k Kind) String() string {
	if int(k) >= len(table) {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return table[k].key
}

// All returns every kind in priority order.
func All() []Kind {
	out := make([]Kind, 0, len(table))
	for _, e := range table {
		out = append(out, e.kind)
	}
	return out
}

// Keys returns the config keys of every kind in priority order.
func Keys() []string {
	out := make([]string, 0, len(table))
	for _, e := range table {
		out = append(out, e.key)
	}
	return out
}

// ParseKey resolves a config key such as "struct_field" to its Kind.
func ParseKey(key string) (Kind, error) {
	key = strings.TrimSpace(key)
	for _, e := range table {
		if e.key == key {
			return e.kind, nil
		}
	}
	return 0, fmt.Errorf("unknown item kind %q (expected one of: %s)", key, strings.Join(Keys(), ", "))
}

// LookupSuffix reports the first kind, in priority order, whose suffix phrase
// text ends with, and the byte offset at which that suffix starts.
func LookupSuffix(text string) (Kind, int, bool) {
	for _, e := range table {
		if strings.HasSuffix(text, e.suffix) {
			return e.kind, len(text) - len(e.suffix), true
		}
	}
	return 0, 0, false
}

// HasSuffix reports whether text ends with the suffix phrase of k.
func HasSuffix(text string, k Kind) bool {
	s := k.Suffix()
	return s != "" && strings.HasSuffix(text, s)
}
