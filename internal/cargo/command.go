package cargo

import (
	"fmt"
	"strings"
)

// TargetKind selects which targets clippy checks.
type TargetKind uint8

const (
	TargetDefault TargetKind = iota
	TargetLib
	TargetBins
	TargetBin
	TargetExamples
	TargetExample
	TargetTests
	TargetTest
	TargetBenches
	TargetBench
	TargetAll
)

var targetFlags = [...]string{
	TargetDefault:  "",
	TargetLib:      "--lib",
	TargetBins:     "--bins",
	TargetBin:      "--bin",
	TargetExamples: "--examples",
	TargetExample:  "--example",
	TargetTests:    "--tests",
	TargetTest:     "--test",
	TargetBenches:  "--benches",
	TargetBench:    "--bench",
	TargetAll:      "--all-targets",
}

// Target is a target selection. Name is only used by the kinds taking one.
type Target struct {
	Kind TargetKind
	Name string
}

func (t TargetKind) named() bool {
	switch t {
	case TargetBin, TargetExample, TargetTest, TargetBench:
		return true
	}
	return false
}

func (t Target) args() ([]string, error) {
	if int(t.Kind) >= len(targetFlags) {
		return nil, fmt.Errorf("unknown target kind %d", t.Kind)
	}
	if t.Kind == TargetDefault {
		return nil, nil
	}
	flag := targetFlags[t.Kind]
	if t.Kind.named() {
		if t.Name == "" {
			return nil, fmt.Errorf("%s requires a name", flag)
		}
		return []string{flag, t.Name}, nil
	}
	return []string{flag}, nil
}

// Features is a feature selection. At most one of the three is used.
type Features struct {
	List      []string
	All       bool
	NoDefault bool
}

func (f Features) args() []string {
	switch {
	case f.All:
		return []string{"--all-features"}
	case f.NoDefault:
		return []string{"--no-default-features"}
	case len(f.List) > 0:
		return []string{"--features", strings.Join(f.List, ",")}
	}
	return nil
}

// BaseLints are always enabled.
var BaseLints = []string{
	"missing_docs",
	"clippy::empty_docs",
	"clippy::suspicious_doc_comments",
}

// Command describes one clippy invocation.
type Command struct {
	Manifest string // absolute path of Cargo.toml
	Nightly  bool
	Target   Target
	Features Features

	Errors bool // clippy::missing-errors-doc
	Panics bool // clippy::missing-panics-doc
	Safety bool // the three safety lints
}

// Lints returns the lints passed to rustc with -W, in order.
func (c *Command) Lints() []string {
	lints := append([]string(nil), BaseLints...)
	if c.Errors {
		lints = append(lints, "clippy::missing-errors-doc")
	}
	if c.Panics {
		lints = append(lints, "clippy::missing-panics-doc")
	}
	if c.Safety {
		lints = append(lints,
			"clippy::missing-safety-doc",
			"clippy::unnecessary_safety_doc",
			"clippy::undocumented_unsafe_blocks",
		)
	}
	return lints
}

// Args builds the argument list for the cargo binary.
func (c *Command) Args() ([]string, error) {
	if c.Manifest == "" {
		return nil, fmt.Errorf("missing manifest path")
	}
	var args []string
	if c.Nightly {
		args = append(args, "+nightly")
	}
	args = append(args, "clippy", "--message-format=json", "--manifest-path", c.Manifest)

	targets, err := c.Target.args()
	if err != nil {
		return nil, err
	}
	args = append(args, targets...)
	args = append(args, c.Features.args()...)

	args = append(args, "--")
	for _, lint := range c.Lints() {
		args = append(args, "-W", lint)
	}
	return args, nil
}
