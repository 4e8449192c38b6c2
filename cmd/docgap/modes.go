package main

import (
	"fmt"
	"os"
	"strings"
)

// autoSwitch is the value of an auto|on|off flag.
type autoSwitch uint8

const (
	switchAuto autoSwitch = iota
	switchOn
	switchOff
)

func (s autoSwitch) String() string {
	switch s {
	case switchOn:
		return "on"
	case switchOff:
		return "off"
	}
	return "auto"
}

func parseAutoSwitch(flag, value string) (autoSwitch, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return switchAuto, nil
	case "on", "always":
		return switchOn, nil
	case "off", "never":
		return switchOff, nil
	}
	return switchAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

// resolve decides auto by checking whether f is a terminal.
func (s autoSwitch) resolve(f *os.File) bool {
	switch s {
	case switchOn:
		return true
	case switchOff:
		return false
	}
	return isTerminal(f)
}
