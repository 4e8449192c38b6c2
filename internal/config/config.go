// Package config loads the report theme from a TOML file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"

	"docgap/internal/itemkind"
)

// Default is the configuration written on first run.
//
//go:embed default.config.toml
var Default string

const (
	// EnvPath overrides the configuration location.
	EnvPath  = "DOCGAP_CONFIG"
	appDir   = "docgap"
	fileName = "config.toml"
)

// Style is one themed element. A nil Color keeps the terminal default.
type Style struct {
	Color     *Color `toml:"color"`
	Bold      bool   `toml:"bold"`
	Italic    bool   `toml:"italic"`
	Underline bool   `toml:"underline"`
	Dimmed    bool   `toml:"dimmed"`
}

// Theme holds the styles of the pretty renderer. Missing entries render
// unstyled.
type Theme struct {
	FileHeader    *Style           `toml:"file_header"`
	FileName      *Style           `toml:"file_name"`
	Location      *Style           `toml:"location"`
	Message       *Style           `toml:"message"`
	HighlightCode *Style           `toml:"highlight_code"`
	Code          *Style           `toml:"code"`
	Kinds         map[string]Style `toml:"kinds"`

	kinds map[itemkind.Kind]Style
}

// Config is the whole configuration file.
type Config struct {
	Theme Theme `toml:"theme"`
}

// kindAliases maps keys accepted for compatibility to item kind keys.
var kindAliases = map[string]string{
	"the_crate": "crate",
}

// Kind returns the style configured for k.
func (t *Theme) Kind(k itemkind.Kind) (Style, bool) {
	if t == nil {
		return Style{}, false
	}
	s, ok := t.kinds[k]
	return s, ok
}

// Parse decodes a configuration. name is used in error messages.
func Parse(data, name string) (*Config, error) {
	var cfg Config
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", name, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", name, strings.Join(keys, ", "))
	}
	if err := cfg.Theme.resolveKinds(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &cfg, nil
}

func (t *Theme) resolveKinds() error {
	t.kinds = make(map[itemkind.Kind]Style, len(t.Kinds))
	keys := make([]string, 0, len(t.Kinds))
	for key := range t.Kinds {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		name := key
		if alias, ok := kindAliases[key]; ok {
			name = alias
		}
		k, err := itemkind.ParseKey(name)
		if err != nil {
			return fmt.Errorf("[theme.kinds]: %w", err)
		}
		t.kinds[k] = t.Kinds[key]
	}
	return nil
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read configuration file at %s: %w", path, err)
	}
	return Parse(string(data), path)
}

// Builtin returns the embedded default configuration.
func Builtin() *Config {
	cfg, err := Parse(Default, "default.config.toml")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Path returns the configuration location.
func Path() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot find the user configuration directory: %w", err)
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// Initial returns the configuration path and creates the default file when
// it is missing, unless ignore is set. created reports that the file was just
// written; the caller is expected to stop so the user can review it. The
// warning goes to w.
func Initial(ignore bool, w io.Writer) (path string, created bool, err error) {
	path, err = Path()
	if err != nil {
		return "", false, err
	}
	if ignore {
		return path, false, nil
	}
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(w, "%s: creating the default configuration at:\n\t%s\n", yellow("WARNING"), path)
	fmt.Fprintf(w, "%s: you may want to review this file\n", cyan("NOTE"))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(Default), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, true, nil
}
