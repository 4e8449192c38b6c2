package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docgap/internal/itemkind"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"#abc", Color{0xaa, 0xbb, 0xcc}, false},
		{"#0f0f", Color{0x00, 0xff, 0x00}, false},
		{"#123456", Color{0x12, 0x34, 0x56}, false},
		{"#12345678", Color{0x12, 0x34, 0x56}, false},
		{"rgb(1, 2, 3)", Color{1, 2, 3}, false},
		{"rgb(255,128,0)", Color{255, 128, 0}, false},
		{"rgb(256, 0, 0)", Color{}, true},
		{"rgb(1, 2)", Color{}, true},
		{"#12", Color{}, true},
		{"#ggg", Color{}, true},
		{"red", Color{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseColor(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColorString(t *testing.T) {
	if got := (Color{0x0a, 0xbc, 0xff}).String(); got != "#0abcff" {
		t.Fatalf("String() = %s", got)
	}
}

func TestBuiltin(t *testing.T) {
	cfg := Builtin()
	if cfg.Theme.FileHeader == nil || cfg.Theme.FileHeader.Color == nil || !cfg.Theme.FileHeader.Bold {
		t.Fatalf("file_header = %+v", cfg.Theme.FileHeader)
	}
	for _, k := range itemkind.All() {
		if _, ok := cfg.Theme.Kind(k); !ok {
			t.Fatalf("default theme has no style for %s", k.Key())
		}
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	tests := []string{
		"[theme]\nfile_headr = { bold = true }\n",
		"[theme.kinds]\nmodule = { bold = true }\n",
		"[theme]\nmessage = { color = \"nope\" }\n",
		"[theme\n",
	}
	for _, data := range tests {
		if _, err := Parse(data, "test.toml"); err == nil {
			t.Fatalf("Parse(%q) must fail", data)
		} else if !strings.Contains(err.Error(), "test.toml") {
			t.Fatalf("error must name the file: %v", err)
		}
	}
}

func TestParseKindAlias(t *testing.T) {
	cfg, err := Parse("[theme.kinds]\nthe_crate = { italic = true }\n", "alias.toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s, ok := cfg.Theme.Kind(itemkind.Crate)
	if !ok || !s.Italic {
		t.Fatalf("crate style = %+v, %v", s, ok)
	}
	if cfg.Theme.Message != nil {
		t.Fatal("missing entries must stay nil")
	}
}

func TestInitialCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv(EnvPath, path)

	var out bytes.Buffer
	got, created, err := Initial(false, &out)
	if err != nil {
		t.Fatalf("Initial: %v", err)
	}
	if got != path || !created {
		t.Fatalf("Initial = %s, %v", got, created)
	}
	if !strings.Contains(out.String(), "creating the default configuration") {
		t.Fatalf("warning = %q", out.String())
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != Default {
		t.Fatalf("default file not written: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	out.Reset()
	_, created, err = Initial(false, &out)
	if err != nil || created || out.Len() != 0 {
		t.Fatalf("second call must be silent: created=%v err=%v out=%q", created, err, out.String())
	}
}

func TestInitialIgnore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv(EnvPath, path)
	_, created, err := Initial(true, &bytes.Buffer{})
	if err != nil || created {
		t.Fatalf("created=%v err=%v", created, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("ignored config must not be written")
	}
}
