package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"docgap/internal/config"
	"docgap/internal/diag"
	"docgap/internal/report"
)

func sampleIndex(t *testing.T) *report.Index {
	t.Helper()
	tree := &diag.Tree{}
	tree.Append(diag.NewMessage(diag.LevelWarning, "missing_docs", "missing documentation for a struct field").
		WithSpan("src/lib.rs", 4, 5, diag.Text{Data: "    pub x: u8,\n", Start: 5, End: 14}))
	tree.Append(diag.NewMessage(diag.LevelWarning, "missing_docs", "missing documentation for the crate").
		WithSpan("src/lib.rs", 1, 1, diag.Text{Data: "//! crate\n", Start: 1, End: 10}))
	tree.Append(diag.NewMessage(diag.LevelWarning, "missing_docs", "missing documentation for a function").
		WithSpan("src/main.rs", 12, 1, diag.Text{Data: "pub fn run() {}", Start: 1, End: 16}))

	idx, err := report.Walk(tree, report.Options{})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	return idx
}

// assertGolden сравнивает вывод с ожидаемым и печатает unified diff.
func assertGolden(t *testing.T, got, want string) {
	t.Helper()
	if got == want {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	t.Fatalf("output mismatch:\n%s", diff)
}

func TestPrettyPlain(t *testing.T) {
	tests := []struct {
		name string
		opts PrettyOpts
		want string
	}{
		{
			name: "default",
			opts: PrettyOpts{},
			want: "in src/lib.rs\n" +
				"  src/lib.rs:4:5    missing documentation for a struct field\n" +
				"  src/lib.rs:1:1    missing documentation for the crate\n" +
				"\n" +
				"in src/main.rs\n" +
				"  src/main.rs:12:1  missing documentation for a function\n",
		},
		{
			name: "show item",
			opts: PrettyOpts{ShowItem: true},
			want: "in src/lib.rs\n" +
				"  src/lib.rs:4:5    missing documentation for a struct field\n" +
				"    pub x: u8,\n" +
				"  src/lib.rs:1:1    missing documentation for the crate\n" +
				"\n" +
				"in src/main.rs\n" +
				"  src/main.rs:12:1  missing documentation for a function\n" +
				"    pub fn run() {}\n",
		},
		{
			name: "compact",
			opts: PrettyOpts{Compact: true},
			want: "in src/lib.rs\n" +
				"  src/lib.rs:4:5    struct field\n" +
				"  src/lib.rs:1:1    missing documentation for the crate\n" +
				"\n" +
				"in src/main.rs\n" +
				"  src/main.rs:12:1  function\n",
		},
		{
			name: "basename",
			opts: PrettyOpts{PathMode: PathModeBasename},
			want: "in lib.rs\n" +
				"  lib.rs:4:5    missing documentation for a struct field\n" +
				"  lib.rs:1:1    missing documentation for the crate\n" +
				"\n" +
				"in main.rs\n" +
				"  main.rs:12:1  missing documentation for a function\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			theme := NewTheme(&buf, &config.Builtin().Theme, ColorOff)
			if err := Pretty(&buf, sampleIndex(t), theme, tt.opts); err != nil {
				t.Fatalf("Pretty: %v", err)
			}
			assertGolden(t, buf.String(), tt.want)
		})
	}
}

func TestPrettyColor(t *testing.T) {
	var buf bytes.Buffer
	theme := NewTheme(&buf, &config.Builtin().Theme, ColorOn)
	if err := Pretty(&buf, sampleIndex(t), theme, PrettyOpts{ShowItem: true}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Fatalf("expected escape sequences, got %q", out)
	}
	for _, want := range []string{"struct field", "pub x: u8", "src/main.rs"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output misses %q", want)
		}
	}
}

func TestPrettyEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, report.NewIndex(), nil, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("empty index must print nothing, got %q", buf.String())
	}
}

func TestShort(t *testing.T) {
	var buf bytes.Buffer
	if err := Short(&buf, sampleIndex(t), ShortOpts{}); err != nil {
		t.Fatalf("Short: %v", err)
	}
	assertGolden(t, buf.String(),
		"src/lib.rs:4:5: missing documentation for a struct field\n"+
			"src/lib.rs:1:1: missing documentation for the crate\n"+
			"src/main.rs:12:1: missing documentation for a function\n")
}

func TestShortAbsolute(t *testing.T) {
	var buf bytes.Buffer
	if err := Short(&buf, sampleIndex(t), ShortOpts{Compact: true, PathMode: PathModeAbsolute, Root: "/work/demo"}); err != nil {
		t.Fatalf("Short: %v", err)
	}
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if first != "/work/demo/src/lib.rs:4:5: struct field" {
		t.Fatalf("first line = %q", first)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleIndex(t), JSONOpts{IncludeHighlights: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out ReportOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 3 || len(out.Files) != 2 {
		t.Fatalf("count=%d files=%d", out.Count, len(out.Files))
	}
	e := out.Files[0].Entries[0]
	if e.Kind != "struct_field" || e.Item != "struct field" || e.Row != 4 || e.Col != 5 {
		t.Fatalf("entry = %+v", e)
	}
	if len(e.Source) != 1 || e.Source[0].Highlight != "pub x: u8" || e.Source[0].Suffix != "," {
		t.Fatalf("source = %+v", e.Source)
	}
	if k := out.Files[0].Entries[1].Kind; k != "crate" {
		t.Fatalf("crate kind = %q", k)
	}
}

func TestJSONMax(t *testing.T) {
	out := BuildReportOutput(sampleIndex(t), JSONOpts{Max: 2})
	if out.Count != 2 || len(out.Files) != 1 {
		t.Fatalf("count=%d files=%d", out.Count, len(out.Files))
	}
	if out.Files[0].Entries[0].Source != nil {
		t.Fatal("highlights must be omitted by default")
	}
}

func TestSarif(t *testing.T) {
	var buf bytes.Buffer
	meta := SarifRunMeta{ToolName: "docgap", ToolVersion: "1.2.3"}
	if err := Sarif(&buf, sampleIndex(t), JSONOpts{IncludeHighlights: true}, meta); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v\n%s", err, buf.String())
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "docgap" || run.Tool.Driver.Version != "1.2.3" {
		t.Fatalf("driver = %+v", run.Tool.Driver)
	}
	var rules []string
	for _, r := range run.Tool.Driver.Rules {
		rules = append(rules, r.ID)
	}
	if strings.Join(rules, ",") != "struct_field,crate,function" {
		t.Fatalf("rules = %v", rules)
	}
	if len(run.Results) != 3 {
		t.Fatalf("results = %d", len(run.Results))
	}
	first := run.Results[0]
	loc := first.Locations[0].PhysicalLocation
	if first.RuleID != "struct_field" || loc.ArtifactLocation.URI != "src/lib.rs" || loc.Region.StartLine != 4 || loc.Region.StartColumn != 5 {
		t.Fatalf("first result = %+v", first)
	}
	if loc.Region.Snippet == nil || !strings.Contains(loc.Region.Snippet.Text, "pub x: u8") {
		t.Fatalf("snippet = %+v", loc.Region.Snippet)
	}
}

func TestSarifEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Sarif(&buf, report.NewIndex(), JSONOpts{}, SarifRunMeta{ToolName: "docgap"}); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	if !strings.Contains(buf.String(), `"results": []`) {
		t.Fatalf("empty run must still list results:\n%s", buf.String())
	}
}
