package diag

import (
	"strings"
	"testing"
)

const sampleStream = `{"reason":"compiler-artifact","package_id":"demo 0.1.0 (path+file:///tmp/demo)","target":{"name":"build-script-build","kind":["custom-build"]}}
   Compiling demo v0.1.0 (/tmp/demo)
{"reason":"compiler-message","package_id":"demo 0.1.0","target":{"name":"demo","kind":["lib"]},"message":{"message":"missing documentation for a struct field","code":{"code":"missing_docs","explanation":null},"level":"warning","spans":[{"file_name":"src/lib.rs","byte_start":40,"byte_end":49,"line_start":4,"line_end":4,"column_start":5,"column_end":14,"is_primary":true,"text":[{"text":"    pub x: u8,","highlight_start":5,"highlight_end":14}],"label":null}],"children":[{"message":"requested on the command line with ` + "`-W missing-docs`" + `","code":null,"level":"note","spans":[],"children":[],"rendered":null}],"rendered":"warning: missing documentation for a struct field\n"}}
{"reason":"compiler-message","package_id":"demo 0.1.0","target":{"name":"demo","kind":["lib"]},"message":{"message":"unused variable: ` + "`y`" + `","code":{"code":"unused_variables","explanation":null},"level":"warning","spans":[{"file_name":"src\\main.rs","byte_start":1,"byte_end":2,"line_start":2,"line_end":2,"column_start":9,"column_end":10,"is_primary":true,"text":[{"text":"    let y = 1;","highlight_start":9,"highlight_end":10}],"label":"help"}],"children":[],"rendered":null}}
{"reason":"build-finished","success":true}
`

func TestReadTree(t *testing.T) {
	tree, err := ReadTree(strings.NewReader(sampleStream))
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	if tree.Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", tree.Len())
	}

	m := tree.Messages[0]
	if m.CodeString() != "missing_docs" {
		t.Fatalf("code = %q", m.CodeString())
	}
	if m.Level != LevelWarning {
		t.Fatalf("level = %v", m.Level)
	}
	if m.Text != "missing documentation for a struct field" {
		t.Fatalf("text = %q", m.Text)
	}
	if len(m.Spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(m.Spans))
	}
	sp := m.Spans[0]
	if sp.File != "src/lib.rs" || sp.Row != 4 || sp.Col != 5 || !sp.Primary {
		t.Fatalf("span = %+v", sp)
	}
	if len(sp.Text) != 1 || sp.Text[0].Data != "    pub x: u8," || sp.Text[0].Start != 5 || sp.Text[0].End != 14 {
		t.Fatalf("text = %+v", sp.Text)
	}
	if len(m.Children) != 1 || m.Children[0].Code != nil || m.Children[0].Level != LevelNote {
		t.Fatalf("children = %+v", m.Children)
	}

	second := tree.Messages[1]
	if second.Spans[0].File != "src/main.rs" {
		t.Fatalf("backslashes must be normalized, got %q", second.Spans[0].File)
	}
	if second.Spans[0].Label != "help" {
		t.Fatalf("label = %q", second.Spans[0].Label)
	}
}

func TestDecoderRecords(t *testing.T) {
	dec := NewDecoder(strings.NewReader(sampleStream))
	var reasons []string
	var finished *bool
	for {
		rec, err := dec.Next()
		if err != nil {
			break
		}
		reasons = append(reasons, rec.Reason)
		if rec.Reason == ReasonBuildFinished {
			finished = rec.Success
		}
	}
	want := []string{ReasonCompilerArtifact, ReasonCompilerMessage, ReasonCompilerMessage, ReasonBuildFinished}
	if strings.Join(reasons, ",") != strings.Join(want, ",") {
		t.Fatalf("reasons = %v, want %v", reasons, want)
	}
	if finished == nil || !*finished {
		t.Fatal("build-finished success flag not decoded")
	}
	if dec.Line() != 5 {
		t.Fatalf("Line() = %d, want 5", dec.Line())
	}
}

func TestReadTreeInvalidJSON(t *testing.T) {
	_, err := ReadTree(strings.NewReader("{\"reason\":\n"))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("error should name the line: %v", err)
	}
}

func TestReadTreeNegativeLine(t *testing.T) {
	in := `{"reason":"compiler-message","message":{"message":"m","code":null,"level":"warning","spans":[{"file_name":"a.rs","line_start":-1,"column_start":1,"text":[]}],"children":[]}}`
	if _, err := ReadTree(strings.NewReader(in)); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestWalkOrder(t *testing.T) {
	tree := &Tree{}
	tree.Append(NewMessage(LevelWarning, "missing_docs", "a").
		WithSpan("lib.rs", 1, 1, Text{Data: "x"}).
		WithChild(NewMessage(LevelNote, "", "note")))
	tree.Append(NewMessage(LevelWarning, "missing_docs", "b").WithSpan("lib.rs", 2, 1))

	var got []string
	err := tree.Walk(func(n Node) error {
		switch n := n.(type) {
		case *Message:
			got = append(got, "m:"+n.Text)
		case *Span:
			got = append(got, "s:"+n.File)
		case *Text:
			got = append(got, "t:"+n.Data)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := "m:a,s:lib.rs,t:x,m:note,m:b,s:lib.rs"
	if strings.Join(got, ",") != want {
		t.Fatalf("walk order = %v, want %s", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	for _, l := range []Level{LevelHelp, LevelNote, LevelWarning, LevelError, LevelICE, LevelFailureNote} {
		if ParseLevel(l.String()) != l {
			t.Fatalf("ParseLevel(%q) != %v", l.String(), l)
		}
	}
	if ParseLevel("bogus") != LevelUnknown {
		t.Fatal("unknown level")
	}
}
