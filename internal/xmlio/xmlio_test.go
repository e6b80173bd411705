package xmlio

import (
	"strings"
	"testing"
)

func TestLoadRoundTrip(t *testing.T) {
	src := `<root xmlns="urn:example:root" xmlns:app="urn:example:app"><a x="1"/><app:b>hello</app:b><!-- a comment --></root>`
	root, err := Load([]byte(src), WSNone, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := root.Tag(), "{urn:example:root}root"; got != want {
		t.Errorf("root.Tag() = %q, want %q", got, want)
	}
	children := root.Children()
	if len(children) != 3 {
		t.Fatalf("len(children) = %d, want 3", len(children))
	}
	if got, want := children[0].Tag(), "{urn:example:root}a"; got != want {
		t.Errorf("children[0].Tag() = %q, want %q", got, want)
	}
	if v, ok := children[0].GetAttr("x"); !ok || v != "1" {
		t.Errorf("children[0] attr x = %q, %v, want \"1\", true", v, ok)
	}
	if got, want := children[1].Tag(), "{urn:example:app}b"; got != want {
		t.Errorf("children[1].Tag() = %q, want %q", got, want)
	}
	if got, want := children[1].Text(), "hello"; got != want {
		t.Errorf("children[1].Text() = %q, want %q", got, want)
	}
	if !children[2].IsComment() {
		t.Errorf("children[2] is not a comment")
	}
	if got, want := children[2].Text(), " a comment "; got != want {
		t.Errorf("children[2].Text() = %q, want %q", got, want)
	}

	out, err := Save(root, false)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	root2, err := Load(out, WSNone, nil)
	if err != nil {
		t.Fatalf("Load(Save(...)): %v", err)
	}
	if got, want := root2.Tag(), root.Tag(); got != want {
		t.Errorf("round trip root.Tag() = %q, want %q", got, want)
	}
	if len(root2.Children()) != 3 {
		t.Fatalf("round trip len(children) = %d, want 3", len(root2.Children()))
	}
	if got, want := root2.Children()[1].Text(), "hello"; got != want {
		t.Errorf("round trip b text = %q, want %q", got, want)
	}
}

func TestLoadNoRoot(t *testing.T) {
	if _, err := Load([]byte(""), WSNone, nil); err == nil {
		t.Errorf("Load(empty) err = nil, want error")
	}
}

func TestLoadMalformed(t *testing.T) {
	if _, err := Load([]byte("<root><unclosed></root>"), WSNone, nil); err == nil {
		t.Errorf("Load(malformed) err = nil, want error")
	}
}

func TestWSTagsStripsInterTagWhitespace(t *testing.T) {
	src := "<root>\n  <a>text</a>\n  <b>  more text  </b>\n</root>"
	root, err := Load([]byte(src), WSTags, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := root.Text(); got != "" {
		t.Errorf("root.Text() = %q, want empty (pure-whitespace prefix stripped)", got)
	}
	children := root.Children()
	if len(children) != 2 {
		t.Fatalf("len(children) = %d, want 2", len(children))
	}
	if got := children[0].Tail(); got != "" {
		t.Errorf("children[0].Tail() = %q, want empty", got)
	}
	// Whitespace mixed with real text must survive untouched.
	if got, want := children[1].Text(), "  more text  "; got != want {
		t.Errorf("children[1].Text() = %q, want %q (real text untouched)", got, want)
	}
}

func TestWSTextCollapsesConfiguredTags(t *testing.T) {
	src := "<root><para>a   b\n\tc</para><other>a   b</other></root>"
	textTags := map[string]bool{"para": true}
	root, err := Load([]byte(src), WSText, textTags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	para := root.Children()[0]
	if got, want := para.Text(), "a b c"; got != want {
		t.Errorf("para.Text() = %q, want %q", got, want)
	}
	other := root.Children()[1]
	if got, want := other.Text(), "a   b"; got != want {
		t.Errorf("other.Text() = %q, want %q (tag not configured, left alone)", got, want)
	}
}

func TestSavePretty(t *testing.T) {
	root, err := Load([]byte("<root><a/><b/></root>"), WSNone, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := Save(root, true)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.Contains(string(out), "\n") {
		t.Errorf("Save(pretty=true) produced no newlines: %s", out)
	}
}

func TestSaveDefaultNamespaceRoundTrip(t *testing.T) {
	root, err := Load([]byte(`<a xmlns="urn:x"><b/></a>`), WSNone, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := Save(root, false)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	root2, err := Load(out, WSNone, nil)
	if err != nil {
		t.Fatalf("Load(Save(...)): %v", err)
	}
	if got, want := root2.Children()[0].Tag(), "{urn:x}b"; got != want {
		t.Errorf("round trip b.Tag() = %q, want %q", got, want)
	}
}
