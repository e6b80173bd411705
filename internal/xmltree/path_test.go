package xmltree

import (
	"testing"

	"github.com/rgehrsitz/xmldiff/internal/errors"
)

func buildPathTree() (root *Node, para3 *Node) {
	root = NewElement("", "document")
	story := NewElement("", "story")
	root.AppendChild(story)

	section := NewElement("", "section")
	story.AppendChild(section)

	for i := 0; i < 3; i++ {
		p := NewElement("", "para")
		section.AppendChild(p)
		if i == 2 {
			para3 = p
		}
	}
	return
}

func TestPathOfIndexesEveryStepIncludingRoot(t *testing.T) {
	root, para3 := buildPathTree()

	if got, want := PathOf(root), "/document[1]"; got != want {
		t.Errorf("PathOf(root) = %q, want %q", got, want)
	}
	if got, want := PathOf(para3), "/document[1]/story[1]/section[1]/para[3]"; got != want {
		t.Errorf("PathOf(para3) = %q, want %q", got, want)
	}
}

func TestPathOfUsesPerTagIndex(t *testing.T) {
	root := NewElement("", "root")
	a := NewElement("", "a")
	b := NewElement("", "b")
	a2 := NewElement("", "a")
	root.AppendChild(a)
	root.AppendChild(b)
	root.AppendChild(a2)

	if got, want := PathOf(b), "/root[1]/b[1]"; got != want {
		t.Errorf("PathOf(b) = %q, want %q", got, want)
	}
	if got, want := PathOf(a2), "/root[1]/a[2]"; got != want {
		t.Errorf("PathOf(a2) = %q, want %q", got, want)
	}
}

func TestResolveRoundTrip(t *testing.T) {
	root, para3 := buildPathTree()
	path := PathOf(para3)

	got, err := Resolve(root, path)
	if err != nil {
		t.Fatalf("Resolve(%q) error: %v", path, err)
	}
	if got != para3 {
		t.Errorf("Resolve(%q) returned a different node", path)
	}
}

func TestResolveNotFound(t *testing.T) {
	root, _ := buildPathTree()
	_, err := Resolve(root, "/document[1]/story[1]/section[1]/para[99]")
	if !errors.IsErrorCode(err, errors.ErrXPathNotFound) {
		t.Errorf("expected ErrXPathNotFound, got %v", err)
	}
}

func TestResolveWrongRoot(t *testing.T) {
	root, _ := buildPathTree()
	_, err := Resolve(root, "/other[1]")
	if !errors.IsErrorCode(err, errors.ErrXPathNotFound) {
		t.Errorf("expected ErrXPathNotFound, got %v", err)
	}
}
