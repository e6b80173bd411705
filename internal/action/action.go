// Package action defines the closed set of edit operations produced by
// internal/differ, consumed by internal/patcher and internal/formatter,
// and round-tripped through the compact diff-script grammar. Actions are
// plain values: they carry xpath strings and scalars, never node
// pointers, so they outlive the tree they were computed against.
package action

// Action is implemented by exactly the thirteen action types below. The
// unexported marker method seals the interface against external
// implementations, the idiomatic Go analogue of the reference
// implementation's closed namedtuple vocabulary.
type Action interface {
	isAction()
}

// DeleteNode removes the node at Node and its subtree.
type DeleteNode struct {
	Node string
}

// InsertNode creates a new empty element as a child of Parent at Position.
type InsertNode struct {
	Parent   string
	Tag      string
	Position int
}

// RenameNode changes the tag of the element at Node.
type RenameNode struct {
	Node   string
	NewTag string
}

// MoveNode detaches the node at Node and reinserts it as a child of
// NewParent at Position.
type MoveNode struct {
	Node      string
	NewParent string
	Position  int
}

// UpdateTextIn replaces the text of the element at Node. OldText is
// carried for round-trip diagnostics and for the formatter's inline
// text-diff rendering.
type UpdateTextIn struct {
	Node    string
	NewText string
	OldText string
}

// UpdateTextAfter replaces the tail of the element at Node.
type UpdateTextAfter struct {
	Node    string
	NewText string
	OldText string
}

// InsertAttrib adds an attribute that must not already exist on Node.
type InsertAttrib struct {
	Node  string
	Name  string
	Value string
}

// DeleteAttrib removes an attribute that must exist on Node.
type DeleteAttrib struct {
	Node string
	Name string
}

// UpdateAttrib changes the value of an attribute that must already exist
// on Node.
type UpdateAttrib struct {
	Node  string
	Name  string
	Value string
}

// RenameAttrib renames OldName to NewName on Node, preserving the value.
// NewName must not already exist.
type RenameAttrib struct {
	Node    string
	OldName string
	NewName string
}

// InsertComment creates a comment node as a child of Parent at Position.
type InsertComment struct {
	Parent   string
	Position int
	Text     string
}

// InsertNamespace declares prefix -> URI at the document root.
type InsertNamespace struct {
	Prefix string
	URI    string
}

// DeleteNamespace undeclares Prefix at the document root.
type DeleteNamespace struct {
	Prefix string
}

func (DeleteNode) isAction()      {}
func (InsertNode) isAction()      {}
func (RenameNode) isAction()      {}
func (MoveNode) isAction()        {}
func (UpdateTextIn) isAction()    {}
func (UpdateTextAfter) isAction() {}
func (InsertAttrib) isAction()    {}
func (DeleteAttrib) isAction()    {}
func (UpdateAttrib) isAction()    {}
func (RenameAttrib) isAction()    {}
func (InsertComment) isAction()   {}
func (InsertNamespace) isAction() {}
func (DeleteNamespace) isAction() {}
