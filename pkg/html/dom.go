package html

import (
	"fmt"
	"strings"

	tp "github.com/xlab/treeprint"
)

// NodeID is a node's index in its document's arena. IDs are assigned in
// creation order and never reused.
type NodeID int

// NoParent is the parent of the root node.
const NoParent NodeID = -1

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

func (t NodeType) String() string {
	if t == TextNode {
		return "Text"
	}
	return "Element"
}

type Node struct {
	Type     NodeType
	TagName  string
	Text     string
	Parent   NodeID
	Children []NodeID
}

// Document owns every node of one parsed page. Nodes[Root] is a synthetic
// "document" element without a parent.
type Document struct {
	Root  NodeID
	Nodes []Node
}

func NewDocument() *Document {
	return &Document{
		Root: 0,
		Nodes: []Node{{
			Type:     ElementNode,
			TagName:  "document",
			Parent:   NoParent,
			Children: make([]NodeID, 0),
		}},
	}
}

// Node returns the node with the given id. It panics on ids not issued by
// this document.
func (d *Document) Node(id NodeID) *Node {
	return &d.Nodes[id]
}

func (d *Document) Len() int {
	return len(d.Nodes)
}

// IsElement reports whether n is an element with the given tag name.
func (n *Node) IsElement(tagName string) bool {
	return n.Type == ElementNode && n.TagName == tagName
}

// AddElement appends a new element under parent and returns its id.
func (d *Document) AddElement(parent NodeID, tagName string) NodeID {
	return d.addChild(parent, Node{Type: ElementNode, TagName: tagName})
}

// AddText appends a new text node under parent and returns its id.
func (d *Document) AddText(parent NodeID, text string) NodeID {
	return d.addChild(parent, Node{Type: TextNode, Text: text})
}

func (d *Document) addChild(parent NodeID, child Node) NodeID {
	id := NodeID(len(d.Nodes))
	child.Parent = parent
	child.Children = make([]NodeID, 0)
	d.Nodes = append(d.Nodes, child)
	d.Nodes[parent].Children = append(d.Nodes[parent].Children, id)
	return id
}

// Walk visits the subtree below the root in document order (pre-order,
// root itself excluded). depth is 0 for the root's children. Returning
// false from fn skips the node's descendants.
func (d *Document) Walk(fn func(id NodeID, depth int) bool) {
	type frame struct {
		id    NodeID
		depth int
	}
	root := d.Node(d.Root)
	stack := make([]frame, 0, len(root.Children))
	for i := len(root.Children) - 1; i >= 0; i-- {
		stack = append(stack, frame{root.Children[i], 0})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(top.id, top.depth) {
			continue
		}
		children := d.Nodes[top.id].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], top.depth + 1})
		}
	}
}

// Validate checks the structural invariants of the arena: a single root,
// exactly one parent per node with a matching children entry, no cycles and
// no children under void elements.
func (d *Document) Validate() error {
	if len(d.Nodes) == 0 {
		return fmt.Errorf("document has no nodes")
	}
	root := d.Node(d.Root)
	if root.Parent != NoParent || !root.IsElement("document") {
		return fmt.Errorf("node %d is not a document root", d.Root)
	}
	for i := range d.Nodes {
		id := NodeID(i)
		n := &d.Nodes[i]
		if n.Type == ElementNode && IsVoidElement(n.TagName) && len(n.Children) > 0 {
			return fmt.Errorf("void element <%s> (node %d) has %d children", n.TagName, id, len(n.Children))
		}
		if id == d.Root {
			continue
		}
		if n.Parent < 0 || int(n.Parent) >= len(d.Nodes) {
			return fmt.Errorf("node %d has invalid parent %d", id, n.Parent)
		}
		listed := 0
		for _, c := range d.Nodes[n.Parent].Children {
			if c == id {
				listed++
			}
		}
		if listed != 1 {
			return fmt.Errorf("node %d is listed %d times by parent %d", id, listed, n.Parent)
		}
	}
	// Every node reachable exactly once from the root means no cycles and
	// no detached subtrees.
	seen := make([]bool, len(d.Nodes))
	seen[d.Root] = true
	reached := 1
	var walkErr error
	d.Walk(func(id NodeID, _ int) bool {
		if seen[id] {
			walkErr = fmt.Errorf("node %d reached twice", id)
			return false
		}
		seen[id] = true
		reached++
		return true
	})
	if walkErr != nil {
		return walkErr
	}
	if reached != len(d.Nodes) {
		return fmt.Errorf("%d of %d nodes unreachable from root", len(d.Nodes)-reached, len(d.Nodes))
	}
	return nil
}

// Dump renders the tree for debugging output.
func (d *Document) Dump() string {
	printer := tp.New()
	d.dumpChildren(printer.AddBranch(d.label(d.Root)), d.Root)
	return printer.String()
}

func (d *Document) dumpChildren(branch tp.Tree, id NodeID) {
	for _, c := range d.Nodes[id].Children {
		if len(d.Nodes[c].Children) == 0 {
			branch.AddNode(d.label(c))
			continue
		}
		d.dumpChildren(branch.AddBranch(d.label(c)), c)
	}
}

func (d *Document) label(id NodeID) string {
	n := &d.Nodes[id]
	if n.Type == TextNode {
		return fmt.Sprintf("#%d %q", id, n.Text)
	}
	return fmt.Sprintf("#%d <%s>", id, n.TagName)
}

// Serialize returns the markup of the root's children.
func (d *Document) Serialize() string {
	var sb strings.Builder
	for _, c := range d.Node(d.Root).Children {
		d.serializeNode(&sb, c)
	}
	return sb.String()
}

func (d *Document) serializeNode(sb *strings.Builder, id NodeID) {
	n := &d.Nodes[id]
	if n.Type == TextNode {
		if d.Nodes[n.Parent].IsElement("script") {
			sb.WriteString(n.Text)
		} else {
			sb.WriteString(escapeHTML(n.Text))
		}
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.TagName)
	sb.WriteByte('>')
	if IsVoidElement(n.TagName) {
		return
	}
	for _, c := range n.Children {
		d.serializeNode(sb, c)
	}
	sb.WriteString("</")
	sb.WriteString(n.TagName)
	sb.WriteByte('>')
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// IsVoidElement reports whether tag can never have children.
func IsVoidElement(tag string) bool {
	switch tag {
	case "br", "img", "meta", "link", "hr", "input":
		return true
	}
	return false
}
