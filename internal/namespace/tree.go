// Package namespace implements the NamespaceTree: a tree of dotted-path
// namespaces, each with a stable id and its own SymbolTable (spec.md §3,
// §4.3).
package namespace

import (
	"strings"

	"github.com/quill-lang/quillc/internal/diagnostics"
	"github.com/quill-lang/quillc/internal/symbols"
)

// Node is one namespace in the tree. Children store only parent id and
// their own id (no back-pointer cycle) — all nodes live in the tree's flat
// arena and traversals follow ids (spec.md §9, "Namespace parenting").
type Node struct {
	Name     string
	FullPath string
	ID       symbols.NamespaceID
	ParentID symbols.NamespaceID
	HasParent bool
	Children map[string]symbols.NamespaceID
	Symbols  *symbols.SymbolTable
	Units    []*Unit
}

// Tree owns every Node in a flat, id-indexed arena plus a path index, kept
// mutually consistent (spec.md §4.3's invariant).
type Tree struct {
	nodes     []*Node
	pathToID  map[string]symbols.NamespaceID
}

// New builds an empty tree with a pre-registered root and a pre-registered
// "main" namespace (spec.md §4.3: "Root has empty name... main is
// pre-registered").
func New() *Tree {
	t := &Tree{pathToID: make(map[string]symbols.NamespaceID)}
	t.addNode("", "", -1, false)
	if _, err := t.RegisterPath("main"); err != nil {
		panic("namespace: pre-registering main: " + err.Error())
	}
	return t
}

func (t *Tree) addNode(name, fullPath string, parent symbols.NamespaceID, hasParent bool) *Node {
	id := symbols.NamespaceID(len(t.nodes))
	n := &Node{
		Name:      name,
		FullPath:  fullPath,
		ID:        id,
		ParentID:  parent,
		HasParent: hasParent,
		Children:  make(map[string]symbols.NamespaceID),
		Symbols:   symbols.New(id),
	}
	t.nodes = append(t.nodes, n)
	t.pathToID[fullPath] = id
	return n
}

// Root returns the tree's root node (empty name, full path "").
func (t *Tree) Root() *Node { return t.nodes[0] }

// Node returns the node at id. Panics only on a genuinely impossible id
// (an id this tree never issued) — an invariant violation, not user error.
func (t *Tree) Node(id symbols.NamespaceID) *Node { return t.nodes[id] }

// RegisterPath creates every namespace node along the dotted path that
// doesn't already exist, and returns the (possibly pre-existing) leaf node.
// Idempotent (spec.md §4.3).
func (t *Tree) RegisterPath(path string) (*Node, error) {
	if path == "" {
		return t.Root(), nil
	}
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			return nil, diagnostics.InvalidPath(path)
		}
	}

	current := t.Root()
	built := ""
	for _, part := range parts {
		if built == "" {
			built = part
		} else {
			built = built + "." + part
		}
		if childID, ok := current.Children[part]; ok {
			current = t.nodes[childID]
			continue
		}
		child := t.addNode(part, built, current.ID, true)
		current.Children[part] = child.ID
		current = child
	}
	return current, nil
}

// ResolvePath looks up path without creating anything.
func (t *Tree) ResolvePath(path string) (*Node, bool) {
	if path == "" {
		return t.Root(), true
	}
	id, ok := t.pathToID[path]
	if !ok {
		return nil, false
	}
	return t.nodes[id], true
}

// Len returns the number of namespace nodes in the tree, for diagnostics
// and tests.
func (t *Tree) Len() int { return len(t.nodes) }
