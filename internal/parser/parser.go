package parser

import (
	"context"
)

// Node is one node of an opaque syntax tree: a type name, ordered children,
// a line span, and a byte span into the source. Consumers never see the
// underlying parser implementation.
type Node interface {
	// Kind returns the grammar node type, e.g. "function_declaration".
	Kind() string
	// ChildCount returns the number of children.
	ChildCount() int
	// Child returns the i-th child, or nil if out of range.
	Child(i int) Node
	// ChildByField returns the child bound to a named grammar field
	// (e.g. "name"), or nil.
	ChildByField(field string) Node
	// StartLine and EndLine are 1-based inclusive line numbers.
	StartLine() int
	EndLine() int
	// StartByte and EndByte delimit the node's span in the source.
	StartByte() int
	EndByte() int
}

// Tree is a parsed syntax tree. Close releases parser-owned memory; using
// nodes after Close is undefined.
type Tree interface {
	Root() Node
	HasError() bool
	Close()
}

// Service is the external parser collaborator. A nil tree or an error must
// degrade gracefully in callers, never crash the pipeline.
type Service interface {
	// Parse parses content for the given language. Callers own the returned
	// tree and must Close it.
	Parse(ctx context.Context, content []byte, language string) (Tree, error)
	// SupportsAST reports whether a grammar is available for the language.
	SupportsAST(language string) bool
}
