package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	tstype "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/dshills/codechunk-mcp/pkg/types"
)

// TreeSitter implements Service backed by Tree-sitter grammars.
type TreeSitter struct {
	languages map[string]*sitter.Language
}

// NewTreeSitter creates a parser service with all bundled grammars.
func NewTreeSitter() *TreeSitter {
	return &TreeSitter{
		languages: map[string]*sitter.Language{
			"go":         golang.GetLanguage(),
			"javascript": javascript.GetLanguage(),
			"typescript": tstype.GetLanguage(),
			"tsx":        tsx.GetLanguage(),
			"python":     python.GetLanguage(),
		},
	}
}

// SupportsAST reports whether a grammar is registered for language.
func (t *TreeSitter) SupportsAST(language string) bool {
	_, ok := t.languages[language]
	return ok
}

// Parse parses content into a syntax tree. A fresh parser is created per
// call so concurrent file pipelines never share parser state.
func (t *TreeSitter) Parse(ctx context.Context, content []byte, language string) (Tree, error) {
	lang, ok := t.languages[language]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedLanguage, language)
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(lang)

	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrParseUnavailable, err)
	}
	if tree == nil {
		return nil, types.ErrParseUnavailable
	}

	return &sitterTree{tree: tree}, nil
}

// sitterTree adapts *sitter.Tree to the Tree interface.
type sitterTree struct {
	tree *sitter.Tree
}

func (t *sitterTree) Root() Node {
	return sitterNode{node: t.tree.RootNode()}
}

func (t *sitterTree) HasError() bool {
	return t.tree.RootNode().HasError()
}

func (t *sitterTree) Close() {
	t.tree.Close()
}

// sitterNode adapts *sitter.Node to the Node interface.
type sitterNode struct {
	node *sitter.Node
}

func (n sitterNode) Kind() string {
	return n.node.Type()
}

func (n sitterNode) ChildCount() int {
	return int(n.node.ChildCount())
}

func (n sitterNode) Child(i int) Node {
	child := n.node.Child(i)
	if child == nil {
		return nil
	}
	return sitterNode{node: child}
}

func (n sitterNode) ChildByField(field string) Node {
	child := n.node.ChildByFieldName(field)
	if child == nil {
		return nil
	}
	return sitterNode{node: child}
}

func (n sitterNode) StartLine() int {
	return int(n.node.StartPoint().Row) + 1
}

func (n sitterNode) EndLine() int {
	return int(n.node.EndPoint().Row) + 1
}

func (n sitterNode) StartByte() int {
	return int(n.node.StartByte())
}

func (n sitterNode) EndByte() int {
	return int(n.node.EndByte())
}
