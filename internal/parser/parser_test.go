package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"src/app.ts", "typescript"},
		{"src/App.tsx", "tsx"},
		{"script.py", "python"},
		{"index.html", "html"},
		{"notes.md", "markdown"},
		{"README", ""},
		{"archive.tar.gz", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.path), tt.path)
	}
}

func TestIsMarkup(t *testing.T) {
	assert.True(t, IsMarkup("html"))
	assert.True(t, IsMarkup("xml"))
	assert.False(t, IsMarkup("go"))
	assert.False(t, IsMarkup(""))
}

func TestTreeSitter_SupportsAST(t *testing.T) {
	ts := NewTreeSitter()
	assert.True(t, ts.SupportsAST("go"))
	assert.True(t, ts.SupportsAST("python"))
	assert.True(t, ts.SupportsAST("typescript"))
	assert.False(t, ts.SupportsAST("html"))
	assert.False(t, ts.SupportsAST("cobol"))
}

func TestTreeSitter_ParseGo(t *testing.T) {
	ts := NewTreeSitter()
	src := []byte(`package main

func greet(name string) string {
	return "hello " + name
}
`)

	tree, err := ts.Parse(context.Background(), src, "go")
	require.NoError(t, err)
	defer tree.Close()

	root := tree.Root()
	assert.Equal(t, "source_file", root.Kind())
	assert.Equal(t, 1, root.StartLine())
	assert.Greater(t, root.ChildCount(), 0)

	// Find the function declaration among the root's children.
	var fn Node
	for i := 0; i < root.ChildCount(); i++ {
		if root.Child(i).Kind() == "function_declaration" {
			fn = root.Child(i)
			break
		}
	}
	require.NotNil(t, fn)
	assert.Equal(t, 3, fn.StartLine())
	assert.Equal(t, 5, fn.EndLine())

	name := fn.ChildByField("name")
	require.NotNil(t, name)
	assert.Equal(t, "greet", string(src[name.StartByte():name.EndByte()]))
}

func TestTreeSitter_ParseMalformedDoesNotFail(t *testing.T) {
	ts := NewTreeSitter()
	src := []byte("func broken( {{{ nonsense")

	tree, err := ts.Parse(context.Background(), src, "go")
	require.NoError(t, err)
	defer tree.Close()

	// Tree-sitter returns a best-effort tree with error nodes.
	assert.True(t, tree.HasError())
	assert.NotNil(t, tree.Root())
}

func TestTreeSitter_UnsupportedLanguage(t *testing.T) {
	ts := NewTreeSitter()
	_, err := ts.Parse(context.Background(), []byte("<a></a>"), "html")
	assert.Error(t, err)
}
