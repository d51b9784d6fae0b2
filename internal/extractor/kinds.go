package extractor

import (
	"github.com/dshills/codechunk-mcp/internal/parser"
	"github.com/dshills/codechunk-mcp/pkg/types"
)

// wrapperKinds are descended through when scanning for structures. Namespace
// and module wrappers do not count as extractable ancestors.
var wrapperKinds = map[string]struct{}{
	"source_file":            {},
	"program":                {},
	"module":                 {},
	"internal_module":        {},
	"namespace_declaration":  {},
	"decorated_definition":   {},
	"ambient_declaration":    {},
	"block":                  {},
	"statement_block":        {},
	"class_body":             {},
	"declaration_list":       {},
	"field_declaration_list": {},
}

// kindTables maps grammar node kinds to chunk types, per language.
var kindTables = map[string]map[string]types.ChunkType{
	"go": {
		"function_declaration": types.ChunkFunction,
		"method_declaration":   types.ChunkMethod,
		"type_declaration":     types.ChunkTypeDecl,
		"import_declaration":   types.ChunkImport,
		"const_declaration":    types.ChunkVariable,
		"var_declaration":      types.ChunkVariable,
	},
	"python": {
		"function_definition":   types.ChunkFunction,
		"class_definition":      types.ChunkClass,
		"import_statement":      types.ChunkImport,
		"import_from_statement": types.ChunkImport,
	},
	"javascript": {
		"function_declaration":           types.ChunkFunction,
		"generator_function_declaration": types.ChunkFunction,
		"method_definition":              types.ChunkMethod,
		"class_declaration":              types.ChunkClass,
		"lexical_declaration":            types.ChunkVariable,
		"variable_declaration":           types.ChunkVariable,
		"import_statement":               types.ChunkImport,
		"export_statement":               types.ChunkExport,
	},
}

func init() {
	// TypeScript extends the JavaScript table.
	ts := make(map[string]types.ChunkType, len(kindTables["javascript"])+5)
	for k, v := range kindTables["javascript"] {
		ts[k] = v
	}
	ts["interface_declaration"] = types.ChunkInterface
	ts["enum_declaration"] = types.ChunkEnum
	ts["type_alias_declaration"] = types.ChunkTypeDecl
	ts["abstract_class_declaration"] = types.ChunkClass
	kindTables["typescript"] = ts
	kindTables["tsx"] = ts
}

// classify returns the chunk type for a node, refining Go type declarations
// into interfaces and promoting functions nested in a class to methods.
func classify(language string, node parser.Node, parentType types.ChunkType) (types.ChunkType, bool) {
	table, ok := kindTables[language]
	if !ok {
		return "", false
	}
	typ, ok := table[node.Kind()]
	if !ok {
		return "", false
	}

	if language == "go" && typ == types.ChunkTypeDecl && declaresInterface(node) {
		typ = types.ChunkInterface
	}

	if typ == types.ChunkFunction &&
		(parentType == types.ChunkClass || parentType == types.ChunkInterface) {
		typ = types.ChunkMethod
	}

	return typ, true
}

// declaresInterface reports whether a Go type_declaration contains an
// interface type spec.
func declaresInterface(node parser.Node) bool {
	for i := 0; i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "type_spec" {
			continue
		}
		if t := child.ChildByField("type"); t != nil && t.Kind() == "interface_type" {
			return true
		}
	}
	return false
}

func isWrapper(kind string) bool {
	_, ok := wrapperKinds[kind]
	return ok
}

// nodeName resolves a structure's name via the grammar's "name" field.
func nodeName(node parser.Node, content []byte) string {
	n := node.ChildByField("name")
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if start < 0 || end > len(content) || end <= start {
		return ""
	}
	return string(content[start:end])
}
