// Package parser provides the syntax-tree parser service consumed by the
// AST segmentation strategy.
//
// The segmentation core treats the parser as an external collaborator: it
// sees only the Service interface and the opaque Node/Tree types (node kind,
// ordered children, line span, byte span). The production implementation is
// backed by Tree-sitter grammars; tests substitute hand-built trees.
//
// # Graceful Degradation
//
// Parse never panics on malformed input. Tree-sitter produces a best-effort
// tree with error nodes; a nil tree or hard error is reported as
// types.ErrParseUnavailable so the caller can fall back to a non-AST
// strategy.
//
// # Language Detection
//
// DetectLanguage maps file extensions to language names. Languages without a
// registered grammar (markup, config formats) are still detected so the
// balance-tracking and universal strategies can claim them.
package parser
