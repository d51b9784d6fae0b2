package parser

import (
	"path/filepath"
	"strings"
)

// extLanguages maps file extensions to language names.
var extLanguages = map[string]string{
	".go":   "go",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "tsx",
	".py":   "python",
	".html": "html",
	".htm":  "html",
	".xml":  "xml",
	".vue":  "vue",
	".md":   "markdown",
	".css":  "css",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".sh":   "shell",
	".java": "java",
	".c":    "c",
	".cpp":  "cpp",
	".rs":   "rust",
	".rb":   "ruby",
}

// markupLanguages segment with the tag-stack machine instead of brackets.
var markupLanguages = map[string]struct{}{
	"html": {}, "xml": {}, "vue": {}, "svelte": {}, "markdown": {},
}

// DetectLanguage returns the language for a file path, or "" when unknown.
func DetectLanguage(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	return extLanguages[ext]
}

// IsMarkup reports whether the language segments by tag balance.
func IsMarkup(language string) bool {
	_, ok := markupLanguages[language]
	return ok
}

// SupportedExtensions lists every extension with a known language mapping.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extLanguages))
	for ext := range extLanguages {
		exts = append(exts, ext)
	}
	return exts
}

// IsSupportedFile reports whether the file maps to a known language.
func IsSupportedFile(filePath string) bool {
	return DetectLanguage(filePath) != ""
}
