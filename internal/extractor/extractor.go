package extractor

import (
	"sort"
	"strings"

	"github.com/dshills/codechunk-mcp/internal/parser"
	"github.com/dshills/codechunk-mcp/internal/score"
	"github.com/dshills/codechunk-mcp/pkg/types"
)

const (
	// Complexity bounds for candidate validation. Candidates outside the
	// window are dropped silently, not reported.
	minStructureComplexity = 2
	maxStructureComplexity = 500

	// ReasonNoStructures tags the whole-file generic chunk emitted when no
	// structure survives validation.
	ReasonNoStructures = "no_structures_found"
)

// Extractor performs depth-bounded hierarchical extraction of structures
// from an opaque syntax tree.
type Extractor struct {
	cfg types.SegmentationConfig
}

// New creates an extractor with the given segmentation config.
func New(cfg types.SegmentationConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// workItem pairs a structure node with its 1-based nesting level. The
// traversal uses an explicit work list instead of native recursion, which
// bounds memory and makes the depth cap a simple comparison.
type workItem struct {
	node       parser.Node
	level      int
	parentType types.ChunkType
}

// Extract walks the tree and returns validated chunks sorted by start line.
// When nothing survives validation it returns one generic chunk covering the
// whole file, tagged with ReasonNoStructures.
func (e *Extractor) Extract(tree parser.Tree, content []byte, filePath, language string) []types.Chunk {
	structures := e.collect(tree.Root(), content, language)

	if len(structures) == 0 {
		return []types.Chunk{e.wholeFileChunk(content, filePath, language)}
	}

	chunks := make([]types.Chunk, 0, len(structures))
	for _, s := range structures {
		chunks = append(chunks, e.structureToChunk(s, filePath, language))
	}

	// Ascending by start line; ties keep discovery order.
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].StartLine < chunks[j].StartLine
	})

	return chunks
}

// collect scans one level at a time for top-level structures, then works
// through surviving structures to find nested ones up to the depth cap.
func (e *Extractor) collect(root parser.Node, content []byte, language string) []types.Structure {
	work := e.topLevel(root, content, language)

	nest := e.cfg.EnableNesting && e.cfg.MaxNestingLevel >= 2

	var out []types.Structure
	for i := 0; i < len(work); i++ {
		item := work[i]

		s, ok := e.buildStructure(item, content, language)
		if !ok {
			// StructureRejected: dropped, not reported, not retried.
			continue
		}
		out = append(out, s)

		if !nest || item.level+1 > e.cfg.MaxNestingLevel {
			continue
		}
		work = append(work, e.innerStructures(item, content, language)...)
	}

	return out
}

// topLevel finds structures with no extractable ancestor other than
// namespace/module wrappers.
func (e *Extractor) topLevel(root parser.Node, content []byte, language string) []workItem {
	var items []workItem

	scan := []parser.Node{root}
	for i := 0; i < len(scan); i++ {
		n := scan[i]
		for j := 0; j < n.ChildCount(); j++ {
			child := n.Child(j)
			if child == nil {
				continue
			}
			if _, ok := classify(language, child, ""); ok {
				items = append(items, workItem{node: child, level: 1})
				continue
			}
			if isWrapper(child.Kind()) {
				scan = append(scan, child)
			}
		}
	}

	return items
}

// innerStructures finds the direct nested structures within one surviving
// structure, one level deeper.
func (e *Extractor) innerStructures(item workItem, content []byte, language string) []workItem {
	parentTyp, _ := classify(language, item.node, item.parentType)

	var items []workItem
	scan := []parser.Node{item.node}
	for i := 0; i < len(scan); i++ {
		n := scan[i]
		for j := 0; j < n.ChildCount(); j++ {
			child := n.Child(j)
			if child == nil {
				continue
			}
			if _, ok := classify(language, child, parentTyp); ok {
				items = append(items, workItem{
					node:       child,
					level:      item.level + 1,
					parentType: parentTyp,
				})
				// The child's own work item scans its interior.
				continue
			}
			scan = append(scan, child)
		}
	}

	return items
}

// buildStructure slices the node span out of the source and validates it.
func (e *Extractor) buildStructure(item workItem, content []byte, language string) (types.Structure, bool) {
	node := item.node
	start, end := node.StartByte(), node.EndByte()
	if start < 0 || end > len(content) || end <= start {
		return types.Structure{}, false
	}

	typ, _ := classify(language, node, item.parentType)

	s := types.Structure{
		Type:         typ,
		Content:      string(content[start:end]),
		StartLine:    node.StartLine(),
		EndLine:      node.EndLine(),
		NestingLevel: item.level - 1,
		Name:         nodeName(node, content),
	}

	if !e.validate(s) {
		return types.Structure{}, false
	}
	return s, true
}

// validate applies the size, line-count, and complexity bounds.
func (e *Extractor) validate(s types.Structure) bool {
	n := len(s.Content)
	if n < e.cfg.MinChunkSize || n > e.cfg.MaxChunkSize {
		return false
	}

	if types.CountLines(s.Content) < minLinesFor(s.Type) {
		return false
	}

	cplx := score.Score(s.Content, s.Type)
	return cplx >= minStructureComplexity && cplx <= maxStructureComplexity
}

// minLinesFor returns the type-specific minimum line count. Modules and
// namespaces are unrestricted; the size bounds still apply.
func minLinesFor(typ types.ChunkType) int {
	switch typ {
	case types.ChunkFunction, types.ChunkMethod:
		return 3
	case types.ChunkClass, types.ChunkInterface:
		return 2
	case types.ChunkModule:
		return 1
	default:
		return 1
	}
}

// structureToChunk converts a validated structure, applying the nested
// emission policy: full body, or first line only when the config asks for
// signature-only nested chunks.
func (e *Extractor) structureToChunk(s types.Structure, filePath, language string) types.Chunk {
	c := types.Chunk{
		Content:      s.Content,
		StartLine:    s.StartLine,
		EndLine:      s.EndLine,
		Language:     language,
		FilePath:     filePath,
		Type:         s.Type,
		NestingLevel: s.NestingLevel,
	}

	if s.NestingLevel > 0 && e.cfg.NestedPolicy == types.NestedSignature {
		if idx := strings.IndexByte(s.Content, '\n'); idx >= 0 {
			c.Content = s.Content[:idx]
			c.EndLine = s.StartLine
			c.SignatureOnly = true
		}
	}

	c.Complexity = score.Score(c.Content, c.Type)
	c.Finalize()
	return c
}

// wholeFileChunk covers the entire input when no structure survived.
func (e *Extractor) wholeFileChunk(content []byte, filePath, language string) types.Chunk {
	text := string(content)
	c := types.Chunk{
		Content:        text,
		StartLine:      1,
		EndLine:        max(types.CountLines(text), 1),
		Language:       language,
		FilePath:       filePath,
		Type:           types.ChunkGeneric,
		FallbackReason: ReasonNoStructures,
	}
	c.Complexity = score.Score(c.Content, c.Type)
	c.Finalize()
	return c
}
