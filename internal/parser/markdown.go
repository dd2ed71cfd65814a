package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/fjglira/visualtestgen/internal/domain"
)

// ArtifactReader reads a composed artifact back using goldmark.
type ArtifactReader struct {
	md goldmark.Markdown
}

// NewArtifactReader creates a new ArtifactReader.
func NewArtifactReader() *ArtifactReader {
	return &ArtifactReader{md: goldmark.New()}
}

// Read extracts headings and fenced code blocks from a composed artifact.
func (r *ArtifactReader) Read(content []byte) (*domain.ParsedArtifact, error) {
	doc := r.md.Parser().Parse(text.NewReader(content))

	parsed := &domain.ParsedArtifact{}

	var currentHeading string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			headingText := extractText(node, content)
			lineNum := 0
			if node.Lines().Len() > 0 {
				lineNum = lineNumber(content, node.Lines().At(0).Start)
			} else if node.HasChildren() {
				// For ATX headings, use the child text segment position
				if first, ok := node.FirstChild().(*ast.Text); ok {
					lineNum = lineNumber(content, first.Segment.Start)
				}
			}
			parsed.Headings = append(parsed.Headings, domain.Heading{
				Level: node.Level,
				Text:  headingText,
				Line:  lineNum,
			})
			currentHeading = headingText

		case *ast.FencedCodeBlock:
			var info string
			if node.Info != nil {
				info = string(node.Info.Segment.Value(content))
			}
			parts := parseInfoString(info)

			var buf bytes.Buffer
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(content))
			}

			attrs := make(map[string]string)
			for k, v := range parts {
				if k != "_tag" {
					attrs[k] = v
				}
			}

			lineNum := 0
			if lines.Len() > 0 {
				lineNum = lineNumber(content, lines.At(0).Start)
			}

			parsed.Blocks = append(parsed.Blocks, domain.CodeBlock{
				Language:   parts["_tag"],
				Content:    strings.TrimRight(buf.String(), "\n"),
				Attributes: attrs,
				LineNumber: lineNum,
				Context:    currentHeading,
			})
		}

		return ast.WalkContinue, nil
	})

	if err != nil {
		return nil, domain.NewErrorWithSuggestion("parse", "", 0,
			"failed to walk artifact markdown",
			"pass the unmodified text produced by the generate command",
			err)
	}

	return parsed, nil
}

// BlocksByLanguage returns the blocks whose language matches lang.
// An empty lang matches every block.
func BlocksByLanguage(doc *domain.ParsedArtifact, lang string) []domain.CodeBlock {
	var out []domain.CodeBlock
	for _, b := range doc.Blocks {
		if lang == "" || strings.EqualFold(b.Language, lang) {
			out = append(out, b)
		}
	}
	return out
}

// parseInfoString parses a fenced code block info string like:
//
//	"typescript path=\"pages/ui/pdp.page.ts\""
//
// Returns map with _tag for the language tag and other key-value pairs.
func parseInfoString(info string) map[string]string {
	result := make(map[string]string)
	info = strings.TrimSpace(info)
	if info == "" {
		return result
	}

	// First token is the language tag
	parts := splitInfoString(info)
	if len(parts) == 0 {
		return result
	}

	result["_tag"] = parts[0]

	// Remaining tokens are key=value pairs
	for _, part := range parts[1:] {
		if idx := strings.Index(part, "="); idx > 0 {
			key := part[:idx]
			val := part[idx+1:]
			val = strings.Trim(val, "\"'")
			result[key] = val
		}
	}

	return result
}

// splitInfoString splits the info string respecting quoted values.
func splitInfoString(s string) []string {
	var parts []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote:
			if c == quoteChar {
				inQuote = false
			}
			current.WriteByte(c)
		case c == '"' || c == '\'':
			inQuote = true
			quoteChar = c
			current.WriteByte(c)
		case c == ' ' || c == '\t':
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// extractText gets the text content of a heading node.
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return buf.String()
}

// lineNumber calculates the 1-based line number for a byte offset.
func lineNumber(content []byte, offset int) int {
	return bytes.Count(content[:offset], []byte("\n")) + 1
}
