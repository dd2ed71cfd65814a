package parser

import (
	"strings"

	"github.com/fjglira/visualtestgen/internal/domain"
)

// NaiveParser splits every line positionally on the delimiter.
// A delimiter inside a quoted field is still treated as a field boundary.
type NaiveParser struct {
	delimiter string
}

// NewNaiveParser creates a NaiveParser for the given delimiter.
func NewNaiveParser(delimiter rune) *NaiveParser {
	return &NaiveParser{delimiter: string(delimiter)}
}

// Dialect returns the dialect name this parser handles.
func (p *NaiveParser) Dialect() string {
	return DialectNaive
}

// Parse parses raw delimited text into a ParsedTable.
func (p *NaiveParser) Parse(raw string) (*domain.ParsedTable, error) {
	lines := nonBlankLines(raw)
	if len(lines) == 0 {
		return nil, domain.MalformedInput("input is empty: no header line available")
	}

	header := record{line: lines[0].line, fields: p.split(lines[0].text)}
	rows := make([]record, 0, len(lines)-1)
	for _, l := range lines[1:] {
		rows = append(rows, record{line: l.line, fields: p.split(l.text)})
	}

	return buildTable(p.Dialect(), header, rows), nil
}

func (p *NaiveParser) split(line string) []string {
	fields := strings.Split(line, p.delimiter)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

type numberedLine struct {
	line int
	text string
}

// nonBlankLines trims the input and returns its non-blank lines with 1-based numbers.
func nonBlankLines(raw string) []numberedLine {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	// Line numbers count from the first non-blank line of the original input.
	offset := strings.Count(raw[:strings.Index(raw, trimmed)], "\n")

	var out []numberedLine
	for i, l := range strings.Split(trimmed, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, numberedLine{line: offset + i + 1, text: l})
	}
	return out
}
