package parser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fjglira/visualtestgen/internal/domain"
)

// Dialect names understood by the registry.
const (
	DialectNaive  = "naive"
	DialectQuoted = "quoted"
)

// Parser splits raw delimited text into a ParsedTable.
type Parser interface {
	Parse(raw string) (*domain.ParsedTable, error)
	Dialect() string
}

// ParserRegistry maps dialect names to parsers.
type ParserRegistry interface {
	Register(parser Parser)
	ParserFor(dialect string) (Parser, error)
}

// DefaultRegistry is a thread-safe parser registry with fallback support.
type DefaultRegistry struct {
	mu       sync.RWMutex
	parsers  map[string]Parser
	fallback Parser
}

// NewRegistry creates a new DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		parsers: make(map[string]Parser),
	}
}

// NewDefaultRegistry returns a registry holding both dialects for delimiter,
// falling back to the naive parser for unknown dialect names.
func NewDefaultRegistry(delimiter rune) *DefaultRegistry {
	naive := NewNaiveParser(delimiter)
	r := NewRegistry()
	r.Register(naive)
	r.Register(NewQuotedParser(delimiter))
	r.SetFallback(naive)
	return r
}

// Register adds a parser to the registry under its dialect name.
func (r *DefaultRegistry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[strings.ToLower(p.Dialect())] = p
}

// SetFallback sets the fallback parser for unregistered dialects.
func (r *DefaultRegistry) SetFallback(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = p
}

// ParserFor returns the parser registered for the given dialect.
// If no parser is found, it returns the fallback parser if set.
func (r *DefaultRegistry) ParserFor(dialect string) (Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.parsers[strings.ToLower(strings.TrimSpace(dialect))]; ok {
		return p, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("no parser registered for dialect %q", dialect)
}

// record is one split input line before it is aligned to the headers.
type record struct {
	line   int
	fields []string
}

// buildTable aligns records to the header record. Duplicate header names keep
// their first position; short records are padded and long ones truncated.
func buildTable(dialect string, header record, rows []record) *domain.ParsedTable {
	table := &domain.ParsedTable{Dialect: dialect}

	positions := make(map[string]int, len(header.fields))
	for i, h := range header.fields {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		h = strings.TrimSpace(h)
		if _, dup := positions[h]; dup {
			table.Warnings = append(table.Warnings,
				fmt.Sprintf("line %d: duplicate column %q ignored", header.line, h))
			continue
		}
		positions[h] = i
		table.Headers = append(table.Headers, h)
	}

	width := len(header.fields)
	for _, rec := range rows {
		switch {
		case len(rec.fields) < width:
			table.Warnings = append(table.Warnings,
				fmt.Sprintf("line %d: %d values for %d columns, padded with empty values", rec.line, len(rec.fields), width))
		case len(rec.fields) > width:
			table.Warnings = append(table.Warnings,
				fmt.Sprintf("line %d: %d values for %d columns, extra values dropped", rec.line, len(rec.fields), width))
		}

		values := make(map[string]string, len(table.Headers))
		for _, h := range table.Headers {
			v := ""
			if pos := positions[h]; pos < len(rec.fields) {
				v = strings.TrimSpace(rec.fields[pos])
			}
			values[h] = v
		}
		table.Rows = append(table.Rows, domain.TestCaseRow{Line: rec.line, Values: values})
	}

	return table
}
