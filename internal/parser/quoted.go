package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fjglira/visualtestgen/internal/domain"
)

// QuotedParser understands RFC 4180 quoting, so delimiters inside quoted
// fields stay part of the value. Unquoted fields split exactly like NaiveParser.
type QuotedParser struct {
	delimiter rune
	fallback  *NaiveParser
}

// NewQuotedParser creates a QuotedParser for the given delimiter.
func NewQuotedParser(delimiter rune) *QuotedParser {
	return &QuotedParser{
		delimiter: delimiter,
		fallback:  NewNaiveParser(delimiter),
	}
}

// Dialect returns the dialect name this parser handles.
func (p *QuotedParser) Dialect() string {
	return DialectQuoted
}

// Parse parses raw delimited text into a ParsedTable. When the quoted reader
// rejects the input, the naive split is used and a warning is recorded.
func (p *QuotedParser) Parse(raw string) (*domain.ParsedTable, error) {
	lines := nonBlankLines(raw)
	if len(lines) == 0 {
		return nil, domain.MalformedInput("input is empty: no header line available")
	}

	records, err := p.read(lines)
	if err != nil {
		table, nerr := p.fallback.Parse(raw)
		if nerr != nil {
			return nil, nerr
		}
		table.Warnings = append(table.Warnings, fmt.Sprintf("quoted parsing failed, fell back to naive split: %v", err))
		return table, nil
	}

	return buildTable(p.Dialect(), records[0], records[1:]), nil
}

func (p *QuotedParser) read(lines []numberedLine) ([]record, error) {
	// Feed the reader only the non-blank lines, keeping a line map for numbering.
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.text)
		b.WriteByte('\n')
	}

	cr := csv.NewReader(strings.NewReader(b.String()))
	cr.Comma = p.delimiter
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var records []record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		number := line
		if line >= 1 && line <= len(lines) {
			number = lines[line-1].line
		}
		for i := range fields {
			if strings.ContainsAny(fields[i], "\r\n") {
				return nil, fmt.Errorf("line %d: quoted value spans several lines", number)
			}
			fields[i] = strings.TrimSpace(fields[i])
		}
		records = append(records, record{line: number, fields: fields})
	}

	if len(records) == 0 {
		return nil, errors.New("no records")
	}
	return records, nil
}
