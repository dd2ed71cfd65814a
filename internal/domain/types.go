package domain

import "strings"

// Recognized column names. Matching is exact and case-sensitive.
const (
	ColumnFileName     = "file_name"
	ColumnURL          = "test_url"
	ColumnDescription  = "test_description"
	ColumnSelector     = "test_selector"
	ColumnSelectorText = "test_selector_text"
	ColumnHide         = "test_hide"
	ColumnAction       = "test_action"
	ColumnEnv          = "test_env"
)

// RecognizedColumns lists every column the pipeline reads, in canonical order.
var RecognizedColumns = []string{
	ColumnFileName, ColumnURL, ColumnDescription, ColumnSelector,
	ColumnSelectorText, ColumnHide, ColumnAction, ColumnEnv,
}

// TestCaseRow holds the raw column values of one data row.
// Column order comes from the owning ParsedTable's Headers.
type TestCaseRow struct {
	Line   int               // 1-based line number in the raw input
	Values map[string]string // column name -> trimmed value ("" when absent)
}

// Get returns the value of column, or "" if the row has no such column.
func (r TestCaseRow) Get(column string) string {
	return strings.TrimSpace(r.Values[column])
}

func (r TestCaseRow) FileName() string     { return r.Get(ColumnFileName) }
func (r TestCaseRow) URL() string          { return r.Get(ColumnURL) }
func (r TestCaseRow) Description() string  { return r.Get(ColumnDescription) }
func (r TestCaseRow) Selector() string     { return r.Get(ColumnSelector) }
func (r TestCaseRow) SelectorText() string { return r.Get(ColumnSelectorText) }
func (r TestCaseRow) Hide() string         { return r.Get(ColumnHide) }
func (r TestCaseRow) Action() string       { return r.Get(ColumnAction) }
func (r TestCaseRow) Env() string          { return r.Get(ColumnEnv) }

// HideSelectors splits the test_hide value into individual selectors.
// Selectors may be separated by commas (quoted dialect) or semicolons.
func (r TestCaseRow) HideSelectors() []string {
	raw := r.Hide()
	if raw == "" {
		return nil
	}
	fields := strings.FieldsFunc(raw, func(c rune) bool { return c == ',' || c == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ParsedTable is the result of parsing raw tabular input.
type ParsedTable struct {
	Headers  []string
	Rows     []TestCaseRow
	Dialect  string   // parser dialect that produced the table
	Warnings []string // tolerated irregularities found while parsing
}

// HasColumn reports whether column is one of the table headers.
func (t *ParsedTable) HasColumn(column string) bool {
	for _, h := range t.Headers {
		if h == column {
			return true
		}
	}
	return false
}

// FeatureFlags records which optional fragments apply to an invocation.
type FeatureFlags struct {
	HasHideSelectors bool `json:"hasHideSelectors"`
	HasTestActions   bool `json:"hasTestActions"`
	HasTestEnv       bool `json:"hasTestEnv"`
	HasSelectorText  bool `json:"hasSelectorText"`
}

// EnvironmentEntry is a named deployment target with its base URL.
type EnvironmentEntry struct {
	Name          string
	BaseURL       string
	ScreenshotDir string
	TimeoutMs     int
}

// Accessor is one generated locator getter inside a LocatorGroup.
type Accessor struct {
	Name         string // e.g. "FullPageLocator"
	Description  string
	Selector     string
	SelectorText string // raw text filter, "" when unfiltered
	Pattern      string // regex-escaped SelectorText
	Line         int
}

// Filtered reports whether the accessor narrows its selector by text.
func (a Accessor) Filtered() bool {
	return a.SelectorText != ""
}

// LocatorGroup collects the rows sharing one file_name.
type LocatorGroup struct {
	FileName  string
	Stem      string // module file stem, unique within one artifact
	ClassName string
	DataName  string
	Rows      []TestCaseRow
	Accessors []Accessor
}

// Artifact is the final result of one generation.
type Artifact struct {
	Text         string
	Flags        FeatureFlags
	Sections     []string
	Environments []EnvironmentEntry
	Groups       []LocatorGroup
	Warnings     []string
}

// ParsedArtifact is a composed artifact read back into its structure.
type ParsedArtifact struct {
	Headings []Heading
	Blocks   []CodeBlock
}

// CodeBlock represents a fenced code block extracted from a composed artifact.
type CodeBlock struct {
	Language   string
	Content    string
	Attributes map[string]string // key=value pairs from the fence info string
	LineNumber int               // 1-based line number of the first content line
	Context    string            // nearest preceding heading
}

// Heading represents an artifact heading.
type Heading struct {
	Level int
	Text  string
	Line  int
}
