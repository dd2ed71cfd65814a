package template

import (
	"strings"
	"text/template"
	"unicode"

	"github.com/fjglira/visualtestgen/internal/domain"
	"github.com/fjglira/visualtestgen/internal/locator"
	"github.com/fjglira/visualtestgen/internal/naming"
)

// CustomFuncMap returns the custom template functions available in templates.
func CustomFuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"toLower":   strings.ToLower,
		"toUpper":   strings.ToUpper,
		"trimSpace": strings.TrimSpace,
		"join":      strings.Join,
		"jsString":  locator.QuoteJS,
		"locator":   locator.Expression,
		"column": func(row domain.TestCaseRow, column string) string {
			return row.Get(column)
		},
		"optional": func(column string) bool {
			return column == domain.ColumnSelectorText
		},
		"indent": func(spaces int, s string) string {
			pad := strings.Repeat(" ", spaces)
			lines := strings.Split(s, "\n")
			for i, line := range lines {
				if line != "" {
					lines[i] = pad + line
				}
			}
			return strings.Join(lines, "\n")
		},
	}
}

// ModuleStem returns the file stem used for generated module paths.
func ModuleStem(fileName string) string {
	return naming.ModuleStem(fileName)
}

// GroupStem returns the module stem of a group, derived from its file_name
// when the group carries none.
func GroupStem(g domain.LocatorGroup) string {
	if g.Stem != "" {
		return g.Stem
	}
	return ModuleStem(g.FileName)
}

// Module paths for generated files, relative to the project root.
func SpecPath(stem string) string { return "tests/ui/" + stem + ".spec.ts" }
func PagePath(stem string) string { return "pages/ui/" + stem + ".page.ts" }
func DataPath(stem string) string { return "data/ui/" + stem + ".data.ts" }
func EnvironmentPath() string     { return "utils/ui/env-config.ts" }

func isTSIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || (r < unicode.MaxASCII && unicode.IsLetter(r)):
		case i > 0 && r < unicode.MaxASCII && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
