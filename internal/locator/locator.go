// Package locator groups test rows by file_name and derives page-object accessors.
package locator

import (
	"regexp"
	"strings"

	"github.com/fjglira/visualtestgen/internal/domain"
	"github.com/fjglira/visualtestgen/internal/naming"
)

// Build groups rows by file_name in first-seen order, keeping row order within
// each group. Every group gets its own module stem, so file_name values such as
// "pdp" and "pdp.spec.ts" never write to the same module. Rows with a non-empty description and selector contribute one
// accessor each; a non-empty test_selector_text narrows that accessor with a
// case-insensitive literal text filter.
func Build(table *domain.ParsedTable) []domain.LocatorGroup {
	if table == nil {
		return nil
	}

	var groups []domain.LocatorGroup
	index := make(map[string]int)
	stems := naming.NewStemAllocator()

	for _, row := range table.Rows {
		fileName := row.FileName()
		i, ok := index[fileName]
		if !ok {
			i = len(groups)
			index[fileName] = i
			g := domain.LocatorGroup{
				FileName:  fileName,
				Stem:      stems.Allocate(fileName),
				ClassName: naming.ClassName(fileName),
				DataName:  naming.DataName(fileName),
			}
			if g.Stem != naming.ModuleStem(fileName) {
				g.ClassName = naming.ClassName(g.Stem)
				g.DataName = naming.DataName(g.Stem)
			}
			groups = append(groups, g)
		}

		g := &groups[i]
		g.Rows = append(g.Rows, row)
		if a, ok := accessorFor(row); ok {
			g.Accessors = append(g.Accessors, a)
		}
	}

	return groups
}

func accessorFor(row domain.TestCaseRow) (domain.Accessor, bool) {
	desc, selector := row.Description(), row.Selector()
	if desc == "" || selector == "" {
		return domain.Accessor{}, false
	}
	a := domain.Accessor{
		Name:        naming.AccessorName(desc),
		Description: desc,
		Selector:    selector,
		Line:        row.Line,
	}
	if text := row.SelectorText(); text != "" {
		a.SelectorText = text
		a.Pattern = EscapePattern(text)
	}
	return a, true
}

// EscapePattern escapes text for use as a literal inside a JavaScript regular
// expression literal delimited by slashes.
func EscapePattern(text string) string {
	return strings.ReplaceAll(regexp.QuoteMeta(text), "/", `\/`)
}

// Expression renders the Playwright locator expression for an accessor, e.g.
// page.locator(".price").filter({ hasText: /Total/i }).
func Expression(receiver string, a domain.Accessor) string {
	expr := receiver + ".locator(" + QuoteJS(a.Selector) + ")"
	if a.Filtered() {
		expr += ".filter({ hasText: /" + a.Pattern + "/i })"
	}
	return expr
}

var jsEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

// QuoteJS returns s as a double-quoted JavaScript string literal.
func QuoteJS(s string) string {
	return `"` + jsEscaper.Replace(s) + `"`
}
