// Package tags classifies visual tests by the selector they capture.
package tags

import "strings"

const (
	VisualRegression = "visual-regression-tag"
	Screenshot       = "screenshot-tag"
	FullPage         = "fullpage-tag"
	Section          = "section-tag"
)

// FullPageSelector is the only selector treated as a whole-page capture.
const FullPageSelector = "body"

// Assign returns the tags for a selector: the two base tags followed by
// exactly one of FullPage or Section.
func Assign(selector string) []string {
	out := []string{VisualRegression, Screenshot}
	if IsFullPage(selector) {
		return append(out, FullPage)
	}
	return append(out, Section)
}

// IsFullPage reports whether selector captures the whole page.
func IsFullPage(selector string) bool {
	return selector == FullPageSelector
}

// Render formats tags as a TypeScript string array literal with "@" prefixes,
// e.g. ['@visual-regression-tag', '@screenshot-tag'].
func Render(tags []string) string {
	quoted := make([]string, len(tags))
	for i, t := range tags {
		quoted[i] = "'@" + t + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
