// Package naming derives TypeScript identifiers from free-text CSV values.
package naming

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/fjglira/visualtestgen/internal/domain"
)

// Suffixes appended to identifiers for generated members.
const (
	AccessorSuffix = "Locator"
	ClassSuffix    = "Page"
	DataSuffix     = "Data"
)

// ToIdentifier strips every character that is not an ASCII letter or digit and
// upper-cases the first remaining character. Accented letters are folded to
// their base letter first, so "Café" becomes "Cafe".
func ToIdentifier(text string) string {
	folded := fold(text)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}

	id := b.String()
	if id == "" {
		return ""
	}
	// Casers are stateful, so each call gets its own.
	return cases.Upper(language.Und).String(id[:1]) + id[1:]
}

func fold(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// FileStem returns the file name without directories, a ".spec.ts" or
// ".spec.js" suffix, or any other extension.
func FileStem(fileName string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	for _, suffix := range []string{".spec.ts", ".spec.js", ".test.ts", ".test.js"} {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// AccessorName returns the locator accessor name for a test description.
func AccessorName(description string) string {
	return ToIdentifier(description) + AccessorSuffix
}

// ClassName returns the page-object class name for a file_name value. An
// identifier starting with a digit takes the suffix as a prefix instead,
// so "404.spec.ts" becomes "Page404".
func ClassName(fileName string) string {
	id := ToIdentifier(FileStem(fileName))
	if startsWithDigit(id) {
		return ClassSuffix + id
	}
	return id + ClassSuffix
}

// DataName returns the exported test-data constant name for a file_name value.
// The first character is lower-cased to follow TypeScript const conventions.
func DataName(fileName string) string {
	id := ToIdentifier(FileStem(fileName))
	lower := strings.ToLower(DataSuffix[:1]) + DataSuffix[1:]
	switch {
	case id == "":
		return lower
	case startsWithDigit(id):
		return lower + id
	}
	return strings.ToLower(id[:1]) + id[1:] + DataSuffix
}

func startsWithDigit(id string) bool {
	return id != "" && id[0] >= '0' && id[0] <= '9'
}

// ModuleStem returns the file stem used for generated module paths, with
// characters outside [A-Za-z0-9._-] replaced by hyphens.
func ModuleStem(fileName string) string {
	stem := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.') {
			return r
		}
		return '-'
	}, FileStem(fileName))
	stem = strings.Trim(stem, "-.")
	if stem == "" {
		return "unnamed"
	}
	return stem
}

// StemAllocator hands out module stems that are unique within one artifact.
// A file_name whose stem is taken gets "-2", "-3" and so on appended.
type StemAllocator struct {
	used map[string]bool
}

// NewStemAllocator creates an empty StemAllocator.
func NewStemAllocator() *StemAllocator {
	return &StemAllocator{used: make(map[string]bool)}
}

// Allocate returns the unique stem for fileName.
func (a *StemAllocator) Allocate(fileName string) string {
	base := ModuleStem(fileName)
	stem := base
	for n := 2; a.used[stem]; n++ {
		stem = fmt.Sprintf("%s-%d", base, n)
	}
	a.used[stem] = true
	return stem
}

// Collisions reports accessor names that appear more than once inside a
// group, whether from repeated or from distinct descriptions, and file_name
// values whose module stem had to be renamed because another file_name
// already produced it. The groups are never modified.
func Collisions(groups []domain.LocatorGroup) []string {
	var warnings []string
	holders := make(map[string]string, len(groups))
	for _, g := range groups {
		if g.Stem != "" {
			holders[g.Stem] = g.FileName
		}
	}
	for _, g := range groups {
		if base := ModuleStem(g.FileName); g.Stem != "" && g.Stem != base {
			warnings = append(warnings, fmt.Sprintf(
				"file_name %q shares module stem %q with %q, its modules are written as %q (class %s)",
				g.FileName, base, holders[base], g.Stem, g.ClassName))
		}
	}
	for _, g := range groups {
		seen := make(map[string]domain.Accessor, len(g.Accessors))
		for _, a := range g.Accessors {
			prev, ok := seen[a.Name]
			if !ok {
				seen[a.Name] = a
				continue
			}
			if prev.Description == a.Description {
				warnings = append(warnings, fmt.Sprintf(
					"line %d: accessor %s repeated in group %q (first at line %d)",
					a.Line, a.Name, g.FileName, prev.Line))
				continue
			}
			warnings = append(warnings, fmt.Sprintf(
				"line %d: %q and %q both produce accessor %s in group %q",
				a.Line, prev.Description, a.Description, a.Name, g.FileName))
		}
	}
	return warnings
}
