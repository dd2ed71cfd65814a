package locator_test

import (
	"os"
	"path/filepath"
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/visualtestgen/internal/domain"
	"github.com/fjglira/visualtestgen/internal/locator"
	"github.com/fjglira/visualtestgen/internal/parser"
)

func parse(raw string) *domain.ParsedTable {
	table, err := parser.NewNaiveParser(',').Parse(raw)
	Expect(err).ToNot(HaveOccurred())
	return table
}

func names(accessors []domain.Accessor) []string {
	out := make([]string, len(accessors))
	for i, a := range accessors {
		out[i] = a.Name
	}
	return out
}

var _ = Describe("Build", func() {
	It("should emit one accessor per row in row order", func() {
		groups := locator.Build(parse("file_name,test_url,test_description,test_selector\npdp,https://x,Full Page,body\npdp,https://x,Top Section,.top"))
		Expect(groups).To(HaveLen(1))
		Expect(groups[0].FileName).To(Equal("pdp"))
		Expect(groups[0].ClassName).To(Equal("PdpPage"))
		Expect(groups[0].DataName).To(Equal("pdpData"))
		Expect(names(groups[0].Accessors)).To(Equal([]string{"FullPageLocator", "TopSectionLocator"}))
	})

	It("should give file names sharing a stem their own module and class", func() {
		groups := locator.Build(parse("file_name,test_description,test_selector\npdp,Full Page,body\npdp.spec.ts,Top Section,.top"))
		Expect(groups).To(HaveLen(2))
		Expect(groups[0].Stem).To(Equal("pdp"))
		Expect(groups[0].ClassName).To(Equal("PdpPage"))
		Expect(groups[1].Stem).To(Equal("pdp-2"))
		Expect(groups[1].ClassName).To(Equal("Pdp2Page"))
		Expect(groups[1].DataName).To(Equal("pdp2Data"))
	})

	It("should keep first-seen group order", func() {
		groups := locator.Build(parse("file_name,test_description,test_selector\nplp,A,.a\npdp,B,.b\nplp,C,.c"))
		Expect(groups).To(HaveLen(2))
		Expect(groups[0].FileName).To(Equal("plp"))
		Expect(names(groups[0].Accessors)).To(Equal([]string{"ALocator", "CLocator"}))
		Expect(groups[1].FileName).To(Equal("pdp"))
	})

	It("should keep rows without an accessor in the group", func() {
		groups := locator.Build(parse("file_name,test_description,test_selector\npdp,,body\npdp,Hero,\npdp,Top,.top"))
		Expect(groups[0].Rows).To(HaveLen(3))
		Expect(names(groups[0].Accessors)).To(Equal([]string{"TopLocator"}))
	})

	It("should not deduplicate colliding names", func() {
		groups := locator.Build(parse("file_name,test_description,test_selector\npdp,Full Page,body\npdp,Full-Page,.main"))
		Expect(names(groups[0].Accessors)).To(Equal([]string{"FullPageLocator", "FullPageLocator"}))
	})

	It("should attach an escaped text filter", func() {
		content, err := os.ReadFile(filepath.Join("..", "..", "testdata", "csv", "quoted.csv"))
		Expect(err).ToNot(HaveOccurred())
		table, err := parser.NewQuotedParser(',').Parse(string(content))
		Expect(err).ToNot(HaveOccurred())

		groups := locator.Build(table)
		Expect(groups).To(HaveLen(1))
		a := groups[0].Accessors[0]
		Expect(a.Name).To(Equal("CartSummaryLocator"))
		Expect(a.Filtered()).To(BeTrue())
		Expect(a.SelectorText).To(Equal("Total (incl. tax)"))
		Expect(a.Pattern).To(Equal(`Total \(incl\. tax\)`))
	})

	It("should return nil for nil", func() {
		Expect(locator.Build(nil)).To(BeNil())
	})
})

var _ = Describe("EscapePattern", func() {
	DescribeTable("produces a literal match",
		func(text string) {
			pattern := locator.EscapePattern(text)
			re := regexp.MustCompile("(?i)^" + pattern + "$")
			Expect(re.MatchString(text)).To(BeTrue())
		},
		Entry("plain", "Checkout"),
		Entry("dot", "v1.2"),
		Entry("wildcards", ".*+?"),
		Entry("brackets", "[sale] (50%)"),
		Entry("anchors", "^$|"),
		Entry("slash", "a/b"),
	)

	It("should not let a dot match any character", func() {
		re := regexp.MustCompile(locator.EscapePattern("a.c"))
		Expect(re.MatchString("abc")).To(BeFalse())
	})

	It("should escape slashes for regex literals", func() {
		Expect(locator.EscapePattern("10/20")).To(Equal(`10\/20`))
	})
})

var _ = Describe("Expression", func() {
	It("should render an unfiltered locator", func() {
		Expect(locator.Expression("this.page", domain.Accessor{Selector: ".top"})).
			To(Equal(`this.page.locator(".top")`))
	})

	It("should render a case-insensitive filter", func() {
		a := domain.Accessor{Selector: "button", SelectorText: "Buy now", Pattern: "Buy now"}
		Expect(locator.Expression("page", a)).
			To(Equal(`page.locator("button").filter({ hasText: /Buy now/i })`))
	})

	It("should quote selectors containing double quotes", func() {
		Expect(locator.QuoteJS(`a[title="x"]`)).To(Equal(`"a[title=\"x\"]"`))
	})
})
