package detector_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/visualtestgen/internal/detector"
	"github.com/fjglira/visualtestgen/internal/domain"
	"github.com/fjglira/visualtestgen/internal/parser"
)

func parse(raw string) *domain.ParsedTable {
	table, err := parser.NewNaiveParser(',').Parse(raw)
	Expect(err).ToNot(HaveOccurred())
	return table
}

var _ = Describe("Detect", func() {
	It("should flag hide selectors but not actions for a single hide row", func() {
		flags := detector.Detect(parse("file_name,test_url,test_description,test_selector,test_hide,test_action\npdp,https://x,Full Page,body,.modal,\n"))
		Expect(flags.HasHideSelectors).To(BeTrue())
		Expect(flags.HasTestActions).To(BeFalse())
		Expect(flags.HasTestEnv).To(BeFalse())
		Expect(flags.HasSelectorText).To(BeFalse())
	})

	It("should enable a flag when any row has a value", func() {
		flags := detector.Detect(parse("file_name,test_action,test_env\na,,\nb,scroll,\nc,,int"))
		Expect(flags.HasTestActions).To(BeTrue())
		Expect(flags.HasTestEnv).To(BeTrue())
	})

	It("should treat whitespace-only values as absent", func() {
		table := &domain.ParsedTable{
			Headers: []string{domain.ColumnHide},
			Rows:    []domain.TestCaseRow{{Line: 2, Values: map[string]string{domain.ColumnHide: "   "}}},
		}
		Expect(detector.Detect(table).HasHideSelectors).To(BeFalse())
	})

	It("should ignore values when the column is not a header", func() {
		table := &domain.ParsedTable{
			Headers: []string{domain.ColumnFileName},
			Rows:    []domain.TestCaseRow{{Line: 2, Values: map[string]string{domain.ColumnAction: "click"}}},
		}
		Expect(detector.Detect(table).HasTestActions).To(BeFalse())
	})

	It("should flag selector text", func() {
		flags := detector.Detect(parse("file_name,test_selector,test_selector_text\ncart,button,Checkout"))
		Expect(flags.HasSelectorText).To(BeTrue())
	})

	It("should return zero flags for a header-only table", func() {
		Expect(detector.Detect(parse("test_hide,test_action,test_env"))).To(Equal(domain.FeatureFlags{}))
	})

	It("should return zero flags for nil", func() {
		Expect(detector.Detect(nil)).To(Equal(domain.FeatureFlags{}))
	})
})
