package composer_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/visualtestgen/internal/composer"
	"github.com/fjglira/visualtestgen/internal/detector"
	"github.com/fjglira/visualtestgen/internal/domain"
	"github.com/fjglira/visualtestgen/internal/environment"
	"github.com/fjglira/visualtestgen/internal/locator"
	"github.com/fjglira/visualtestgen/internal/parser"
	tmpl "github.com/fjglira/visualtestgen/internal/template"
)

const (
	hideLoop      = "for (const selector of ["
	actionComment = "// your code here"
)

func inputFor(raw string) composer.Input {
	table, err := parser.NewNaiveParser(',').Parse(raw)
	Expect(err).ToNot(HaveOccurred())
	flags := detector.Detect(table)
	envs, _ := environment.Build(table, flags, environment.Options{})
	return composer.Input{
		Raw:            raw,
		Table:          table,
		Flags:          flags,
		Environments:   envs,
		Groups:         locator.Build(table),
		Representative: composer.PolicyFirst,
		Locators:       true,
		TestData:       true,
	}
}

var _ = Describe("Composer", func() {
	var c *composer.Composer

	BeforeEach(func() {
		engine, err := tmpl.NewEngine("")
		Expect(err).ToNot(HaveOccurred())
		c = composer.New(engine)
	})

	It("should emit sections in the fixed order", func() {
		content, err := os.ReadFile(filepath.Join("..", "..", "testdata", "csv", "pdp.csv"))
		Expect(err).ToNot(HaveOccurred())

		text, sections, err := c.Compose(inputFor(string(content)))
		Expect(err).ToNot(HaveOccurred())
		Expect(sections).To(Equal([]string{
			composer.SectionPreamble, composer.SectionInstructions, composer.SectionCoreTemplate,
			composer.SectionRepresentatives, composer.SectionEnvironment, composer.SectionLocators,
			composer.SectionTestData, composer.SectionClosing,
		}))

		var last int
		for _, heading := range []string{"# Visual Test Generation", "## Step-by-step instructions",
			"## Core test script template", "## Representative examples", "## Environment configuration",
			"## Page object locators", "## Test data", "## Template variables to replace"} {
			i := strings.Index(text, heading)
			Expect(i).To(BeNumerically(">=", last), heading)
			last = i
		}
	})

	It("should echo the raw CSV in the preamble", func() {
		raw := "file_name,test_url,test_description,test_selector\npdp,https://x,Full Page,body\n"
		text, _, err := c.Compose(inputFor(raw))
		Expect(err).ToNot(HaveOccurred())
		Expect(text).To(ContainSubstring("```csv\nfile_name,test_url,test_description,test_selector\npdp,https://x,Full Page,body\n```"))
	})

	It("should lengthen the fence when the CSV contains backticks", func() {
		raw := "file_name,test_url,test_description,test_selector\npdp,https://x,```,body"
		text, _, err := c.Compose(inputFor(raw))
		Expect(err).ToNot(HaveOccurred())
		Expect(text).To(ContainSubstring("````csv\n"))
	})

	It("should omit hide and action fragments when no row uses them", func() {
		text, _, err := c.Compose(inputFor("file_name,test_url,test_description,test_selector,test_hide,test_action\npdp,https://x,Full Page,body,,\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(text).ToNot(ContainSubstring(hideLoop))
		Expect(text).ToNot(ContainSubstring(actionComment))
		Expect(text).ToNot(ContainSubstring("`test_hide_selector`"))
		Expect(text).ToNot(ContainSubstring("`test_action`"))
	})

	It("should include hide before action when both are used", func() {
		text, _, err := c.Compose(inputFor("file_name,test_url,test_description,test_selector,test_hide,test_action\npdp,https://x,Full Page,body,.modal,scroll down\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(text).To(ContainSubstring(hideLoop))
		Expect(text).To(ContainSubstring(actionComment))
		Expect(strings.Index(text, hideLoop)).To(BeNumerically("<", strings.Index(text, actionComment)))
		Expect(text).To(ContainSubstring("`test_hide_selector`"))
		Expect(text).To(ContainSubstring("`test_action`"))
	})

	It("should keep placeholders in the core template", func() {
		text, _, err := c.Compose(inputFor("file_name,test_url,test_description,test_selector,test_hide\npdp,https://x,Full Page,body,.modal\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(text).To(ContainSubstring("test.describe('test_description - Visual testing', { tag: test_tags }"))
		Expect(text).To(ContainSubstring("for (const selector of [test_hide_selector])"))
	})

	It("should substitute the representative row", func() {
		text, _, err := c.Compose(inputFor("file_name,test_url,test_description,test_selector,test_hide\npdp,https://x,Full Page,body,.modal\npdp,https://y,Top,.top,\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(text).To(ContainSubstring("test.describe('Full Page - Visual testing', { tag: ['@visual-regression-tag', '@screenshot-tag', '@fullpage-tag'] }"))
		Expect(text).To(ContainSubstring(`const url = "https://x";`))
		Expect(text).To(ContainSubstring(`for (const selector of [".modal"])`))
		Expect(text).To(ContainSubstring("toMatchSnapshot('FullPage.png')"))
		Expect(text).ToNot(ContainSubstring(`const url = "https://y";`))
	})

	It("should not include the environment section without test_env values", func() {
		_, sections, err := c.Compose(inputFor("file_name,test_url,test_description,test_selector,test_env\npdp,https://x,Full Page,body,\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(sections).ToNot(ContainElement(composer.SectionEnvironment))
	})

	It("should render the environment table in first-seen order", func() {
		text, _, err := c.Compose(inputFor("file_name,test_url,test_description,test_selector,test_env\npdp,https://p,A,body,prep\npdp,https://i,B,.b,int\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(text).To(ContainSubstring("| prep | https://p | __screenshots__/prep | 30000 |\n| int | https://i | __screenshots__/int | 30000 |"))
		Expect(text).To(ContainSubstring("```typescript path=\"utils/ui/env-config.ts\""))
		Expect(text).To(ContainSubstring("export function switchEnvironment("))
		Expect(strings.Index(text, `"prep": {`)).To(BeNumerically("<", strings.Index(text, `"int": {`)))
	})

	It("should honor the locator and test data switches", func() {
		in := inputFor("file_name,test_url,test_description,test_selector\npdp,https://x,Full Page,body\n")
		in.Locators = false
		in.TestData = false
		text, sections, err := c.Compose(in)
		Expect(err).ToNot(HaveOccurred())
		Expect(sections).ToNot(ContainElements(composer.SectionLocators))
		Expect(sections).ToNot(ContainElements(composer.SectionTestData))
		Expect(text).ToNot(ContainSubstring("export class PdpPage"))
	})

	It("should emit one page object per group", func() {
		text, _, err := c.Compose(inputFor("file_name,test_url,test_description,test_selector\npdp,https://x,Full Page,body\nplp,https://y,Grid,.grid\npdp,https://x,Top Section,.top\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(strings.Count(text, "export class ")).To(Equal(2))
		Expect(text).To(ContainSubstring("```typescript path=\"pages/ui/pdp.page.ts\""))
		Expect(text).To(ContainSubstring("```typescript path=\"data/ui/plp.data.ts\""))
		Expect(strings.Index(text, "get FullPageLocator()")).To(BeNumerically("<", strings.Index(text, "get TopSectionLocator()")))
	})

	Describe("representative policy", func() {
		raw := "file_name,test_url,test_description,test_selector\npdp,https://x,Full Page,body\npdp,https://x,Top Section,.top\n"

		It("should render every row with PolicyAll", func() {
			in := inputFor(raw)
			in.Representative = composer.PolicyAll
			text, _, err := c.Compose(in)
			Expect(err).ToNot(HaveOccurred())
			Expect(text).To(ContainSubstring("### pdp: Full Page (line 2)"))
			Expect(text).To(ContainSubstring("### pdp: Top Section (line 3)"))
		})

		It("should drop the section with PolicyNone", func() {
			in := inputFor(raw)
			in.Representative = composer.PolicyNone
			_, sections, err := c.Compose(in)
			Expect(err).ToNot(HaveOccurred())
			Expect(sections).ToNot(ContainElement(composer.SectionRepresentatives))
		})

		It("should drop the section for a header-only table", func() {
			_, sections, err := c.Compose(inputFor("file_name,test_url,test_description,test_selector\n"))
			Expect(err).ToNot(HaveOccurred())
			Expect(sections).ToNot(ContainElement(composer.SectionRepresentatives))
			Expect(sections).ToNot(ContainElement(composer.SectionLocators))
		})
	})
})

var _ = Describe("Example", func() {
	flags := domain.FeatureFlags{HasHideSelectors: true, HasTestActions: true}

	row := func(values map[string]string) domain.TestCaseRow {
		return domain.TestCaseRow{Line: 2, Values: values}
	}

	It("should suppress fragments for rows without values", func() {
		out := composer.Example(row(map[string]string{"test_description": "Top", "test_selector": ".top"}), flags)
		Expect(out).ToNot(ContainSubstring(hideLoop))
		Expect(out).ToNot(ContainSubstring(actionComment))
		Expect(out).To(ContainSubstring("'@section-tag'"))
	})

	It("should keep hide selectors specific to the row", func() {
		out := composer.Example(row(map[string]string{
			"test_description": "Full Page", "test_selector": "body",
			"test_hide": ".modal-backdrop.flyout; #onetrust-banner-sdk", "test_action": "scroll\nto bottom",
		}), flags)
		Expect(out).To(ContainSubstring(`for (const selector of [".modal-backdrop.flyout", "#onetrust-banner-sdk"])`))
		Expect(out).To(ContainSubstring("// scroll to bottom\n"))
		Expect(out).ToNot(ContainSubstring("description\n"))
	})

	It("should escape quotes in substituted values", func() {
		out := composer.Example(row(map[string]string{
			"test_description": "Shopper's cart", "test_selector": `a[title="x"]`, "test_url": "https://x",
		}), domain.FeatureFlags{})
		Expect(out).To(ContainSubstring(`test.describe('Shopper\'s cart - Visual testing'`))
		Expect(out).To(ContainSubstring(`page.locator("a[title=\"x\"]")`))
	})

	It("should name tests without a description by line", func() {
		out := composer.Example(row(map[string]string{"test_selector": "body"}), domain.FeatureFlags{})
		Expect(out).To(ContainSubstring("test('Row2'"))
	})
})

var _ = Describe("Policy", func() {
	It("should parse known policies", func() {
		for _, p := range composer.Policies {
			got, err := composer.ParsePolicy(strings.ToUpper(string(p)))
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(p))
		}
	})

	It("should default to first", func() {
		Expect(composer.ParsePolicy("")).To(Equal(composer.PolicyFirst))
	})

	It("should reject unknown policies", func() {
		_, err := composer.ParsePolicy("random")
		Expect(err).To(HaveOccurred())
	})

	It("should select rows", func() {
		rows := []domain.TestCaseRow{{Line: 2}, {Line: 3}}
		Expect(composer.RepresentativeRows(rows, composer.PolicyFirst)).To(HaveLen(1))
		Expect(composer.RepresentativeRows(rows, composer.PolicyAll)).To(HaveLen(2))
		Expect(composer.RepresentativeRows(rows, composer.PolicyNone)).To(BeEmpty())
		Expect(composer.RepresentativeRows(nil, composer.PolicyFirst)).To(BeEmpty())
	})
})
