// Package composer assembles the generated artifact from ordered, flag-gated sections.
package composer

import (
	"fmt"
	"strings"

	"github.com/fjglira/visualtestgen/internal/domain"
	"github.com/fjglira/visualtestgen/internal/locator"
	"github.com/fjglira/visualtestgen/internal/naming"
	"github.com/fjglira/visualtestgen/internal/tags"
	tmpl "github.com/fjglira/visualtestgen/internal/template"
)

// Section names, in output order.
const (
	SectionPreamble        = "preamble"
	SectionInstructions    = "instructions"
	SectionCoreTemplate    = "core-template"
	SectionRepresentatives = "representative-examples"
	SectionEnvironment     = "environment"
	SectionLocators        = "locators"
	SectionTestData        = "test-data"
	SectionClosing         = "closing"
)

// Input is everything one composition needs. All fields are read-only.
type Input struct {
	Raw            string // original CSV text, echoed in the preamble
	Table          *domain.ParsedTable
	Flags          domain.FeatureFlags
	Environments   []domain.EnvironmentEntry
	Groups         []domain.LocatorGroup
	Representative Policy
	Locators       bool // emit one page-object module per group
	TestData       bool // emit one test-data module per group
}

// section is one named block of the artifact. enabled decides inclusion from
// the input alone, so inclusion never depends on earlier sections.
type section struct {
	name    string
	enabled func(in Input) bool
	render  func(c *Composer, in Input) (string, error)
}

// sections is the fixed output order.
var sections = []section{
	{SectionPreamble, always, (*Composer).preamble},
	{SectionInstructions, always, (*Composer).instructions},
	{SectionCoreTemplate, always, (*Composer).coreTemplate},
	{SectionRepresentatives, hasRepresentatives, (*Composer).representatives},
	{SectionEnvironment, func(in Input) bool { return in.Flags.HasTestEnv }, (*Composer).environment},
	{SectionLocators, func(in Input) bool { return in.Locators && len(in.Groups) > 0 }, (*Composer).locators},
	{SectionTestData, func(in Input) bool { return in.TestData && len(in.Groups) > 0 }, (*Composer).testData},
	{SectionClosing, always, (*Composer).closing},
}

func always(Input) bool { return true }

func hasRepresentatives(in Input) bool {
	return in.Table != nil && len(RepresentativeRows(in.Table.Rows, in.Representative)) > 0
}

// Composer renders artifacts. It holds no per-invocation state and is safe
// for concurrent use.
type Composer struct {
	engine tmpl.TemplateEngine
}

// New creates a Composer rendering modules with engine.
func New(engine tmpl.TemplateEngine) *Composer {
	return &Composer{engine: engine}
}

// Compose returns the artifact text and the names of the sections it contains.
func (c *Composer) Compose(in Input) (string, []string, error) {
	var (
		b     strings.Builder
		names []string
	)
	for _, s := range sections {
		if !s.enabled(in) {
			continue
		}
		text, err := s.render(c, in)
		if err != nil {
			return "", nil, domain.NewError("compose", "", 0, fmt.Sprintf("failed to render %s section", s.name), err)
		}
		if len(names) > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
		names = append(names, s.name)
	}
	return b.String(), names, nil
}

func (c *Composer) preamble(in Input) (string, error) {
	var b strings.Builder
	b.WriteString(tmpl.Text(tmpl.Preamble))
	b.WriteString(fence("csv", "", strings.TrimRight(in.Raw, "\r\n")))
	fmt.Fprintf(&b, "\nFragment set version %s.\n", tmpl.FragmentVersion)
	return b.String(), nil
}

func (c *Composer) instructions(Input) (string, error) {
	return tmpl.Text(tmpl.Instructions), nil
}

func (c *Composer) coreTemplate(in Input) (string, error) {
	var b strings.Builder
	b.WriteString("## Core test script template (mandatory)\n\n")
	b.WriteString("Every generated test must follow this template. Rows sharing a file_name go into tests/ui/<file_name>.spec.ts.\n\n")
	b.WriteString(fence("typescript", "", tmpl.CoreTemplate(in.Flags.HasHideSelectors, in.Flags.HasTestActions)))
	return b.String(), nil
}

func (c *Composer) representatives(in Input) (string, error) {
	var b strings.Builder
	b.WriteString("## Representative examples\n")
	for _, row := range RepresentativeRows(in.Table.Rows, in.Representative) {
		fmt.Fprintf(&b, "\n### %s: %s (line %d)\n\n", row.FileName(), row.Description(), row.Line)
		b.WriteString(fence("typescript", "", Example(row, in.Flags)))
	}
	return b.String(), nil
}

// Example renders the core template for one row. The hide and action
// fragments are included only when the flag is set and the row has a value.
func Example(row domain.TestCaseRow, flags domain.FeatureFlags) string {
	hide := row.HideSelectors()
	withHide := flags.HasHideSelectors && len(hide) > 0
	withAction := flags.HasTestActions && row.Action() != ""

	quoted := make([]string, len(hide))
	for i, h := range hide {
		quoted[i] = locator.QuoteJS(h)
	}

	name := naming.ToIdentifier(row.Description())
	if name == "" {
		name = fmt.Sprintf("Row%d", row.Line)
	}

	return tmpl.Substitute(tmpl.CoreTemplate(withHide, withAction), map[string]string{
		tmpl.PlaceholderDescription:  singleQuoted(row.Description()),
		tmpl.PlaceholderURL:          doubleQuoted(row.URL()),
		tmpl.PlaceholderSelector:     doubleQuoted(row.Selector()),
		tmpl.PlaceholderHideSelector: strings.Join(quoted, ", "),
		tmpl.PlaceholderAction:       oneLine(row.Action()),
		tmpl.ActionDescription:       oneLine(row.Action()),
		tmpl.PlaceholderTags:         tags.Render(tags.Assign(row.Selector())),
		tmpl.PlaceholderName:         name,
	})
}

func (c *Composer) environment(in Input) (string, error) {
	module, err := c.engine.RenderEnvironment(in.Environments)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("## Environment configuration\n\n")
	b.WriteString("Environments found in the CSV, in first-seen order:\n\n")
	b.WriteString("| Environment | Base URL | Screenshot directory | Timeout (ms) |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, e := range in.Environments {
		fmt.Fprintf(&b, "| %s | %s | %s | %d |\n", cell(e.Name), cell(e.BaseURL), cell(e.ScreenshotDir), e.TimeoutMs)
	}
	b.WriteString("\nSelect an environment with TEST_ENV (or NODE_ENV) when running the tests.\n\n")
	b.WriteString(fence("typescript", pathAttr(tmpl.EnvironmentPath()), module+tmpl.Text(tmpl.EnvironmentSwitch)))
	return b.String(), nil
}

func (c *Composer) locators(in Input) (string, error) {
	var b strings.Builder
	b.WriteString("## Page object locators\n")
	for _, g := range in.Groups {
		module, err := c.engine.RenderLocatorModule(g, in.TestData)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\n### %s\n\n", g.FileName)
		b.WriteString(fence("typescript", pathAttr(tmpl.PagePath(tmpl.GroupStem(g))), module))
	}
	return b.String(), nil
}

func (c *Composer) testData(in Input) (string, error) {
	var b strings.Builder
	b.WriteString("## Test data\n")
	for _, g := range in.Groups {
		module, err := c.engine.RenderDataModule(g, in.Table.Headers)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\n### %s\n\n", g.FileName)
		b.WriteString(fence("typescript", pathAttr(tmpl.DataPath(tmpl.GroupStem(g))), module))
	}
	return b.String(), nil
}

var placeholderHelp = map[string]string{
	tmpl.PlaceholderDescription:  "the test_description value of the row",
	tmpl.PlaceholderTags:         "the tag list for the row's selector",
	tmpl.PlaceholderName:         "the test_description value with everything but letters and digits removed",
	tmpl.PlaceholderURL:          "the test_url value of the row",
	tmpl.PlaceholderHideSelector: "the row's own test_hide selectors, quoted and comma separated",
	tmpl.PlaceholderAction:       "the test_action value of the row",
	tmpl.PlaceholderSelector:     "the test_selector value of the row",
}

func (c *Composer) closing(in Input) (string, error) {
	var b strings.Builder
	b.WriteString("## Template variables to replace\n")
	for _, p := range tmpl.Placeholders(in.Flags.HasHideSelectors, in.Flags.HasTestActions) {
		fmt.Fprintf(&b, "- `%s` → %s\n", p, placeholderHelp[p])
	}
	b.WriteString("\nTags: `@fullpage-tag` marks tests whose selector is `body`; every other selector gets `@section-tag`.\n\n")
	b.WriteString(tmpl.Text(tmpl.ClosingRules))
	return b.String(), nil
}

// fence wraps body in a fenced code block long enough not to be closed by
// any backtick run inside body.
func fence(lang, attrs, body string) string {
	ticks := 3
	run := 0
	for _, r := range body {
		if r == '`' {
			run++
			if run >= ticks {
				ticks = run + 1
			}
			continue
		}
		run = 0
	}
	marker := strings.Repeat("`", ticks)

	info := lang
	if attrs != "" {
		info += " " + attrs
	}
	return marker + info + "\n" + strings.TrimRight(body, "\n") + "\n" + marker + "\n"
}

func pathAttr(path string) string {
	return `path="` + path + `"`
}

func singleQuoted(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", " ").Replace(s)
}

func doubleQuoted(s string) string {
	q := locator.QuoteJS(s)
	return q[1 : len(q)-1]
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
