package template

import (
	"sort"
	"strings"
)

// FragmentVersion identifies the revision of the fixed fragment texts. Bump it
// whenever a fragment changes so generated artifacts can be traced back.
const FragmentVersion = "1.3.0"

// Fragment names.
const (
	ModuleImport      = "module-import"
	CoreHeader        = "core-header"
	HideSelectors     = "hide-selectors"
	TestAction        = "test-action"
	CoreFooter        = "core-footer"
	EnvironmentSwitch = "environment-switch"
	Preamble          = "preamble"
	Instructions      = "instructions"
	ClosingRules      = "closing-rules"
)

// Placeholders substituted into the core template.
const (
	PlaceholderDescription  = "test_description"
	PlaceholderURL          = "test_url"
	PlaceholderSelector     = "test_selector"
	PlaceholderHideSelector = "test_hide_selector"
	PlaceholderAction       = "test_action"
	PlaceholderTags         = "test_tags"
	PlaceholderName         = "test_name"

	// ActionDescription is the action fragment's comment text; an example
	// replaces it as a whole with the row's action.
	ActionDescription = PlaceholderAction + " description"
)

// Fragment is a named block of fixed output text.
type Fragment struct {
	Name    string
	Version string
	Text    string
}

// registry is populated once at init and only read afterwards.
var registry = map[string]Fragment{}

func register(name, text string) {
	registry[name] = Fragment{Name: name, Version: FragmentVersion, Text: text}
}

func init() {
	register(ModuleImport, `import test, { expect } from "@playwright/test";
`)

	register(CoreHeader, `
test.describe('test_description - Visual testing', { tag: test_tags }, () => {
	test('test_name', async ({ page }) => {
		const url = "test_url";
		await page.goto(url);
`)

	register(HideSelectors, `
		for (const selector of [test_hide_selector]) {
			await page.addStyleTag({
				content: `+"`${selector} { display: none !important; }`"+`
			});
		}
`)

	register(TestAction, `
		// test_action description
		// your code here
`)

	register(CoreFooter, `
		const locator = page.locator("test_selector");
		await locator.scrollIntoViewIfNeeded();
		expect(await locator.screenshot()).toMatchSnapshot('test_name.png');
	});
});
`)

	register(EnvironmentSwitch, `
export function currentEnvironment(): string {
	return process.env.TEST_ENV || process.env.NODE_ENV || DEFAULT_ENVIRONMENT;
}

export function switchEnvironment(env: string = currentEnvironment()): EnvConfig {
	if (!/^[a-zA-Z0-9-]+$/.test(env)) {
		throw new Error(`+"`Invalid environment name: ${env}. Environment names must be alphanumeric and can contain hyphens.`"+`);
	}
	const config = ENVIRONMENTS[env];
	if (!config) {
		throw new Error(`+"`Unknown environment: ${env}. Known environments: ${Object.keys(ENVIRONMENTS).join(\", \")}`"+`);
	}
	return config;
}
`)

	register(Preamble, `# Visual Test Generation

I'll analyze the provided CSV data and provide guidance for generating visual testing scripts.

CSV data received:
`)

	register(Instructions, `## Step-by-step instructions

### Phase 1: Configuration validation
- Step 1: Find the playwright.config.ts files in the project.
- Step 2: Check that snapshotDir is set to "./screenshots" in the expect configuration.
- Step 3: If snapshotDir is missing or different, add it:
  `+"```"+`typescript
  expect: {
    timeout: 30000,
    toMatchSnapshot: {
      snapshotDir: "./screenshots"
    }
  }
  `+"```"+`
- Step 4: Only check snapshotDir. Do not modify anything else in the config files.

### Phase 2: File creation
- Step 5: Use the file_name column to name the generated files.
- Step 6: Create every generated test file in the ./tests/ui folder.
- Step 7: Rows sharing a file_name belong to the same test file.
- Step 8: Fill each file using the core test script template below.
- Step 9: Do not overwrite existing test files.

### Phase 3: Project layout
- Step 10: Put page object classes and locators in ./pages/ui/.
- Step 11: Put test data and constants in ./data/ui/.
- Step 12: Put helpers, selectors and test actions in grouped files under ./utils/ui/.
- Step 13: Keep data files and page object classes out of .spec.ts files.

### Phase 4: Generation
- Step 14: Each row has its own test_hide selectors. Never merge hide selectors between components.
- Step 15: Replace each test_action description comment with code that performs the described action.
- Step 16: Run the test file to check that it works.

### Phase 5: Refactoring
- Group related tests in the same describe block.
- Extract shared selectors and helpers into ./utils/ui/.
- Follow the project's existing code style.
`)

	register(ClosingRules, `## Rules to follow
1. Never deviate from the template structure.
2. Always use the exact import statement.
3. Always use the exact test.describe and test structure.
4. Always use the exact page.goto pattern.
5. Always use the exact locator and screenshot pattern.
6. Always use the exact expect().toMatchSnapshot pattern.
7. Always keep test_hide selectors specific to their component.
8. Always keep data files and page object classes separate from .spec.ts files.
`)
}

// Get returns the registered fragment with the given name.
func Get(name string) (Fragment, bool) {
	f, ok := registry[name]
	return f, ok
}

// Text returns the text of a registered fragment, or "" if it is unknown.
func Text(name string) string {
	return registry[name].Text
}

// FragmentNames returns the registered fragment names in sorted order.
func FragmentNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CoreTemplate assembles the single-test script: import, header, the optional
// hide and action fragments in that order, then the footer.
func CoreTemplate(withHide, withAction bool) string {
	var b strings.Builder
	b.WriteString(Text(ModuleImport))
	b.WriteString(Text(CoreHeader))
	if withHide {
		b.WriteString(Text(HideSelectors))
	}
	if withAction {
		b.WriteString(Text(TestAction))
	}
	b.WriteString(Text(CoreFooter))
	return b.String()
}

// Placeholders returns the placeholders present in the core template built
// with the given options, in the order they are documented.
func Placeholders(withHide, withAction bool) []string {
	out := []string{PlaceholderDescription, PlaceholderTags, PlaceholderName, PlaceholderURL}
	if withHide {
		out = append(out, PlaceholderHideSelector)
	}
	if withAction {
		out = append(out, PlaceholderAction)
	}
	return append(out, PlaceholderSelector)
}

// Substitute replaces every placeholder in text with its value from values.
// Longer placeholders are matched before shorter ones that prefix them.
func Substitute(text string, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, values[k])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
