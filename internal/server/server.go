package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fjglira/visualtestgen/internal/domain"
	"github.com/fjglira/visualtestgen/internal/generator"
)

// Tool names.
const (
	ToolGenerate      = "generateVisualTests"
	ToolGenerateAlias = "create_playwright_visual_tests"
	ToolListTools     = "list_tools"
	ToolListCommands  = "list_commands"
)

// Info identifies the server in the initialize handshake.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Server dispatches tool invocations to the generator.
type Server struct {
	info     Info
	registry ToolRegistry
	gen      generator.Generator
	log      *logrus.Logger
}

// New creates a Server with the generate, list_tools and list_commands tools registered.
func New(info Info, gen generator.Generator, log *logrus.Logger) *Server {
	s := &Server{
		info:     info,
		registry: NewToolRegistry(),
		gen:      gen,
		log:      log,
	}
	s.registry.Register(Tool{
		Name:    ToolGenerate,
		Aliases: []string{ToolGenerateAlias},
		Description: "Generate visual testing script guidance, page objects, test data and environment " +
			"configuration from CSV test case data (file_name, test_url, test_description, test_selector, " +
			"test_hide, test_action, test_env, test_selector_text columns).",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"csvData": map[string]any{
					"type":        "string",
					"description": "CSV content with a header line followed by one row per visual test",
				},
				"includeLocators": map[string]any{
					"type":        "boolean",
					"description": "Emit one page-object module per file_name group",
				},
				"includeTestData": map[string]any{
					"type":        "boolean",
					"description": "Emit one test-data module per file_name group",
				},
				"representative": map[string]any{
					"type":        "string",
					"enum":        []string{"first", "all", "none"},
					"description": "Rows used to render filled-in examples of the core template",
				},
			},
			"required": []string{"csvData"},
		},
		Handler: s.generate,
	})
	s.registry.Register(Tool{
		Name:        ToolListTools,
		Description: "List the tools available in this server",
		InputSchema: emptySchema(),
		Handler:     s.listTools,
	})
	s.registry.Register(Tool{
		Name:        ToolListCommands,
		Description: "List Playwright commands useful with the generated visual test scripts",
		InputSchema: emptySchema(),
		Handler:     listCommands,
	})
	return s
}

func emptySchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

// Tools returns the registered tools.
func (s *Server) Tools() []Tool {
	return s.registry.List()
}

// Invoke runs the named tool with args.
func (s *Server) Invoke(ctx context.Context, name string, args map[string]any) (*Result, error) {
	tool, ok := s.registry.Lookup(name)
	if !ok {
		return nil, domain.NewErrorWithSuggestion("invoke", "", 0,
			fmt.Sprintf("tool %q is not registered", name),
			"call list_tools to see the available tools",
			ErrUnknownTool)
	}
	if args == nil {
		args = map[string]any{}
	}
	return tool.Handler(ctx, args)
}

func (s *Server) generate(ctx context.Context, args map[string]any) (*Result, error) {
	id := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"invocation": id, "tool": ToolGenerate})

	csv, present, err := stringArg(args, "csvData")
	if err != nil {
		return nil, domain.NewError("invoke", "", 0, "invalid arguments", errors.Join(domain.ErrMalformedInput, err))
	}
	if !present || csv == "" {
		log.Warn("Rejected invocation without csvData")
		return nil, domain.MissingArgument(ToolGenerate, "csvData")
	}

	req := generator.Request{ID: id, CSV: csv}
	if req.Locators, err = boolArg(args, "includeLocators"); err != nil {
		return nil, domain.NewError("invoke", "", 0, "invalid arguments", errors.Join(domain.ErrMalformedInput, err))
	}
	if req.TestData, err = boolArg(args, "includeTestData"); err != nil {
		return nil, domain.NewError("invoke", "", 0, "invalid arguments", errors.Join(domain.ErrMalformedInput, err))
	}
	if req.Representative, _, err = stringArg(args, "representative"); err != nil {
		return nil, domain.NewError("invoke", "", 0, "invalid arguments", errors.Join(domain.ErrMalformedInput, err))
	}

	log.Debugf("Generating from %d byte(s) of CSV", len(csv))
	artifact, err := s.gen.Generate(ctx, req)
	if err != nil {
		log.WithError(err).Warn("Generation failed")
		return nil, err
	}
	return TextResult(artifact.Text), nil
}

func (s *Server) listTools(context.Context, map[string]any) (*Result, error) {
	var b strings.Builder
	b.WriteString("## Available tools\n\n")
	for i, t := range s.registry.List() {
		fmt.Fprintf(&b, "- Tool %d: `%s`", i+1, t.Name)
		if len(t.Aliases) > 0 {
			fmt.Fprintf(&b, " (also `%s`)", strings.Join(t.Aliases, "`, `"))
		}
		fmt.Fprintf(&b, " - %s\n", t.Description)
	}
	return TextResult(b.String()), nil
}

const commandList = "## Available commands\n\n" +
	"- `npx playwright test tests/ui/pdp.spec.ts --update-snapshots` - Update snapshots for one test file\n" +
	"- `npx playwright test tests/ui/pdp.spec.ts --grep \"FullPage\" --update-snapshots` - Update snapshots for one test\n" +
	"- `npx playwright test --grep \"@visual-regression-tag\" --update-snapshots` - Update snapshots for all visual tests\n" +
	"- `npx playwright test --grep \"@fullpage-tag\"` - Run only full page visual tests\n" +
	"- `npx playwright test --grep \"@section-tag\"` - Run only section visual tests\n" +
	"- `TEST_ENV=int npx playwright test tests/ui/pdp.spec.ts --update-snapshots` - Update snapshots for one environment\n" +
	"- `TEST_ENV=int npx playwright test --grep \"@visual-regression-tag\" --update-snapshots` - Update all visual snapshots for one environment\n"

func listCommands(context.Context, map[string]any) (*Result, error) {
	return TextResult(commandList), nil
}
