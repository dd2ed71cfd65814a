package generator

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fjglira/visualtestgen/internal/composer"
	"github.com/fjglira/visualtestgen/internal/config"
	"github.com/fjglira/visualtestgen/internal/detector"
	"github.com/fjglira/visualtestgen/internal/domain"
	"github.com/fjglira/visualtestgen/internal/environment"
	"github.com/fjglira/visualtestgen/internal/locator"
	"github.com/fjglira/visualtestgen/internal/naming"
	"github.com/fjglira/visualtestgen/internal/parser"
	tmpl "github.com/fjglira/visualtestgen/internal/template"
)

// Request is one generation invocation. Nil option pointers fall back to the
// configuration.
type Request struct {
	ID             string // invocation id for logs, generated when empty
	CSV            string
	Locators       *bool
	TestData       *bool
	Representative string
}

// Generator is the top-level orchestrator.
type Generator interface {
	Generate(ctx context.Context, req Request) (*domain.Artifact, error)
}

// DefaultGenerator implements Generator by wiring all components together.
// It keeps no per-invocation state and is safe for concurrent use.
type DefaultGenerator struct {
	cfg      *config.Config
	registry parser.ParserRegistry
	composer *composer.Composer
	log      *logrus.Logger
}

// NewGenerator creates a new DefaultGenerator with all dependencies.
func NewGenerator(
	cfg *config.Config,
	r parser.ParserRegistry,
	e tmpl.TemplateEngine,
	log *logrus.Logger,
) *DefaultGenerator {
	return &DefaultGenerator{
		cfg:      cfg,
		registry: r,
		composer: composer.New(e),
		log:      log,
	}
}

// New builds a DefaultGenerator from configuration alone, creating the
// parser registry and template engine it describes.
func New(cfg *config.Config, log *logrus.Logger) (*DefaultGenerator, error) {
	engine, err := tmpl.NewEngine(cfg.Templates.Directory)
	if err != nil {
		return nil, err
	}
	return NewGenerator(cfg, parser.NewDefaultRegistry(cfg.Input.DelimiterRune()), engine, log), nil
}

// Generate runs the full pipeline: parse → detect → environments → locators → compose.
func (g *DefaultGenerator) Generate(ctx context.Context, req Request) (*domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	log := g.log.WithField("invocation", req.ID)

	policy, err := composer.ParsePolicy(firstNonEmpty(req.Representative, g.cfg.Output.Representative))
	if err != nil {
		return nil, err
	}

	// Step 1: Parse
	p, err := g.registry.ParserFor(g.cfg.Input.Dialect)
	if err != nil {
		return nil, domain.NewError("parse", "", 0, "no parser available", err)
	}
	table, err := p.Parse(req.CSV)
	if err != nil {
		return nil, err
	}
	log.Debugf("Parsed %d row(s) with %d column(s) using the %s dialect", len(table.Rows), len(table.Headers), table.Dialect)

	warnings := append([]string(nil), table.Warnings...)
	for _, col := range []string{domain.ColumnFileName, domain.ColumnURL, domain.ColumnDescription, domain.ColumnSelector} {
		if !table.HasColumn(col) {
			warnings = append(warnings, "missing column "+col+", its values are treated as empty")
		}
	}

	// Step 2: Detect optional fragments once for the whole table
	flags := detector.Detect(table)
	log.WithFields(logrus.Fields{
		"hide":          flags.HasHideSelectors,
		"action":        flags.HasTestActions,
		"env":           flags.HasTestEnv,
		"selector_text": flags.HasSelectorText,
	}).Debug("Detected features")

	// Step 3: Environments
	envs, envWarnings := environment.Build(table, flags, environment.Options{
		ScreenshotRoot: g.cfg.Environments.ScreenshotRoot,
		TimeoutMs:      g.cfg.Environments.TimeoutMs,
	})
	warnings = append(warnings, envWarnings...)

	// Step 4: Locator groups
	groups := locator.Build(table)
	warnings = append(warnings, naming.Collisions(groups)...)

	// Step 5: Compose
	in := composer.Input{
		Raw:            req.CSV,
		Table:          table,
		Flags:          flags,
		Environments:   envs,
		Groups:         groups,
		Representative: policy,
		Locators:       enabled(req.Locators, g.cfg.Output.LocatorsEnabled()),
		TestData:       enabled(req.TestData, g.cfg.Output.TestDataEnabled()),
	}
	text, sections, err := g.composer.Compose(in)
	if err != nil {
		return nil, err
	}

	for _, w := range warnings {
		log.Warn(w)
	}
	log.Infof("Generated %d section(s) for %d group(s)", len(sections), len(groups))

	return &domain.Artifact{
		Text:         text,
		Flags:        flags,
		Sections:     sections,
		Environments: envs,
		Groups:       groups,
		Warnings:     warnings,
	}, nil
}

func enabled(override *bool, fallback bool) bool {
	if override != nil {
		return *override
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
