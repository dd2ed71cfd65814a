package template

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/fjglira/visualtestgen/internal/domain"
)

// Template names.
const (
	EnvironmentTable = "environment_table"
	LocatorModule    = "locator_module"
	DataModule       = "data_module"
)

//go:embed templates/*.tmpl
var embedded embed.FS

// TemplateEngine renders the generated TypeScript modules.
type TemplateEngine interface {
	RenderEnvironment(entries []domain.EnvironmentEntry) (string, error)
	RenderLocatorModule(group domain.LocatorGroup, withTestData bool) (string, error)
	RenderDataModule(group domain.LocatorGroup, headers []string) (string, error)
	ListTemplates() []string
}

// environmentData is passed to the environment_table template.
type environmentData struct {
	Version      string
	Default      string
	Environments []domain.EnvironmentEntry
}

// locatorData is passed to the locator_module template.
type locatorData struct {
	Version      string
	Group        domain.LocatorGroup
	Stem         string
	WithTestData bool
}

// dataModuleData is passed to the data_module template.
type dataModuleData struct {
	Version string
	Group   domain.LocatorGroup
	Stem    string
	Columns []string
	Extra   []string
}

// DefaultEngine implements TemplateEngine. It is immutable after construction
// and safe for concurrent use.
type DefaultEngine struct {
	templates   map[string]*template.Template
	templateDir string
}

// NewEngine creates a template engine from the embedded templates. When
// templateDir is non-empty, any .tmpl file in it replaces the embedded
// template of the same name.
func NewEngine(templateDir string) (*DefaultEngine, error) {
	engine := &DefaultEngine{
		templates:   make(map[string]*template.Template),
		templateDir: templateDir,
	}

	if err := engine.loadEmbedded(); err != nil {
		return nil, err
	}
	if templateDir != "" {
		if err := engine.loadTemplates(); err != nil {
			return nil, err
		}
	}

	return engine, nil
}

func (e *DefaultEngine) loadEmbedded() error {
	entries, err := fs.ReadDir(embedded, "templates")
	if err != nil {
		return domain.NewError("template", "templates", 0, "failed to read embedded templates", err)
	}
	for _, entry := range entries {
		path := "templates/" + entry.Name()
		content, err := embedded.ReadFile(path)
		if err != nil {
			return domain.NewError("template", path, 0, "failed to read embedded template", err)
		}
		if err := e.add(path, entry.Name(), content); err != nil {
			return err
		}
	}
	return nil
}

// loadTemplates reads all .tmpl files from the template directory.
func (e *DefaultEngine) loadTemplates() error {
	entries, err := os.ReadDir(e.templateDir)
	if err != nil {
		return domain.NewError("template", e.templateDir, 0, "failed to read template directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tmpl") {
			continue
		}

		path := filepath.Join(e.templateDir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return domain.NewError("template", path, 0, "failed to read template file", err)
		}
		if err := e.add(path, entry.Name(), content); err != nil {
			return err
		}
	}

	return nil
}

func (e *DefaultEngine) add(path, fileName string, content []byte) error {
	name := strings.TrimSuffix(fileName, ".tmpl")
	tmpl, err := template.New(name).Funcs(CustomFuncMap()).Parse(string(content))
	if err != nil {
		return domain.NewError("template", path, 0, "failed to parse template", err)
	}
	e.templates[name] = tmpl
	return nil
}

// RenderEnvironment renders the environment configuration module. The first
// entry becomes the default environment.
func (e *DefaultEngine) RenderEnvironment(entries []domain.EnvironmentEntry) (string, error) {
	data := environmentData{Version: FragmentVersion, Environments: entries}
	if len(entries) > 0 {
		data.Default = entries[0].Name
	}
	return e.execute(EnvironmentTable, data)
}

// RenderLocatorModule renders the page-object class for one group.
func (e *DefaultEngine) RenderLocatorModule(group domain.LocatorGroup, withTestData bool) (string, error) {
	return e.execute(LocatorModule, locatorData{
		Version:      FragmentVersion,
		Group:        group,
		Stem:         GroupStem(group),
		WithTestData: withTestData,
	})
}

// RenderDataModule renders the test-data module for one group. Every
// recognized column becomes a TestData field; other headers are kept as
// optional extra fields.
func (e *DefaultEngine) RenderDataModule(group domain.LocatorGroup, headers []string) (string, error) {
	known := make(map[string]bool, len(domain.RecognizedColumns))
	for _, c := range domain.RecognizedColumns {
		known[c] = true
	}
	var extra []string
	for _, h := range headers {
		if !known[h] && isTSIdentifier(h) {
			extra = append(extra, h)
		}
	}
	return e.execute(DataModule, dataModuleData{
		Version: FragmentVersion,
		Group:   group,
		Stem:    GroupStem(group),
		Columns: domain.RecognizedColumns,
		Extra:   extra,
	})
}

func (e *DefaultEngine) execute(name string, data any) (string, error) {
	tmpl, ok := e.templates[name]
	if !ok {
		return "", domain.NewError("template", "", 0,
			fmt.Sprintf("template %q not found (available: %s)", name, strings.Join(e.ListTemplates(), ", ")), nil)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", domain.NewError("template", name, 0, "failed to execute template", err)
	}
	return buf.String(), nil
}

// ListTemplates returns the names of all loaded templates in sorted order.
func (e *DefaultEngine) ListTemplates() []string {
	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
