// Package extractor turns the fenced modules of a composed artifact back
// into files.
package extractor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fjglira/visualtestgen/internal/domain"
	"github.com/fjglira/visualtestgen/internal/parser"
)

// PathAttribute is the fence attribute naming a module's target file.
const PathAttribute = "path"

// File is one module extracted from an artifact.
type File struct {
	Path    string // slash-separated, relative to the output directory
	Content string
	Line    int    // artifact line of the first content line
	Section string // heading the module appeared under
}

// Extractor reads artifacts and writes their modules.
type Extractor struct {
	reader *parser.ArtifactReader
}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{reader: parser.NewArtifactReader()}
}

// Extract returns the blocks in language lang that carry a path attribute.
// An empty lang accepts every language. A later block with the same path
// replaces an earlier one.
func (e *Extractor) Extract(artifact []byte, lang string) ([]File, error) {
	doc, err := e.reader.Read(artifact)
	if err != nil {
		return nil, err
	}

	var (
		files []File
		index = make(map[string]int)
	)
	for _, b := range parser.BlocksByLanguage(doc, lang) {
		path, ok := b.Attributes[PathAttribute]
		if !ok {
			continue
		}
		if err := ValidatePath(path); err != nil {
			return nil, domain.NewError("extract", path, b.LineNumber, err.Error(), nil)
		}
		f := File{Path: filepath.ToSlash(filepath.Clean(path)), Content: b.Content + "\n", Line: b.LineNumber, Section: b.Context}
		if i, seen := index[f.Path]; seen {
			files[i] = f
			continue
		}
		index[f.Path] = len(files)
		files = append(files, f)
	}
	return files, nil
}

// Write writes files under dir, creating directories as needed, and returns
// the written paths.
func (e *Extractor) Write(dir string, files []File) ([]string, error) {
	var written []string
	for _, f := range files {
		if err := ValidatePath(f.Path); err != nil {
			return written, domain.NewError("write", f.Path, f.Line, err.Error(), nil)
		}
		target := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, domain.NewError("write", target, 0, "failed to create directory", err)
		}
		if err := os.WriteFile(target, []byte(f.Content), 0o644); err != nil {
			return written, domain.NewErrorWithSuggestion("write", target, 0,
				"failed to write module",
				"check disk space and write permissions for the output directory",
				err)
		}
		written = append(written, target)
	}
	return written, nil
}

// Summary describes files for a dry run, one line per file.
func Summary(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = fmt.Sprintf("%s (line %d, %s)", f.Path, f.Line, f.Section)
	}
	return out
}
