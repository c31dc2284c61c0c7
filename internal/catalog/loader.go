package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader loads catalog content from YAML files on the filesystem into a
// MemoryCatalog. Each file holds one document with an explicit kind.
type Loader struct {
	rootDir string
	schemas *documentSchemas
	catalog *MemoryCatalog
}

// NewLoader creates a catalog loader and loads all content under rootDir.
func NewLoader(rootDir string) (*Loader, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	l := &Loader{
		rootDir: rootDir,
		schemas: schemas,
		catalog: NewMemoryCatalog(),
	}

	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	courses, disciplines, lessons, topics := l.catalog.Len()
	slog.Info("catalog loaded",
		"courses", courses,
		"disciplines", disciplines,
		"lessons", lessons,
		"topics", topics,
	)
	return l, nil
}

// Catalog returns the loaded in-memory catalog.
func (l *Loader) Catalog() *MemoryCatalog {
	return l.catalog
}

func (l *Loader) loadAll() error {
	return filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		return l.loadDocument(path)
	})
}

func (l *Loader) loadDocument(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		slog.Warn("skipping unparseable catalog file", "path", path, "error", err)
		return nil
	}

	kind, _ := raw["kind"].(string)
	schema := l.schemas.forKind(kind)
	if schema == nil {
		// Not a catalog document.
		return nil
	}

	if err := validateDocument(schema, raw); err != nil {
		slog.Warn("skipping invalid catalog document", "path", path, "kind", kind, "error", err)
		return nil
	}

	switch kind {
	case "course":
		var c Course
		if err := yaml.Unmarshal(data, &c); err != nil {
			return err
		}
		l.catalog.PutCourse(c)
	case "discipline":
		var d Discipline
		if err := yaml.Unmarshal(data, &d); err != nil {
			return err
		}
		l.catalog.PutDiscipline(d)
	case "lesson":
		var ls Lesson
		if err := yaml.Unmarshal(data, &ls); err != nil {
			return err
		}
		l.catalog.PutLesson(ls)
	case "topic":
		var t Topic
		if err := yaml.Unmarshal(data, &t); err != nil {
			return err
		}
		l.catalog.PutTopic(t)
	}

	return nil
}
