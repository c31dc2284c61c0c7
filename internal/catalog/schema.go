package catalog

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Catalog documents declare their kind explicitly; each kind has its own
// schema. Unknown extra fields are tolerated so catalogs can carry editorial
// metadata this engine does not read.
const (
	courseSchema = `{
		"type": "object",
		"required": ["kind", "id", "title"],
		"properties": {
			"kind": {"const": "course"},
			"id": {"type": "string", "minLength": 1},
			"title": {"type": "string", "minLength": 1},
			"discipline_ids": {"type": "array", "items": {"type": "string"}},
			"lesson_ids": {"type": "array", "items": {"type": "string"}}
		}
	}`

	disciplineSchema = `{
		"type": "object",
		"required": ["kind", "id", "title"],
		"properties": {
			"kind": {"const": "discipline"},
			"id": {"type": "string", "minLength": 1},
			"title": {"type": "string", "minLength": 1},
			"lesson_ids": {"type": "array", "items": {"type": "string"}}
		}
	}`

	lessonSchema = `{
		"type": "object",
		"required": ["kind", "id"],
		"properties": {
			"kind": {"const": "lesson"},
			"id": {"type": "string", "minLength": 1},
			"topic_ids": {"type": "array", "items": {"type": "string"}},
			"section_ids": {"type": "array", "items": {"type": "string"}}
		}
	}`

	topicSchema = `{
		"type": "object",
		"required": ["kind", "id", "name"],
		"properties": {
			"kind": {"const": "topic"},
			"id": {"type": "string", "minLength": 1},
			"name": {"type": "string", "minLength": 1},
			"question_filter": {"type": "string"},
			"difficulty": {"type": "string"},
			"weight": {"type": "number", "minimum": 0}
		}
	}`
)

type documentSchemas struct {
	course     *gojsonschema.Schema
	discipline *gojsonschema.Schema
	lesson     *gojsonschema.Schema
	topic      *gojsonschema.Schema
}

func compileSchemas() (*documentSchemas, error) {
	compile := func(name, src string) (*gojsonschema.Schema, error) {
		s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			return nil, fmt.Errorf("compiling %s schema: %w", name, err)
		}
		return s, nil
	}

	var (
		ds  documentSchemas
		err error
	)
	if ds.course, err = compile("course", courseSchema); err != nil {
		return nil, err
	}
	if ds.discipline, err = compile("discipline", disciplineSchema); err != nil {
		return nil, err
	}
	if ds.lesson, err = compile("lesson", lessonSchema); err != nil {
		return nil, err
	}
	if ds.topic, err = compile("topic", topicSchema); err != nil {
		return nil, err
	}
	return &ds, nil
}

func (ds *documentSchemas) forKind(kind string) *gojsonschema.Schema {
	switch kind {
	case "course":
		return ds.course
	case "discipline":
		return ds.discipline
	case "lesson":
		return ds.lesson
	case "topic":
		return ds.topic
	default:
		return nil
	}
}

func validateDocument(schema *gojsonschema.Schema, doc map[string]any) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return err
	}
	if !result.Valid() {
		errs := result.Errors()
		if len(errs) > 0 {
			return fmt.Errorf("invalid document: %s", errs[0].String())
		}
		return fmt.Errorf("invalid document")
	}
	return nil
}
