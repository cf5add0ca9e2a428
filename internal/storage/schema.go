package storage

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const courseSchemaJSON = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["title", "subtopics"],
    "properties": {
      "title": {"type": "string"},
      "subtopics": {
        "type": "array",
        "minItems": 1,
        "items": {
          "type": "object",
          "required": ["title", "chapters"],
          "properties": {
            "title": {"type": "string"},
            "chapters": {
              "type": "array",
              "minItems": 1,
              "items": {
                "type": "object",
                "required": ["title"],
                "properties": {"title": {"type": "string"}}
              }
            }
          }
        }
      }
    }
  }
}`

const progressSchemaJSON = `{
  "type": "object",
  "patternProperties": {
    "^(0|[1-9][0-9]*)-(0|[1-9][0-9]*)-(0|[1-9][0-9]*)$": {"type": "boolean"}
  },
  "additionalProperties": false
}`

var (
	courseSchema   = mustSchema(courseSchemaJSON)
	progressSchema = mustSchema(progressSchemaJSON)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("storage: compile schema: %v", err))
	}
	return s
}

// validate checks doc against schema and folds every violation into one error.
func validate(schema *gojsonschema.Schema, doc string) error {
	res, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
