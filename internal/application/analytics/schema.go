package analytics

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// QuerySchema is the JSON schema of a serialized Query.  It checks shape
// only; value ranges are enforced by Validate so that each violation keeps
// its own error code.
const QuerySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["groups"],
  "additionalProperties": false,
  "properties": {
    "groups": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["kind", "entities"],
        "additionalProperties": false,
        "properties": {
          "kind": {"enum": ["entity", "merge", "competitors"]},
          "label": {"type": "string"},
          "entities": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "percent_threshold": {"type": "number"},
    "rating_threshold": {"type": "number"},
    "detail": {
      "type": "object",
      "required": ["topic"],
      "additionalProperties": false,
      "properties": {
        "entity": {"type": "string"},
        "from": {"type": "string"},
        "to": {"type": "string"},
        "topic": {"type": "string"},
        "search": {"type": "string"},
        "rating_bound": {
          "type": "object",
          "required": ["mode", "upper"],
          "additionalProperties": false,
          "properties": {
            "mode": {"enum": ["below", "between"]},
            "lower": {"type": "integer"},
            "upper": {"type": "integer"}
          }
        }
      }
    }
  }
}`

var querySchema = mustCompileSchema(QuerySchema)

func mustCompileSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("analytics: invalid query schema: " + err.Error())
	}
	return s
}

// DecodeQuery checks data against QuerySchema and decodes it.  Schema
// violations are reported as ErrCodeQuerySchemaViolation with one detail
// line per violation.
func DecodeQuery(data []byte) (Query, error) {
	var q Query
	res, err := querySchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return q, errors.Wrap(err, errors.ErrCodeQuerySchemaViolation, "query is not valid JSON")
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return q, errors.New(errors.ErrCodeQuerySchemaViolation, "query does not match schema").
			WithDetail(strings.Join(msgs, "; "))
	}
	if err := json.Unmarshal(data, &q); err != nil {
		return q, errors.Wrap(err, errors.ErrCodeQuerySchemaViolation, "query could not be decoded")
	}
	return q, nil
}

//Personal.AI order the ending
