package telegram

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "mat-bot/internal/common/errors"
)

const updateSchemaJSON = `{
	"type": "object",
	"required": ["update_id"],
	"properties": {
		"update_id": {"type": "integer"},
		"message": {
			"type": "object",
			"required": ["chat"],
			"properties": {
				"chat": {
					"type": "object",
					"required": ["id"],
					"properties": {
						"id": {"type": "integer"}
					}
				},
				"text": {"type": "string"}
			}
		}
	}
}`

var updateSchema = func() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(updateSchemaJSON))
	if err != nil {
		panic("telegram: invalid update schema: " + err.Error())
	}
	return schema
}()

// ValidateUpdate checks a raw webhook body against the update schema.
// Malformed JSON and shape violations both come back as payload errors
// so the webhook can drop the update without failing the request.
func ValidateUpdate(body []byte) error {
	result, err := updateSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apperrors.NewPayloadInvalidError(err.Error())
	}
	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			details[i] = e.String()
		}
		return apperrors.NewPayloadInvalidError(strings.Join(details, "; "))
	}
	return nil
}
