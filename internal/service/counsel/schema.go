package counsel

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/heartkeylab/heartkey/backend/internal/model/chat"
)

// Reflected JSON schemas for the two structured payloads. The OpenAI
// provider sends them as strict response formats; the Ark and Gemini
// providers embed the rendered JSON in the system prompt.

var (
	turnSchema  = generateSchema[chat.TurnResult]()
	storySchema = generateSchema[chat.HealingStory]()

	turnSchemaJSON  = renderSchema(turnSchema)
	storySchemaJSON = renderSchema(storySchema)
)

func generateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	ensureStrictObject(m)
	return m
}

// ensureStrictObject makes every object level closed and fully required,
// which strict structured-output modes demand.
func ensureStrictObject(schema map[string]interface{}) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]interface{}); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
			for _, prop := range props {
				if pm, ok := prop.(map[string]interface{}); ok {
					ensureStrictObject(pm)
				}
			}
		}
	}
	if items, ok := schema["items"].(map[string]interface{}); ok {
		ensureStrictObject(items)
	}
}

func renderSchema(schema map[string]interface{}) string {
	b, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return string(b)
}
