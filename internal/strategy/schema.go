package strategy

// The stakeholder extraction schema, in the three shapes the strategies
// need: JSON-schema properties for tool/function calling, and an inline
// example for prompt-guided strategies.

// ToolName is the function/tool name providers are forced to call.
const ToolName = "record_stakeholders"

// ToolDescription explains the tool to the model.
const ToolDescription = "Record every stakeholder identified in the document, with role, organization and a confidence score."

// stakeholderItemSchema describes one stakeholder object.
var stakeholderItemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{
			"type":        "string",
			"description": "Full name of the stakeholder",
		},
		"stakeholder_type": map[string]any{
			"type": "string",
			"enum": []string{"INDIVIDUAL", "ORGANIZATION", "COMMITTEE", "GOVERNMENT", "UNKNOWN"},
		},
		"role": map[string]any{
			"type":        "string",
			"description": "Role or responsibility in the document's context",
		},
		"organization": map[string]any{
			"type":        "string",
			"description": "Affiliated organization, if any",
		},
		"contact": map[string]any{
			"type":        "string",
			"description": "Contact details if stated in the document",
		},
		"confidence_score": map[string]any{
			"type":    "number",
			"minimum": 0,
			"maximum": 1,
		},
		"source_excerpt": map[string]any{
			"type":        "string",
			"description": "Short quote from the document supporting this stakeholder",
		},
	},
	"required": []string{"name", "stakeholder_type", "confidence_score"},
}

// SchemaProperties is the top-level properties map for tool-input /
// function-parameter schemas.
func SchemaProperties() map[string]any {
	return map[string]any{
		"stakeholders": map[string]any{
			"type":  "array",
			"items": stakeholderItemSchema,
		},
		"extraction_confidence": map[string]any{
			"type":    "number",
			"minimum": 0,
			"maximum": 1,
		},
	}
}

// SchemaRequired lists the required top-level keys.
func SchemaRequired() []string {
	return []string{"stakeholders", "extraction_confidence"}
}

// schemaExample is the inline JSON shape shown to prompt-guided models.
const schemaExample = `{
  "stakeholders": [
    {
      "name": "Stakeholder Name",
      "stakeholder_type": "INDIVIDUAL",
      "role": "Their role or responsibility",
      "organization": "Affiliated organization",
      "contact": "email or phone if stated",
      "confidence_score": 0.9,
      "source_excerpt": "short supporting quote"
    }
  ],
  "extraction_confidence": 0.8
}`
