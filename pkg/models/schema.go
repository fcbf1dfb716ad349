package models

// SchemaProvider is implemented by components that expose a JSON Schema for
// their configuration.
type SchemaProvider interface {
	GetSchema() *JSONSchema
}

// JSONSchema represents a JSON Schema for configuration validation.
type JSONSchema struct {
	Type        string               `json:"type"`
	Properties  map[string]*Property `json:"properties,omitempty"`
	Required    []string             `json:"required,omitempty"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
}

// Property represents a JSON Schema property.
type Property struct {
	Type        string               `json:"type"`
	Description string               `json:"description,omitempty"`
	Enum        []any                `json:"enum,omitempty"`
	Default     any                  `json:"default,omitempty"`
	Format      string               `json:"format,omitempty"`
	MinLength   *int                 `json:"minLength,omitempty"`
	MaxLength   *int                 `json:"maxLength,omitempty"`
	Minimum     *float64             `json:"minimum,omitempty"`
	Pattern     string               `json:"pattern,omitempty"`
	Items       *Property            `json:"items,omitempty"`
	Properties  map[string]*Property `json:"properties,omitempty"`
	Required    []string             `json:"required,omitempty"`
}

// RegisteredComponent describes a node kind registered in the catalog.
type RegisteredComponent struct {
	Kind        NodeKind    `json:"kind"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Schema      *JSONSchema `json:"schema"`
}

// ConfigSchema returns the JSON Schema for a kind's required configuration.
// Absence of a required field here is a readiness defect, not a structural
// error: the schema is evaluated on demand, never on mutation.
func ConfigSchema(kind NodeKind) *JSONSchema {
	one := 1
	zero := 0.0

	switch kind {
	case NodeKindTrigger:
		return &JSONSchema{
			Type:        "object",
			Title:       "Keyword Trigger",
			Description: "Starts the workflow when an incoming message matches a keyword",
			Properties: map[string]*Property{
				"keywords": {
					Type:        "array",
					Description: "Keywords matched against incoming message text",
					Items:       &Property{Type: "string"},
				},
			},
		}
	case NodeKindCondition:
		return &JSONSchema{
			Type:        "object",
			Title:       "Condition",
			Description: "Branches the workflow on a text comparison",
			Required:    []string{"conditionType", "conditionValue"},
			Properties: map[string]*Property{
				"conditionType": {
					Type: "string",
					Enum: []any{
						string(ConditionTypeContains),
						string(ConditionTypeEquals),
						string(ConditionTypeStartsWith),
						string(ConditionTypeEndsWith),
					},
				},
				"conditionValue": {
					Type:      "string",
					MinLength: &one,
				},
			},
		}
	case NodeKindDelay:
		return &JSONSchema{
			Type:        "object",
			Title:       "Delay",
			Description: "Waits a number of minutes before continuing",
			Required:    []string{"duration"},
			Properties: map[string]*Property{
				"duration": {
					Type:        "integer",
					Description: "Minutes to wait",
					Minimum:     &zero,
				},
			},
		}
	case NodeKindAction:
		return &JSONSchema{
			Type:        "object",
			Title:       "Action",
			Description: "Performs a conversational action",
			Required:    []string{"actionType"},
			Properties: map[string]*Property{
				"actionType": {
					Type: "string",
					Enum: []any{
						string(ActionTypeSendMessage),
						string(ActionTypeSendButton),
						string(ActionTypeSendMedia),
						string(ActionTypeSendVideo),
						string(ActionTypeSendList),
						string(ActionTypeAssignConversation),
					},
				},
			},
		}
	case NodeKindWebhook:
		return &JSONSchema{
			Type:        "object",
			Title:       "Webhook",
			Description: "Calls an external URL",
			Required:    []string{"webhookUrl", "webhookMethod"},
			Properties: map[string]*Property{
				"webhookUrl": {
					Type:    "string",
					Format:  "uri",
					Pattern: "^https?://",
				},
				"webhookMethod": {
					Type: "string",
					Enum: []any{
						string(WebhookMethodGet),
						string(WebhookMethodPost),
						string(WebhookMethodPut),
						string(WebhookMethodDelete),
					},
				},
			},
		}
	default:
		return nil
	}
}
