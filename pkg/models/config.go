package models

import (
	"encoding/json"
	"fmt"
)

// Config is the kind-specific configuration of a node. It is a tagged union
// keyed by the node's kind: the concrete type is always the one matching
// Kind(). A config with missing required fields is still well-formed; the
// readiness validator reports the gaps.
type Config interface {
	Kind() NodeKind
	Clone() Config
}

// DefaultConfig returns the empty configuration for a kind. Unknown kinds
// yield nil.
func DefaultConfig(kind NodeKind) Config {
	switch kind {
	case NodeKindTrigger:
		return &TriggerConfig{}
	case NodeKindCondition:
		return &ConditionConfig{}
	case NodeKindAction:
		return &ActionConfig{}
	case NodeKindDelay:
		return &DelayConfig{}
	case NodeKindWebhook:
		return &WebhookConfig{}
	default:
		return nil
	}
}

// UnmarshalConfig decodes raw JSON into the concrete config type for the
// given kind. Empty or null input yields the kind's default config.
func UnmarshalConfig(kind NodeKind, data []byte) (Config, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown node kind %q", kind)
	}

	config := DefaultConfig(kind)
	if len(data) == 0 || string(data) == "null" {
		return config, nil
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", kind, err)
	}

	return config, nil
}

// TriggerConfig activates the workflow when any keyword matches incoming
// message text. An empty keyword list is allowed while authoring.
type TriggerConfig struct {
	Keywords []string `json:"keywords,omitempty"`
}

func (c *TriggerConfig) Kind() NodeKind { return NodeKindTrigger }

func (c *TriggerConfig) Clone() Config {
	clone := *c
	clone.Keywords = append([]string(nil), c.Keywords...)

	return &clone
}

// ConditionType is the comparison operator of a condition node.
type ConditionType string

const (
	ConditionTypeContains   ConditionType = "contains"
	ConditionTypeEquals     ConditionType = "equals"
	ConditionTypeStartsWith ConditionType = "starts_with"
	ConditionTypeEndsWith   ConditionType = "ends_with"
)

// ConditionConfig compares incoming message text against a value. Condition
// nodes are the only kind with two logical outputs ("yes" / "no").
type ConditionConfig struct {
	ConditionType  ConditionType `json:"conditionType,omitempty"`
	ConditionValue string        `json:"conditionValue,omitempty"`
}

func (c *ConditionConfig) Kind() NodeKind { return NodeKindCondition }

func (c *ConditionConfig) Clone() Config {
	clone := *c

	return &clone
}

// DelayConfig pauses the automation for a number of minutes. Duration is a
// pointer so an unset value is distinguishable from a zero-minute delay.
type DelayConfig struct {
	Duration *int `json:"duration,omitempty"`
}

func (c *DelayConfig) Kind() NodeKind { return NodeKindDelay }

func (c *DelayConfig) Clone() Config {
	clone := *c
	if c.Duration != nil {
		duration := *c.Duration
		clone.Duration = &duration
	}

	return &clone
}

// ActionType selects which conversational action an action node performs.
type ActionType string

const (
	ActionTypeSendMessage        ActionType = "send_message"
	ActionTypeSendButton         ActionType = "send_button"
	ActionTypeSendMedia          ActionType = "send_media"
	ActionTypeSendVideo          ActionType = "send_video"
	ActionTypeSendList           ActionType = "send_list"
	ActionTypeAssignConversation ActionType = "assign_conversation"
)

// ButtonType is the interaction type of a single chat button.
type ButtonType string

const (
	ButtonTypeQuickReply  ButtonType = "QUICK_REPLY"
	ButtonTypeURL         ButtonType = "URL"
	ButtonTypePhoneNumber ButtonType = "PHONE_NUMBER"
)

// Button is one entry of a send_button action.
type Button struct {
	Type        ButtonType `json:"type"`
	Text        string     `json:"text"`
	ID          string     `json:"id,omitempty"`
	URL         string     `json:"url,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
}

// ListRow is a selectable row in a send_list section.
type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ListSection groups rows of a send_list menu.
type ListSection struct {
	Title string    `json:"title"`
	Rows  []ListRow `json:"rows"`
}

// ListMenu is the payload of a send_list action.
type ListMenu struct {
	Text       string        `json:"text,omitempty"`
	ButtonText string        `json:"buttonText,omitempty"`
	Sections   []ListSection `json:"sections,omitempty"`
}

// ActionConfig holds the sub-schema of every action type in one flat record;
// which fields are required depends on ActionType (see ConfigSchema and the
// readiness validator).
type ActionConfig struct {
	ActionType ActionType `json:"actionType,omitempty"`
	Message    string     `json:"message,omitempty"`
	TemplateID string     `json:"templateId,omitempty"`
	Buttons    []Button   `json:"buttons,omitempty"`
	MediaType  string     `json:"mediaType,omitempty"`
	MediaURL   string     `json:"mediaUrl,omitempty"`
	Caption    string     `json:"caption,omitempty"`
	List       *ListMenu  `json:"list,omitempty"`
	AssigneeID string     `json:"assigneeId,omitempty"`
}

func (c *ActionConfig) Kind() NodeKind { return NodeKindAction }

func (c *ActionConfig) Clone() Config {
	clone := *c
	clone.Buttons = append([]Button(nil), c.Buttons...)

	if c.List != nil {
		list := *c.List
		list.Sections = make([]ListSection, len(c.List.Sections))

		for i, section := range c.List.Sections {
			list.Sections[i] = section
			list.Sections[i].Rows = append([]ListRow(nil), section.Rows...)
		}

		clone.List = &list
	}

	return &clone
}

// WebhookMethod is the HTTP method of a webhook node.
type WebhookMethod string

const (
	WebhookMethodGet    WebhookMethod = "GET"
	WebhookMethodPost   WebhookMethod = "POST"
	WebhookMethodPut    WebhookMethod = "PUT"
	WebhookMethodDelete WebhookMethod = "DELETE"
)

// WebhookConfig calls an external URL when the node executes.
type WebhookConfig struct {
	WebhookURL    string        `json:"webhookUrl,omitempty"`
	WebhookMethod WebhookMethod `json:"webhookMethod,omitempty"`
}

func (c *WebhookConfig) Kind() NodeKind { return NodeKindWebhook }

func (c *WebhookConfig) Clone() Config {
	clone := *c

	return &clone
}
