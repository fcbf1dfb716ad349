// Package readiness decides whether a graph document is structurally complete
// enough to hand to the execution engine. It runs on demand, never on
// mutation, and produces a structured report rather than a boolean: the
// activation UI blocks only on hard failures.
package readiness

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/chatflowhq/chatflow/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// Defect is a single readiness finding tied to a node and config field.
// Document-level findings carry an empty NodeID.
type Defect struct {
	NodeID string `json:"nodeId,omitempty"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// Report separates hard failures (block activation) from warnings
// (mid-construction states a user may still be working on).
type Report struct {
	Failures []Defect `json:"failures"`
	Warnings []Defect `json:"warnings"`
}

// Ready reports whether the document may be activated.
func (r *Report) Ready() bool {
	return len(r.Failures) == 0
}

func (r *Report) fail(nodeID, field, reason string) {
	r.Failures = append(r.Failures, Defect{NodeID: nodeID, Field: field, Reason: reason})
}

func (r *Report) warn(nodeID, field, reason string) {
	r.Warnings = append(r.Warnings, Defect{NodeID: nodeID, Field: field, Reason: reason})
}

// Validator checks documents against the per-kind config schemas plus the
// structural rules (trigger presence, reachability, condition branches).
type Validator struct {
	schemas map[models.NodeKind]*gojsonschema.Schema
}

// NewValidator compiles the config schema of every node kind.
func NewValidator() (*Validator, error) {
	schemas := make(map[models.NodeKind]*gojsonschema.Schema, len(models.NodeKinds()))

	for _, kind := range models.NodeKinds() {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(models.ConfigSchema(kind)))
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s config schema: %w", kind, err)
		}

		schemas[kind] = schema
	}

	return &Validator{schemas: schemas}, nil
}

// Check validates the document and returns the readiness report. The returned
// error covers only internal faults (a config that cannot be serialized),
// never a readiness defect.
func (v *Validator) Check(doc *models.GraphDocument) (*Report, error) {
	report := &Report{
		Failures: make([]Defect, 0),
		Warnings: make([]Defect, 0),
	}

	if len(doc.TriggerNodes()) == 0 {
		report.fail("", "nodes", "workflow has no trigger node, so it can never run")
	}

	for _, node := range doc.Nodes {
		if err := v.checkNodeConfig(node, report); err != nil {
			return nil, err
		}
	}

	v.checkEdgeIntegrity(doc, report)
	v.checkReachability(doc, report)
	v.checkConditionBranches(doc, report)

	return report, nil
}

// checkEdgeIntegrity fails on edges referencing absent nodes or repeating a
// (source, sourceHandle, target) key. The mutation API cannot produce such a
// graph, but a full document save replaces nodes and edges wholesale.
func (v *Validator) checkEdgeIntegrity(doc *models.GraphDocument, report *Report) {
	nodes := make(map[string]bool, len(doc.Nodes))
	for _, node := range doc.Nodes {
		nodes[node.ID] = true
	}

	seen := make(map[string]bool, len(doc.Edges))

	for _, edge := range doc.Edges {
		if !nodes[edge.Source] {
			report.fail("", "edges", fmt.Sprintf("edge %s references missing source node %s", edge.ID, edge.Source))
		}

		if !nodes[edge.Target] {
			report.fail("", "edges", fmt.Sprintf("edge %s references missing target node %s", edge.ID, edge.Target))
		}

		key := edge.Source + "\x00" + edge.SourceHandleValue() + "\x00" + edge.Target
		if seen[key] {
			report.fail("", "edges", fmt.Sprintf("duplicate connection from %s to %s", edge.Source, edge.Target))
		}

		seen[key] = true
	}
}

func (v *Validator) checkNodeConfig(node *models.Node, report *Report) error {
	schema, ok := v.schemas[node.Kind]
	if !ok {
		report.fail(node.ID, "kind", fmt.Sprintf("unknown node kind %q", node.Kind))

		return nil
	}

	raw, err := json.Marshal(node.Config)
	if err != nil {
		return fmt.Errorf("failed to serialize config for node %s: %w", node.ID, err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("failed to validate config for node %s: %w", node.ID, err)
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if property, ok := desc.Details()["property"].(string); ok {
				field = property
			}
		}

		report.fail(node.ID, field, desc.Description())
	}

	if !result.Valid() {
		return nil
	}

	// Schema passed; apply the per-kind checks the schema cannot express.
	switch config := node.Config.(type) {
	case *models.ActionConfig:
		checkActionConfig(node.ID, config, report)
	case *models.WebhookConfig:
		checkWebhookURL(node.ID, config, report)
	}

	return nil
}

// checkActionConfig enforces the required sub-fields of each action type.
func checkActionConfig(nodeID string, config *models.ActionConfig, report *Report) {
	switch config.ActionType {
	case models.ActionTypeSendMessage:
		if config.Message == "" && config.TemplateID == "" {
			report.fail(nodeID, "message", "send_message requires message text or a template reference")
		}
	case models.ActionTypeSendButton:
		if config.Message == "" {
			report.fail(nodeID, "message", "send_button requires message text")
		}

		if len(config.Buttons) == 0 {
			report.fail(nodeID, "buttons", "send_button requires at least one button")
		}

		for i, button := range config.Buttons {
			field := fmt.Sprintf("buttons.%d", i)

			if button.Text == "" {
				report.fail(nodeID, field+".text", "button text is required")
			}

			switch button.Type {
			case models.ButtonTypeQuickReply:
			case models.ButtonTypeURL:
				if button.URL == "" {
					report.fail(nodeID, field+".url", "URL buttons require a url")
				}
			case models.ButtonTypePhoneNumber:
				if button.PhoneNumber == "" {
					report.fail(nodeID, field+".phone_number", "phone number buttons require a phone_number")
				}
			default:
				report.fail(nodeID, field+".type", fmt.Sprintf("unknown button type %q", button.Type))
			}
		}
	case models.ActionTypeSendMedia, models.ActionTypeSendVideo:
		if config.MediaURL == "" {
			report.fail(nodeID, "mediaUrl", fmt.Sprintf("%s requires a media url", config.ActionType))
		}

		if config.ActionType == models.ActionTypeSendMedia && config.MediaType == "" {
			report.fail(nodeID, "mediaType", "send_media requires a media type")
		}
	case models.ActionTypeSendList:
		if config.List == nil || len(config.List.Sections) == 0 {
			report.fail(nodeID, "list", "send_list requires a list with at least one section")

			return
		}

		for i, section := range config.List.Sections {
			if len(section.Rows) == 0 {
				report.fail(nodeID, fmt.Sprintf("list.sections.%d.rows", i), "list sections require at least one row")
			}
		}
	case models.ActionTypeAssignConversation:
		if config.AssigneeID == "" {
			report.fail(nodeID, "assigneeId", "assign_conversation requires an assignee")
		}
	}
}

func checkWebhookURL(nodeID string, config *models.WebhookConfig, report *Report) {
	parsed, err := url.Parse(config.WebhookURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		report.fail(nodeID, "webhookUrl", "webhook url must be an absolute URL")
	}
}

// checkReachability warns about every non-trigger node with no directed path
// from a trigger. Orphans are warnings, not failures: the user may be mid-
// construction.
func (v *Validator) checkReachability(doc *models.GraphDocument, report *Report) {
	visited := make(map[string]bool, len(doc.Nodes))
	queue := make([]string, 0, len(doc.Nodes))

	for _, trigger := range doc.TriggerNodes() {
		visited[trigger.ID] = true
		queue = append(queue, trigger.ID)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range doc.Edges {
			if edge.Source == current && !visited[edge.Target] {
				visited[edge.Target] = true
				queue = append(queue, edge.Target)
			}
		}
	}

	for _, node := range doc.Nodes {
		if node.Kind != models.NodeKindTrigger && !visited[node.ID] {
			report.warn(node.ID, "", "node is not reachable from any trigger")
		}
	}
}

// checkConditionBranches warns when a condition node leaves one of its two
// logical outputs unconnected.
func (v *Validator) checkConditionBranches(doc *models.GraphDocument, report *Report) {
	for _, node := range doc.Nodes {
		if node.Kind != models.NodeKindCondition {
			continue
		}

		branches := map[string]bool{}

		for _, edge := range doc.Edges {
			if edge.Source == node.ID {
				branches[edge.SourceHandleValue()] = true
			}
		}

		for _, handle := range []string{models.HandleYes, models.HandleNo} {
			if !branches[handle] {
				report.warn(node.ID, "sourceHandle", fmt.Sprintf("%q branch is not connected", handle))
			}
		}
	}
}
