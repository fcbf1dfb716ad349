package registry

import "github.com/chatflowhq/chatflow/pkg/models"

// RegisterDefaultNodes registers the built-in node kinds with the registry.
func (r *Registry) RegisterDefaultNodes() {
	r.Register(&models.RegisteredComponent{
		Kind:        models.NodeKindTrigger,
		Name:        "Keyword Trigger",
		Description: "Starts the workflow when an incoming message matches a keyword",
		Schema:      models.ConfigSchema(models.NodeKindTrigger),
	})

	r.Register(&models.RegisteredComponent{
		Kind:        models.NodeKindCondition,
		Name:        "Condition",
		Description: "Branches the workflow on a text comparison",
		Schema:      models.ConfigSchema(models.NodeKindCondition),
	})

	r.Register(&models.RegisteredComponent{
		Kind:        models.NodeKindAction,
		Name:        "Action",
		Description: "Sends a message, media, menu, or assigns the conversation",
		Schema:      models.ConfigSchema(models.NodeKindAction),
	})

	r.Register(&models.RegisteredComponent{
		Kind:        models.NodeKindDelay,
		Name:        "Delay",
		Description: "Waits a number of minutes before continuing",
		Schema:      models.ConfigSchema(models.NodeKindDelay),
	})

	r.Register(&models.RegisteredComponent{
		Kind:        models.NodeKindWebhook,
		Name:        "Webhook",
		Description: "Calls an external URL with conversation context",
		Schema:      models.ConfigSchema(models.NodeKindWebhook),
	})
}
