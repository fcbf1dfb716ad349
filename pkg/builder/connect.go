package builder

import "github.com/chatflowhq/chatflow/pkg/models"

// resolveConnection decides whether a proposed edge is legal and resolves the
// effective source handle. Rules, in order: no self-loops; condition nodes
// default their handle to "yes" (the primary drag gesture produces the happy
// path) while other kinds carry no handle; the (source, sourceHandle, target)
// key must be unique. Cycles are allowed at edit time; the execution engine's
// iteration budget owns that concern.
func resolveConnection(doc *models.GraphDocument, source, target, handle string) (string, error) {
	if source == target {
		return "", &ConnectionError{Source: source, Target: target, Handle: handle, Err: ErrSelfLoop}
	}

	sourceNode := doc.NodeByID(source)
	if sourceNode == nil {
		return "", &MutationError{Op: "Connect", NodeID: source, Err: ErrNodeNotFound}
	}

	if doc.NodeByID(target) == nil {
		return "", &MutationError{Op: "Connect", NodeID: target, Err: ErrNodeNotFound}
	}

	if sourceNode.Kind == models.NodeKindCondition {
		if handle == "" {
			handle = models.HandleYes
		}

		if handle != models.HandleYes && handle != models.HandleNo {
			return "", &ConnectionError{Source: source, Target: target, Handle: handle, Err: ErrInvalidHandle}
		}
	} else {
		// Single-output kinds have one implicit port; any caller-supplied
		// handle is dropped so the stored edge stays normalized.
		handle = ""
	}

	if doc.HasConnection(source, handle, target) {
		return "", &ConnectionError{Source: source, Target: target, Handle: handle, Err: ErrDuplicateConnection}
	}

	return handle, nil
}
