package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentError_WrapsAndMatches(t *testing.T) {
	t.Parallel()

	err := NewDocumentError("Save", "doc-1", ErrVersionConflict)

	assert.Contains(t, err.Error(), "Save")
	assert.Contains(t, err.Error(), "doc-1")
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.True(t, IsVersionConflict(err))
	assert.False(t, IsDocumentNotFound(err))
}

func TestIsHelpers_SeeThroughWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("saving workflow: %w", NewDocumentError("Save", "doc-2", ErrDocumentNotFound))
	assert.True(t, IsDocumentNotFound(wrapped))

	assert.True(t, IsDocumentAlreadyExists(ErrDocumentAlreadyExists))
	assert.False(t, IsVersionConflict(errors.New("unrelated")))
}
