package embeddings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"morpheus/pkg/errors"
)

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	p, err := NewOpenAIProvider("", "text-embedding-3-small", time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	// The failed constructor must yield a nil interface value, so callers'
	// embedder != nil guards hold and no nil receiver is ever invoked.
	assert.True(t, p == nil)
}

func TestNewOpenAIProviderDefaults(t *testing.T) {
	p, err := NewOpenAIProvider("sk-test", "", 0)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "text-embedding-3-small", p.Name())
	assert.Equal(t, 1536, p.Dimensions())
}
