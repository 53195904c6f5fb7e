package agents

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"morpheus/pkg/errors"
)

func TestChatPromptUnmarshal(t *testing.T) {
	t.Run("bare string", func(t *testing.T) {
		var req ChatRequest
		require.NoError(t, json.Unmarshal([]byte(`{"prompt":"hello"}`), &req))
		assert.Equal(t, "user", req.Prompt.Role)
		assert.Equal(t, "hello", req.Prompt.Content)
	})

	t.Run("object form", func(t *testing.T) {
		var req ChatRequest
		require.NoError(t, json.Unmarshal([]byte(`{"prompt":{"role":"user","content":"hi"}}`), &req))
		assert.Equal(t, "hi", req.Prompt.Content)
	})

	t.Run("invalid form", func(t *testing.T) {
		var req ChatRequest
		err := json.Unmarshal([]byte(`{"prompt":42}`), &req)
		require.Error(t, err)
	})
}

func TestChatRequestValidate(t *testing.T) {
	req := &ChatRequest{}
	err := req.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	req.Prompt.Content = "hello"
	assert.NoError(t, req.Validate())
}

func TestLoadDescriptorsDefaults(t *testing.T) {
	descriptors, err := LoadDescriptors("")
	require.NoError(t, err)
	require.Len(t, descriptors, 3)
	assert.Equal(t, "general purpose and context-based rag agent", descriptors[0].Name)
	assert.Equal(t, TypeRAG, descriptors[0].Type)
	assert.Equal(t, "DCA agent", descriptors[1].Name)
	assert.Equal(t, "realtime search agent", descriptors[2].Name)
}

func TestLoadDescriptorsFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid override", func(t *testing.T) {
		path := filepath.Join(dir, "agents.json")
		require.NoError(t, os.WriteFile(path, []byte(`[
			{"name":"DCA agent","type":"dca","description":"trading"},
			{"name":"doc agent","type":"rag","description":"documents","upload_required":true}
		]`), 0o644))

		descriptors, err := LoadDescriptors(path)
		require.NoError(t, err)
		require.Len(t, descriptors, 2)
		assert.True(t, descriptors[1].UploadRequired)
	})

	t.Run("duplicate names rejected", func(t *testing.T) {
		path := filepath.Join(dir, "dup.json")
		require.NoError(t, os.WriteFile(path, []byte(`[
			{"name":"DCA agent","type":"dca","description":"a"},
			{"name":"DCA agent","type":"dca","description":"b"}
		]`), 0o644))

		_, err := LoadDescriptors(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadDescriptors(filepath.Join(dir, "absent.json"))
		require.Error(t, err)
	})
}
