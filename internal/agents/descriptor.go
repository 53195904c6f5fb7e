package agents

import (
	"encoding/json"
	"os"

	"morpheus/pkg/errors"
)

// Agent type identifiers. The descriptor type field picks the constructor,
// the analogue of the original module path + class reference.
const (
	TypeDCA            = "dca"
	TypeRealtimeSearch = "realtime_search"
	TypeRAG            = "rag"
)

// Descriptor configures one agent slot in the registry.
type Descriptor struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	UploadRequired bool   `json:"upload_required"`
}

// DefaultDescriptors returns the built-in ordered agent list.
func DefaultDescriptors() []Descriptor {
	return []Descriptor{
		{
			Name:        "general purpose and context-based rag agent",
			Type:        TypeRAG,
			Description: "Answers general questions using conversation context and previously stored knowledge",
		},
		{
			Name:        "DCA agent",
			Type:        TypeDCA,
			Description: "Creates and manages dollar cost averaging trading strategies: create, pause, resume, cancel",
		},
		{
			Name:        "realtime search agent",
			Type:        TypeRealtimeSearch,
			Description: "Performs a live web search and synthesizes an answer from current results",
		},
	}
}

// LoadDescriptors reads the descriptor list from a JSON file, falling back
// to the built-in defaults when path is empty. Names must be unique.
func LoadDescriptors(path string) ([]Descriptor, error) {
	descriptors := DefaultDescriptors()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read agents config %s", path)
		}
		descriptors = nil
		if err := json.Unmarshal(data, &descriptors); err != nil {
			return nil, errors.Wrapf(err, "parse agents config %s", path)
		}
	}

	seen := make(map[string]struct{}, len(descriptors))
	for _, d := range descriptors {
		if d.Name == "" {
			return nil, errors.Wrap(errors.ErrInvalidInput, "agent descriptor missing name")
		}
		if _, dup := seen[d.Name]; dup {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "duplicate agent name %q", d.Name)
		}
		seen[d.Name] = struct{}{}
	}

	return descriptors, nil
}
