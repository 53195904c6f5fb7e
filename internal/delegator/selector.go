package delegator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"morpheus/internal/adapters/ai"
	"morpheus/internal/agents"
	"morpheus/internal/metrics"
	"morpheus/pkg/errors"
	"morpheus/pkg/logger"
)

const selectAgentTool = "select_agent"

// Selector picks the agent for a prompt through one structured model call.
type Selector struct {
	chat        ai.ChatProvider
	model       string
	descriptors []agents.Descriptor
	log         *logger.Logger
}

// NewSelector creates a selector over the configured descriptor list.
func NewSelector(chat ai.ChatProvider, model string, descriptors []agents.Descriptor) *Selector {
	return &Selector{
		chat:        chat,
		model:       model,
		descriptors: descriptors,
		log:         logger.Get().With("component", "selector"),
	}
}

// Candidates returns the agent names eligible for the current session. An
// agent requiring an upload is excluded when none is present.
func (s *Selector) Candidates(uploadPresent bool) []agents.Descriptor {
	var out []agents.Descriptor
	for _, d := range s.descriptors {
		if d.UploadRequired && !uploadPresent {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Select asks the model to choose an agent for the prompt. The model must
// answer with a structured select_agent call naming one of the candidates;
// anything else fails the request (no retry, no silent default).
func (s *Selector) Select(ctx context.Context, prompt string, uploadPresent bool) (string, error) {
	candidates := s.Candidates(uploadPresent)
	if len(candidates) == 0 {
		return "", errors.Wrap(errors.ErrNoAgentSelected, "no agents available for this session")
	}

	names := make([]string, len(candidates))
	var descriptions strings.Builder
	for i, d := range candidates {
		names[i] = d.Name
		fmt.Fprintf(&descriptions, "- %s: %s\n", d.Name, d.Description)
	}

	s.log.Infow("Available agents", "agents", names)

	systemPrompt := "Your name is Morpheus. " +
		"Your primary function is to select the correct agent based on the user's input. " +
		"You MUST use the 'select_agent' function to select an agent. " +
		"Available agents and their descriptions:\n" + descriptions.String() +
		"Analyze the user's input and select the most appropriate agent."

	timer := metrics.SelectionTimer()
	resp, err := s.chat.Chat(ctx, ai.ChatRequest{
		Model: s.model,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: systemPrompt},
			{Role: ai.RoleUser, Content: prompt},
		},
		Tools:      []ai.ToolDefinition{selectionTool(names)},
		ToolChoice: "required",
	})
	timer.ObserveDuration()
	if err != nil {
		metrics.AgentSelections.WithLabelValues("", "error").Inc()
		return "", errors.Wrap(err, "agent selection call")
	}

	toolCall, ok := resp.FirstToolCall()
	if !ok || toolCall.Function.Name != selectAgentTool {
		metrics.AgentSelections.WithLabelValues("", "no_choice").Inc()
		return "", errors.Wrap(errors.ErrNoAgentSelected, "model returned no structured choice")
	}

	var choice struct {
		Agent string `json:"agent"`
	}
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &choice); err != nil {
		metrics.AgentSelections.WithLabelValues("", "no_choice").Inc()
		return "", errors.Wrapf(errors.ErrNoAgentSelected, "malformed selection arguments: %v", err)
	}

	// A choice outside the candidate list is a selection failure, not a
	// lookup miss.
	found := false
	for _, name := range names {
		if choice.Agent == name {
			found = true
			break
		}
	}
	if !found {
		metrics.AgentSelections.WithLabelValues("", "out_of_list").Inc()
		return "", errors.Wrapf(errors.ErrNoAgentSelected, "model selected unknown agent %q", choice.Agent)
	}

	metrics.AgentSelections.WithLabelValues(choice.Agent, "success").Inc()
	s.log.Infow("Selected agent", "agent", choice.Agent)
	return choice.Agent, nil
}

// selectionTool builds the single-choice schema over the candidate names.
func selectionTool(names []string) ai.ToolDefinition {
	return ai.ToolDefinition{
		Type: "function",
		Function: ai.FunctionDefinition{
			Name:        selectAgentTool,
			Description: "Choose which agent should be used to respond to the user query",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"agent": map[string]interface{}{
						"type":        "string",
						"enum":        names,
						"description": "The name of the agent to be used to respond to the user query",
					},
				},
				"required": []string{"agent"},
			},
		},
	}
}
