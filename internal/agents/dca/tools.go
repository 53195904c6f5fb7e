package dca

import "morpheus/internal/adapters/ai"

// toolDefinitions describes the strategy operations exposed to the model.
func toolDefinitions() []ai.ToolDefinition {
	return []ai.ToolDefinition{
		{
			Type: "function",
			Function: ai.FunctionDefinition{
				Name:        fnCreate,
				Description: "Create a new dollar cost averaging strategy for a token",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"token_address": map[string]interface{}{
							"type":        "string",
							"description": "Contract address of the token to buy",
						},
						"amount": map[string]interface{}{
							"type":        "number",
							"description": "Amount to spend per interval, in USD",
						},
						"interval_type": map[string]interface{}{
							"type": "string",
							"enum": []string{"hourly", "daily", "weekly", "monthly"},
						},
						"total_periods": map[string]interface{}{
							"type":        "integer",
							"description": "Number of purchases before the strategy completes; omit for open-ended",
						},
						"min_price": map[string]interface{}{
							"type":        "number",
							"description": "Skip purchases below this token price",
						},
						"max_price": map[string]interface{}{
							"type":        "number",
							"description": "Skip purchases above this token price",
						},
						"max_slippage": map[string]interface{}{
							"type":        "number",
							"description": "Maximum acceptable slippage as a fraction, default 0.01",
						},
						"gasless": map[string]interface{}{
							"type":        "boolean",
							"description": "Use gasless execution when available",
						},
					},
					"required": []string{"token_address", "amount", "interval_type"},
				},
			},
		},
		{
			Type: "function",
			Function: ai.FunctionDefinition{
				Name:        fnPause,
				Description: "Pause an active DCA strategy",
				Parameters:  strategyIDParameters(),
			},
		},
		{
			Type: "function",
			Function: ai.FunctionDefinition{
				Name:        fnResume,
				Description: "Resume a paused DCA strategy",
				Parameters:  strategyIDParameters(),
			},
		},
		{
			Type: "function",
			Function: ai.FunctionDefinition{
				Name:        fnCancel,
				Description: "Cancel an existing DCA strategy",
				Parameters:  strategyIDParameters(),
			},
		},
	}
}

func strategyIDParameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"strategy_id": map[string]interface{}{
				"type":        "string",
				"description": "Identifier of the strategy",
			},
		},
		"required": []string{"strategy_id"},
	}
}
