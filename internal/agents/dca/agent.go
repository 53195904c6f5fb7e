package dca

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"morpheus/internal/adapters/ai"
	"morpheus/internal/agents"
	dcaservice "morpheus/internal/services/dca"
	"morpheus/pkg/errors"
	"morpheus/pkg/logger"
)

const systemPrompt = "You are a DCA (Dollar Cost Averaging) agent that helps users create and manage " +
	"cryptocurrency trading strategies. Available actions:\n" +
	"1. Create new DCA strategies with specific intervals and amounts\n" +
	"2. Pause active strategies\n" +
	"3. Resume paused strategies\n" +
	"4. Cancel existing strategies\n"

// Function names the model may call.
const (
	fnCreate = "handle_dollar_cost_average"
	fnPause  = "handle_pause_dca_strategy"
	fnResume = "handle_resume_dca_strategy"
	fnCancel = "handle_cancel_dca_strategy"
)

type handlerFunc func(ctx context.Context, args map[string]interface{}) (*agents.ChatResponse, error)

// Agent manages DCA strategies through model function calls.
type Agent struct {
	name       string
	chat       ai.ChatProvider
	model      string
	strategies dcaservice.Manager
	handlers   map[string]handlerFunc
	log        *logger.Logger
}

// Ensure the capability surface
var (
	_ agents.Agent            = (*Agent)(nil)
	_ agents.StrategyReporter = (*Agent)(nil)
)

// New creates the DCA agent.
func New(desc agents.Descriptor, chat ai.ChatProvider, model string, strategies dcaservice.Manager) (*Agent, error) {
	if chat == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "dca agent requires a chat provider")
	}
	if strategies == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "dca agent requires a strategy manager")
	}

	a := &Agent{
		name:       desc.Name,
		chat:       chat,
		model:      model,
		strategies: strategies,
		log:        logger.Get().With("agent", desc.Name),
	}

	a.handlers = map[string]handlerFunc{
		fnCreate: a.handleCreate,
		fnPause:  a.handlePause,
		fnResume: a.handleResume,
		fnCancel: a.handleCancel,
	}

	return a, nil
}

// Name returns the registry key.
func (a *Agent) Name() string { return a.name }

// Chat handles an incoming chat request.
func (a *Agent) Chat(ctx context.Context, req *agents.ChatRequest) (*agents.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a.log.Infow("Processing message", "conversation_id", req.ConversationID)

	resp, err := a.chat.Chat(ctx, ai.ChatRequest{
		Model: a.model,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: systemPrompt},
			{Role: ai.RoleUser, Content: req.Prompt.Content},
		},
		Tools:       toolDefinitions(),
		ToolChoice:  "auto",
		Temperature: 0.01,
	})
	if err != nil {
		return nil, errors.Wrap(err, "dca request processing")
	}

	toolCall, ok := resp.FirstToolCall()
	if !ok {
		return agents.Assistant(resp.Content()), nil
	}

	// Some models prefix the function name; keep only the last field.
	fields := strings.Fields(strings.TrimSpace(toolCall.Function.Name))
	funcName := fields[len(fields)-1]
	a.log.Infow("Function call", "function", funcName)

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "malformed function arguments: %v", err)
	}

	return a.handleFunctionCall(ctx, funcName, args)
}

// handleFunctionCall dispatches to the fixed handler mapping.
func (a *Agent) handleFunctionCall(ctx context.Context, funcName string, args map[string]interface{}) (*agents.ChatResponse, error) {
	handler, ok := a.handlers[funcName]
	if !ok {
		a.log.Errorf("Function '%s' not supported", funcName)
		return agents.Assistant(fmt.Sprintf("Error: Function '%s' not supported.", funcName)), nil
	}
	return handler(ctx, args)
}

func (a *Agent) handleCreate(ctx context.Context, args map[string]interface{}) (*agents.ChatResponse, error) {
	tokenAddress, err := stringArg(args, "token_address")
	if err != nil {
		return nil, err
	}
	amount, err := decimalArg(args, "amount")
	if err != nil {
		return nil, err
	}
	intervalType, err := stringArg(args, "interval_type")
	if err != nil {
		return nil, err
	}

	params := dcaservice.CreateParams{
		TokenAddress: tokenAddress,
		Amount:       amount,
		IntervalType: intervalType,
		TotalPeriods: optIntArg(args, "total_periods", 0),
		MinPrice:     optDecimalArg(args, "min_price"),
		MaxPrice:     optDecimalArg(args, "max_price"),
		MaxSlippage:  optDecimalDefault(args, "max_slippage", decimal.NewFromFloat(0.01)),
		Gasless:      optBoolArg(args, "gasless", false),
	}

	strategy, err := a.strategies.Create(ctx, params)
	if err != nil {
		if errors.Is(err, errors.ErrValidation) || errors.Is(err, errors.ErrExecution) {
			a.log.Errorw("DCA creation failed", "error", err)
			return agents.Assistant(err.Error()), nil
		}
		return nil, err
	}

	a.log.Infow("DCA strategy created", "strategy_id", strategy.ID)
	return agents.Assistant(fmt.Sprintf(
		"Successfully created DCA strategy with ID: %s (buying $%s worth every %s interval)",
		strategy.ID,
		humanize.CommafWithDigits(strategy.Amount.InexactFloat64(), 2),
		strategy.IntervalType,
	)), nil
}

func (a *Agent) handlePause(ctx context.Context, args map[string]interface{}) (*agents.ChatResponse, error) {
	strategyID, err := stringArg(args, "strategy_id")
	if err != nil {
		return nil, err
	}

	if _, err := a.strategies.Pause(ctx, strategyID); err != nil {
		return a.strategyFault(err)
	}
	return agents.Assistant(fmt.Sprintf("Successfully paused strategy %s", strategyID)), nil
}

func (a *Agent) handleResume(ctx context.Context, args map[string]interface{}) (*agents.ChatResponse, error) {
	strategyID, err := stringArg(args, "strategy_id")
	if err != nil {
		return nil, err
	}

	if _, err := a.strategies.Resume(ctx, strategyID); err != nil {
		return a.strategyFault(err)
	}
	return agents.Assistant(fmt.Sprintf("Successfully resumed strategy %s", strategyID)), nil
}

func (a *Agent) handleCancel(ctx context.Context, args map[string]interface{}) (*agents.ChatResponse, error) {
	strategyID, err := stringArg(args, "strategy_id")
	if err != nil {
		return nil, err
	}

	if _, err := a.strategies.Cancel(ctx, strategyID); err != nil {
		return a.strategyFault(err)
	}
	return agents.Assistant(fmt.Sprintf("Successfully cancelled strategy %s", strategyID)), nil
}

// strategyFault converts domain faults into user-facing text and lets
// anything else surface as an error.
func (a *Agent) strategyFault(err error) (*agents.ChatResponse, error) {
	switch {
	case errors.Is(err, errors.ErrStrategyNotFound),
		errors.Is(err, errors.ErrValidation),
		errors.Is(err, errors.ErrExecution):
		a.log.Errorw("Strategy operation failed", "error", err)
		return agents.Assistant(err.Error()), nil
	default:
		return nil, err
	}
}

// ListStrategies implements the StrategyReporter capability for the generic
// route boundary.
func (a *Agent) ListStrategies(ctx context.Context, _ *agents.ChatRequest) (*agents.ChatResponse, error) {
	strategies, err := a.strategies.List(ctx, 20)
	if err != nil {
		return nil, err
	}

	if len(strategies) == 0 {
		return agents.Assistant("No DCA strategies found."), nil
	}

	var b strings.Builder
	b.WriteString("Current DCA strategies:\n")
	for _, s := range strategies {
		fmt.Fprintf(&b, "- %s: $%s of %s every %s [%s]\n",
			s.ID,
			humanize.CommafWithDigits(s.Amount.InexactFloat64(), 2),
			s.TokenAddress,
			s.IntervalType,
			s.Status,
		)
	}
	return agents.Assistant(b.String()), nil
}

// Argument extraction helpers. Required keys fail before any execution.

func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", errors.Wrapf(errors.ErrInvalidInput, "missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", errors.Wrapf(errors.ErrInvalidInput, "argument %q must be a non-empty string", key)
	}
	return s, nil
}

func decimalArg(args map[string]interface{}, key string) (decimal.Decimal, error) {
	v, ok := args[key]
	if !ok {
		return decimal.Zero, errors.Wrapf(errors.ErrInvalidInput, "missing required argument %q", key)
	}
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, errors.Wrapf(errors.ErrInvalidInput, "argument %q must be numeric", key)
	}
	return d, nil
}

func optDecimalArg(args map[string]interface{}, key string) *decimal.Decimal {
	v, ok := args[key]
	if !ok || v == nil {
		return nil
	}
	d, err := toDecimal(v)
	if err != nil {
		return nil
	}
	return &d
}

func optDecimalDefault(args map[string]interface{}, key string, def decimal.Decimal) decimal.Decimal {
	if d := optDecimalArg(args, key); d != nil {
		return *d
	}
	return def
}

func optIntArg(args map[string]interface{}, key string, def int) int {
	v, ok := args[key]
	if !ok || v == nil {
		return def
	}
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return def
}

func optBoolArg(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(n)
	case json.Number:
		return decimal.NewFromString(n.String())
	default:
		return decimal.Zero, errors.Newf("unsupported numeric type %T", v)
	}
}
