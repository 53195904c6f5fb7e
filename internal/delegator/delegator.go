package delegator

import (
	"context"

	"morpheus/internal/agents"
	"morpheus/internal/metrics"
	"morpheus/pkg/errors"
	"morpheus/pkg/logger"
)

// Route method names accepted by DelegateRoute, each bound to an explicit
// capability interface.
const (
	MethodPerformSearch  = "perform_search"
	MethodListStrategies = "list_strategies"
)

// Delegator forwards chat requests to the selected agent.
type Delegator struct {
	registry *Registry
	selector *Selector
	log      *logger.Logger
}

// New creates a delegator over a built registry.
func New(registry *Registry, selector *Selector) *Delegator {
	return &Delegator{
		registry: registry,
		selector: selector,
		log:      logger.Get().With("component", "delegator"),
	}
}

// SelectAgent runs the model-driven selection step.
func (d *Delegator) SelectAgent(ctx context.Context, prompt string, uploadPresent bool) (string, error) {
	return d.selector.Select(ctx, prompt, uploadPresent)
}

// AgentNames lists registered agents.
func (d *Delegator) AgentNames() []string {
	return d.registry.Names()
}

// DelegateChat forwards the request to the named agent's chat method. An
// unknown name is a client fault with no side effects; an agent failure is
// converted to a server fault and never propagates unconverted.
func (d *Delegator) DelegateChat(ctx context.Context, agentName string, req *agents.ChatRequest) (*agents.ChatResponse, error) {
	ag, ok := d.registry.Get(agentName)
	if !ok {
		d.log.Warnw("Attempted to delegate to non-existent agent", "agent", agentName)
		metrics.AgentCalls.WithLabelValues(agentName, "unknown_agent").Inc()
		return nil, errors.Wrapf(errors.ErrAgentNotFound, "%s", agentName)
	}

	d.log.Infow("Delegating chat", "agent", agentName)

	resp, err := d.invoke(agentName, func() (*agents.ChatResponse, error) {
		return ag.Chat(ctx, req)
	})
	if err != nil {
		d.log.Errorw("Chat delegation failed", "agent", agentName, "error", err)
		metrics.AgentCalls.WithLabelValues(agentName, "error").Inc()
		return nil, errors.Wrapf(errors.ErrInternal, "chat delegation to %s failed", agentName)
	}

	metrics.AgentCalls.WithLabelValues(agentName, "success").Inc()
	return resp, nil
}

// DelegateRoute forwards the request to a named method on the agent. The
// method must map to a capability interface the agent implements; otherwise
// this is a client fault.
func (d *Delegator) DelegateRoute(ctx context.Context, agentName string, req *agents.ChatRequest, methodName string) (*agents.ChatResponse, error) {
	ag, ok := d.registry.Get(agentName)
	if !ok {
		d.log.Warnw("Attempted to delegate to non-existent agent", "agent", agentName)
		return nil, errors.Wrapf(errors.ErrAgentNotFound, "%s", agentName)
	}

	var call func() (*agents.ChatResponse, error)

	switch methodName {
	case MethodPerformSearch:
		searcher, ok := ag.(agents.Searcher)
		if !ok {
			return nil, d.methodNotFound(agentName, methodName)
		}
		call = func() (*agents.ChatResponse, error) { return searcher.PerformSearch(ctx, req) }
	case MethodListStrategies:
		reporter, ok := ag.(agents.StrategyReporter)
		if !ok {
			return nil, d.methodNotFound(agentName, methodName)
		}
		call = func() (*agents.ChatResponse, error) { return reporter.ListStrategies(ctx, req) }
	default:
		return nil, d.methodNotFound(agentName, methodName)
	}

	resp, err := d.invoke(agentName, call)
	if err != nil {
		d.log.Errorw("Route delegation failed", "agent", agentName, "method", methodName, "error", err)
		return nil, errors.Wrapf(errors.ErrInternal, "delegating %s to %s failed", methodName, agentName)
	}

	d.log.Infow("Delegated route", "agent", agentName, "method", methodName)
	return resp, nil
}

// invoke runs an agent call and converts a panic into an error, so a
// misbehaving agent surfaces as the usual server fault instead of taking
// down the request.
func (d *Delegator) invoke(agentName string, call func() (*agents.ChatResponse, error)) (resp *agents.ChatResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorw("Agent panicked", "agent", agentName, "panic", r)
			resp = nil
			err = errors.Newf("agent %s panicked: %v", agentName, r)
		}
	}()
	return call()
}

func (d *Delegator) methodNotFound(agentName, methodName string) error {
	d.log.Warnw("Method not found in agent", "agent", agentName, "method", methodName)
	return errors.Wrapf(errors.ErrMethodNotFound, "'%s' in agent '%s'", methodName, agentName)
}
