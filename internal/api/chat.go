package api

import (
	"context"
	"encoding/json"
	"net/http"

	"morpheus/internal/agents"
	"morpheus/internal/services/session"
	"morpheus/pkg/errors"
	"morpheus/pkg/logger"
)

// Dispatcher is the delegation surface the HTTP handlers need.
type Dispatcher interface {
	SelectAgent(ctx context.Context, prompt string, uploadPresent bool) (string, error)
	DelegateChat(ctx context.Context, agentName string, req *agents.ChatRequest) (*agents.ChatResponse, error)
	DelegateRoute(ctx context.Context, agentName string, req *agents.ChatRequest, methodName string) (*agents.ChatResponse, error)
	AgentNames() []string
}

// ChatHandler serves the chat and agent route endpoints.
type ChatHandler struct {
	dispatcher Dispatcher
	sessions   *session.Store
	log        *logger.Logger
}

// NewChatHandler creates the chat endpoint handler.
func NewChatHandler(dispatcher Dispatcher, sessions *session.Store, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		dispatcher: dispatcher,
		sessions:   sessions,
		log:        log,
	}
}

// HandleChat selects an agent for the prompt and relays its reply.
// POST /chat
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req agents.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()

	agentName, claimed, err := h.pickAgent(ctx, &req)
	if err != nil {
		h.log.Errorw("Agent selection failed", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	if claimed {
		h.log.Infow("Selection bypassed by continuation", "agent", agentName)
	}

	resp, err := h.dispatcher.DelegateChat(ctx, agentName, &req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	h.rememberNextTurn(ctx, req.ConversationID, resp.NextTurnAgent)

	writeJSON(w, http.StatusOK, resp)
}

// HandleRoute forwards a request to a named agent method.
// POST /agents/{agent}/{method}
func (h *ChatHandler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	agentName := r.PathValue("agent")
	methodName := r.PathValue("method")

	var req agents.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.dispatcher.DelegateRoute(r.Context(), agentName, &req, methodName)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleAgents lists the registered agents.
// GET /agents
func (h *ChatHandler) HandleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"agents": h.dispatcher.AgentNames(),
	})
}

// pickAgent honors a continuation claimed by the previous turn, otherwise
// runs model-driven selection. The claim is consumed on use.
func (h *ChatHandler) pickAgent(ctx context.Context, req *agents.ChatRequest) (string, bool, error) {
	if h.sessions != nil && req.ConversationID != "" {
		state, err := h.sessions.Get(ctx, req.ConversationID)
		if err != nil {
			h.log.Warnw("Session load failed", "error", err)
		} else if state.NextTurnAgent != "" {
			name := state.NextTurnAgent
			state.NextTurnAgent = ""
			if err := h.sessions.Save(ctx, req.ConversationID, state); err != nil {
				h.log.Warnw("Session save failed", "error", err)
			}
			return name, true, nil
		}
	}

	name, err := h.dispatcher.SelectAgent(ctx, req.Prompt.Content, req.UseUploadedFile)
	return name, false, err
}

func (h *ChatHandler) rememberNextTurn(ctx context.Context, conversationID, nextAgent string) {
	if h.sessions == nil || conversationID == "" || nextAgent == "" {
		return
	}
	state, err := h.sessions.Get(ctx, conversationID)
	if err != nil {
		h.log.Warnw("Session load failed", "error", err)
		return
	}
	state.NextTurnAgent = nextAgent
	if err := h.sessions.Save(ctx, conversationID, state); err != nil {
		h.log.Warnw("Session save failed", "error", err)
	}
}

// statusFor maps the closed dispatch error set onto HTTP codes. Client
// faults get 400, everything else is a server fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrAgentNotFound),
		errors.Is(err, errors.ErrMethodNotFound),
		errors.Is(err, errors.ErrNoAgentSelected),
		errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
