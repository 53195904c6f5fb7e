package session

import (
	"context"
	"time"

	"morpheus/pkg/errors"
	"morpheus/pkg/logger"
)

const keyPrefix = "session:"

// State is the per-conversation state shared across requests.
type State struct {
	LastSearchTerm string `json:"last_search_term,omitempty"`
	NextTurnAgent  string `json:"next_turn_agent,omitempty"`
}

// KV is the key-value backend for session state. Satisfied by the redis
// adapter client.
type KV interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
}

// Store keeps conversation state in a TTL-bounded key-value backend.
type Store struct {
	kv    KV
	ttl   time.Duration
	log   *logger.Logger
	isNil func(error) bool
}

// NewStore creates a session store. isNil reports whether an error from the
// backend means "key missing"; pass redis.IsNil for the redis adapter.
func NewStore(kv KV, ttl time.Duration, isNil func(error) bool) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if isNil == nil {
		isNil = func(err error) bool { return errors.Is(err, errors.ErrNotFound) }
	}
	return &Store{
		kv:    kv,
		ttl:   ttl,
		log:   logger.Get().With("component", "session_store"),
		isNil: isNil,
	}
}

// Get loads the state for a conversation. A missing key yields empty state.
func (s *Store) Get(ctx context.Context, conversationID string) (*State, error) {
	if conversationID == "" {
		return &State{}, nil
	}

	var state State
	err := s.kv.Get(ctx, keyPrefix+conversationID, &state)
	if err != nil {
		if s.isNil(err) || errors.Is(err, errors.ErrNotFound) {
			return &State{}, nil
		}
		return nil, errors.Wrap(err, "load session state")
	}
	return &state, nil
}

// Save persists the state for a conversation with the configured TTL.
func (s *Store) Save(ctx context.Context, conversationID string, state *State) error {
	if conversationID == "" {
		return nil
	}

	if err := s.kv.Set(ctx, keyPrefix+conversationID, state, s.ttl); err != nil {
		return errors.Wrap(err, "save session state")
	}
	return nil
}
