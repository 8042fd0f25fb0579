// Package sessions provides in-memory session management for multi-turn
// conversations with hosted agents. Sessions hold conversation history only;
// per-turn pipeline state (invocation logs, trajectory, citations) is never
// stored here.
package sessions

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trailhead-ai/trailhead/pkg/models"
)

// Store is a thread-safe in-memory session store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*models.Session)}
}

// Create starts a new session for the named agent.
func (s *Store) Create(_ context.Context, agentName string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.New().String(),
		AgentName: agentName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[session.ID] = session
	return copySession(session), nil
}

// Get retrieves a session by ID.
func (s *Store) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return copySession(session), nil
}

// List returns all sessions, newest first.
func (s *Store) List(_ context.Context) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, copySession(session))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// AppendTurn records one completed turn: the user message, the agent's
// answer, and the turn's token usage.
func (s *Store) AppendTurn(_ context.Context, id string, user, answer string, usage models.TokenUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	session.Messages = append(session.Messages,
		models.ChatMessage{Role: "user", Content: user},
		models.ChatMessage{Role: "assistant", Content: answer},
	)
	session.TurnCount++
	session.Usage.InputTokens += usage.InputTokens
	session.Usage.OutputTokens += usage.OutputTokens
	session.Usage.TotalTokens += usage.TotalTokens
	session.UpdatedAt = time.Now().UTC()
	return nil
}

func copySession(in *models.Session) *models.Session {
	out := *in
	out.Messages = append([]models.ChatMessage(nil), in.Messages...)
	return &out
}
