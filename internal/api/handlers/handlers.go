// Package handlers implements the HTTP handlers for the Trailhead agent
// server: the agent catalog, session management, and the streaming turn
// endpoint that carries the per-turn event sequence to the UI.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/trailhead-ai/trailhead/internal/agents"
	"github.com/trailhead-ai/trailhead/internal/sessions"
	"github.com/trailhead-ai/trailhead/internal/turn"
	"github.com/trailhead-ai/trailhead/pkg/models"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Runner   *turn.Runner
	Sessions *sessions.Store
}

func New(runner *turn.Runner, store *sessions.Store) *Handlers {
	return &Handlers{Runner: runner, Sessions: store}
}

// ── Agents ───────────────────────────────────────────────────

// ListAgents returns the hosted agent catalog.
// GET /api/v1/agents
func (h *Handlers) ListAgents(w http.ResponseWriter, r *http.Request) {
	catalog := agents.Catalog()
	infos := make([]models.AgentInfo, 0, len(catalog))
	for _, d := range catalog {
		infos = append(infos, d.Info())
	}
	respondJSON(w, http.StatusOK, infos)
}

// GetAgent returns one agent's public description.
// GET /api/v1/agents/{agentName}
func (h *Handlers) GetAgent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "agentName")
	def, ok := agents.Lookup(name)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("agent %q not found", name))
		return
	}
	respondJSON(w, http.StatusOK, def.Info())
}

// ── Turns ────────────────────────────────────────────────────

// turnRequest is the body for starting a turn.
type turnRequest struct {
	Content   string `json:"content"`
	SessionID string `json:"session_id,omitempty"`
}

// RunTurn executes one agent turn and streams its events over SSE, in
// order: trajectory steps, the answer, citation spans, then a done or error
// marker. Client disconnect cancels the turn; whatever was streamed before
// that point stands.
// POST /api/v1/agents/{agentName}/turns
func (h *Handlers) RunTurn(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "agentName")
	def, ok := agents.Lookup(name)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("agent %q not found", name))
		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		respondError(w, http.StatusBadRequest, "invalid request body: content is required")
		return
	}

	history := []models.ChatMessage{}
	if req.SessionID != "" {
		session, err := h.Sessions.Get(r.Context(), req.SessionID)
		if err != nil {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		if session.AgentName != name {
			respondError(w, http.StatusBadRequest, "session belongs to a different agent")
			return
		}
		history = session.Messages
	}
	history = append(history, models.ChatMessage{Role: "user", Content: req.Content})

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ctx := r.Context()
	answer := ""
	var usage models.TokenUsage

	for ev := range h.Runner.Run(ctx, def, history) {
		switch ev.Type {
		case models.EventAnswer:
			answer = ev.Answer
		case models.EventDone:
			if ev.Usage != nil {
				usage = *ev.Usage
			}
		}
		data, err := json.Marshal(ev)
		if err != nil {
			log.Error().Err(err).Msg("marshal turn event")
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	// Persist the exchange only for completed turns on a session.
	if req.SessionID != "" && answer != "" && ctx.Err() == nil {
		if err := h.Sessions.AppendTurn(ctx, req.SessionID, req.Content, answer, usage); err != nil {
			log.Warn().Str("session", req.SessionID).Err(err).Msg("append turn to session")
		}
	}
}

// ── Sessions ─────────────────────────────────────────────────

type createSessionRequest struct {
	AgentName string `json:"agent_name"`
}

// CreateSession starts a new conversation with an agent.
// POST /api/v1/sessions
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, ok := agents.Lookup(req.AgentName); !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("agent %q not found", req.AgentName))
		return
	}
	session, err := h.Sessions.Create(r.Context(), req.AgentName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

// ListSessions returns all sessions, newest first.
// GET /api/v1/sessions
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := h.Sessions.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// GetSession returns one session with its history.
// GET /api/v1/sessions/{sessionID}
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.Sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// ── Helpers ──────────────────────────────────────────────────

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
