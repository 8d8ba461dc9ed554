package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/a-jackson/frigate/internal/stats"
	"github.com/a-jackson/frigate/pkg/client"
)

// Upstream reports the state of the server connection. Satisfied by
// *client.Client.
type Upstream interface {
	Connected() bool
}

// ClientCounter reports the number of connected dashboard clients.
// Satisfied by *ws.Hub.
type ClientCounter interface {
	Count() int
}

// Handler is the HTTP handler for all /api/v1/* endpoints. It reads from the
// topic state mirror and the stats emitter and returns JSON responses.
type Handler struct {
	state    *client.State
	upstream Upstream
	emitter  *stats.Emitter
	counter  ClientCounter
	started  time.Time
	mux      *http.ServeMux
}

// New creates a Handler wired to the mirror's components and registers all
// routes.
func New(st *client.State, up Upstream, em *stats.Emitter, counter ClientCounter) http.Handler {
	h := &Handler{
		state:    st,
		upstream: up,
		emitter:  em,
		counter:  counter,
		started:  time.Now(),
		mux:      http.NewServeMux(),
	}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/topics", h.listTopics)
	h.mux.HandleFunc("/api/v1/topics/", h.getTopic) // subtree — extracts {topic}
	h.mux.HandleFunc("/api/v1/stats", h.latestStats)
	h.mux.HandleFunc("/api/v1/stats/history", h.statsHistory)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	jsonResp(w, http.StatusOK, HealthResponse{
		UpstreamConnected: h.upstream.Connected(),
		TopicCount:        h.state.Len(),
		ClientCount:       h.counter.Count(),
		UptimeSeconds:     time.Since(h.started).Seconds(),
	})
}

// listTopics returns GET /api/v1/topics — every mirrored topic, sorted.
func (h *Handler) listTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.state.All()
	out := make([]TopicResponse, 0, len(entries))
	for _, topic := range h.state.Topics() {
		if e, ok := entries[topic]; ok {
			out = append(out, toTopicResponse(topic, e))
		}
	}
	jsonResp(w, http.StatusOK, out)
}

// getTopic returns GET /api/v1/topics/{topic} — one mirrored topic. Topic
// names contain slashes, so the whole remaining path is the topic name.
func (h *Handler) getTopic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	topic := strings.TrimPrefix(r.URL.Path, "/api/v1/topics/")
	if topic == "" {
		// Redirect bare /api/v1/topics/ to the list handler.
		h.listTopics(w, r)
		return
	}

	e, ok := h.state.Get(topic)
	if !ok {
		jsonErr(w, http.StatusNotFound, "topic not found")
		return
	}
	jsonResp(w, http.StatusOK, toTopicResponse(topic, e))
}

// latestStats returns GET /api/v1/stats — the most recent stats snapshot.
func (h *Handler) latestStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.emitter.Latest(r.Context()))
}

// statsHistory returns GET /api/v1/stats/history — retained snapshots.
func (h *Handler) statsHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.emitter.History())
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// toTopicResponse maps a state entry to its JSON representation.
func toTopicResponse(topic string, e client.Entry) TopicResponse {
	return TopicResponse{
		Topic:     topic,
		Payload:   e.Payload,
		Retain:    e.Retain,
		UpdatedAt: e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
