// Package sse streams goal and task events to browsers via Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/bskcorona-github/studyflow/pkg/domain/events"
)

// UserFunc returns the signed-in user of a request, or "" when there is none.
type UserFunc func(r *http.Request) string

type client struct {
	userID string
	ch     chan events.Event
}

// Handler streams each user's own events.
type Handler struct {
	userOf  UserFunc
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHandler creates a handler subscribed to the publisher.
func NewHandler(publisher events.Publisher, userOf UserFunc) *Handler {
	h := &Handler{
		userOf:  userOf,
		clients: make(map[*client]struct{}),
	}

	publisher.Subscribe(func(e events.Event) error {
		h.mu.RLock()
		defer h.mu.RUnlock()
		for c := range h.clients {
			if c.userID != e.UserID {
				continue
			}
			select {
			case c.ch <- e:
			default:
				// Drop if client is slow
			}
		}
		return nil
	})

	return h
}

// Clients returns the number of open streams.
func (h *Handler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles SSE connections.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := h.userOf(r)
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Parse type filters from query param
	typeFilter := make(map[string]bool)
	if types := r.URL.Query().Get("types"); types != "" {
		for _, t := range strings.Split(types, ",") {
			typeFilter[strings.TrimSpace(t)] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	c := &client{userID: userID, ch: make(chan events.Event, 64)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
	}()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-c.ch:
			if len(typeFilter) > 0 && !typeFilter[event.Type] {
				continue
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			_, _ = fmt.Fprintf(w, "id: %s\n", event.ID)
			_, _ = fmt.Fprintf(w, "event: %s\n", event.Type)
			_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
