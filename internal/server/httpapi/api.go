// Package httpapi exposes the feed contracts over HTTP: a JSON append
// endpoint and a websocket subscription endpoint that delivers the full room
// snapshot on every change.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/groupfeed/internal/logging"
	"github.com/dmitrijs2005/groupfeed/internal/server/hub"
	"github.com/dmitrijs2005/groupfeed/internal/server/repositories/messages"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// feedHub is the subset of hub.Hub the API needs; tests substitute a local
// fan-out that skips redis.
type feedHub interface {
	Join(room string) *hub.Subscriber
	Leave(room string, sub *hub.Subscriber)
	Notify(ctx context.Context, room string) error
}

type API struct {
	repo    messages.Repository
	hub     feedHub
	logger  logging.Logger
	metrics *Metrics

	upgrader websocket.Upgrader
}

func New(repo messages.Repository, h feedHub, logger logging.Logger, metrics *Metrics) *API {
	return &API{
		repo:    repo,
		hub:     h,
		logger:  logger.With("module", "httpapi"),
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/api/rooms/{roomID}/messages", a.appendMessage)
	r.Get("/ws/rooms/{roomID}", a.subscribe)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// SnapshotFrame encodes the room's full current contents as one wire frame.
// It doubles as the hub's snapshot loader.
func (a *API) SnapshotFrame(ctx context.Context, room string) ([]byte, error) {
	snap, err := a.repo.Snapshot(ctx, room)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}

type appendRequest struct {
	Author   string  `json:"author"`
	Text     *string `json:"text,omitempty"`
	ImageRef *string `json:"imageRef,omitempty"`
}

type appendResponse struct {
	ID string `json:"id"`
}

func (a *API) appendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	room := chi.URLParam(r, "roomID")
	start := time.Now()

	var req appendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Author = strings.TrimSpace(req.Author)
	if req.Author == "" {
		a.writeError(w, http.StatusBadRequest, "author must not be empty")
		return
	}

	kind, ok := a.normalizePayload(&req)
	if !ok {
		a.writeError(w, http.StatusBadRequest, "entry must carry exactly one of text and imageRef")
		return
	}

	id, err := a.repo.Insert(ctx, room, req.Author, req.Text, req.ImageRef)
	if err != nil {
		a.metrics.AppendFailures.WithLabelValues(room).Inc()
		a.logger.Error(ctx, "append failed", "room", room, "error", err)
		a.writeError(w, http.StatusInternalServerError, "could not commit message")
		return
	}

	// The entry is durable at this point; a notification failure only delays
	// visibility until the next change, it cannot lose the message.
	if err := a.hub.Notify(ctx, room); err != nil {
		a.logger.Error(ctx, "change notification failed", "room", room, "error", err)
	}

	a.metrics.Appends.WithLabelValues(room, kind).Inc()
	a.metrics.AppendDuration.Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(appendResponse{ID: id})
}

// normalizePayload enforces the exactly-one-payload invariant and trims text.
// Returns the payload kind for metrics.
func (a *API) normalizePayload(req *appendRequest) (string, bool) {
	hasText := req.Text != nil
	hasImage := req.ImageRef != nil
	if hasText == hasImage {
		return "", false
	}

	if hasText {
		trimmed := strings.TrimSpace(*req.Text)
		if trimmed == "" {
			return "", false
		}
		req.Text = &trimmed
		return "text", true
	}

	if strings.TrimSpace(*req.ImageRef) == "" {
		return "", false
	}
	return "image", true
}

func (a *API) subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	room := chi.URLParam(r, "roomID")

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		a.logger.Warn(ctx, "websocket upgrade failed", "room", room, "error", err)
		return
	}

	sub := a.hub.Join(room)
	a.metrics.Subscribers.WithLabelValues(room).Inc()
	defer func() {
		a.hub.Leave(room, sub)
		a.metrics.Subscribers.WithLabelValues(room).Dec()
		_ = conn.Close()
	}()

	// Initial snapshot: a new subscriber sees the current feed immediately,
	// before any change fires.
	frame, err := a.SnapshotFrame(ctx, room)
	if err != nil {
		a.logger.Error(ctx, "initial snapshot failed", "room", room, "error", err)
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return
	}

	go a.writePump(conn, sub)

	// Read loop: consumes control frames and detects the peer going away.
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// writePump forwards snapshot frames from the hub to the peer and keeps the
// connection alive with pings. It exits when the subscriber is detached or
// the connection dies.
func (a *API) writePump(conn *websocket.Conn, sub *hub.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame, ok := <-sub.Frames():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
