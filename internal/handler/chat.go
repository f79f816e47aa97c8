package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/borderbuddy/travel-platform/internal/middleware"
	"github.com/borderbuddy/travel-platform/internal/model"
	"github.com/borderbuddy/travel-platform/internal/ratelimit"
	"github.com/borderbuddy/travel-platform/internal/service"
	"github.com/borderbuddy/travel-platform/pkg/logger"
	"github.com/borderbuddy/travel-platform/pkg/metrics"
)

// ChatHandler handles chat message endpoints, including the SSE
// streaming turn.
type ChatHandler struct {
	service    *service.ChatService
	limiter    *ratelimit.Limiter
	postLimit  int
	postWindow time.Duration
	logger     *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ChatService, limiter *ratelimit.Limiter, postLimit int, postWindow time.Duration, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service:    svc,
		limiter:    limiter,
		postLimit:  postLimit,
		postWindow: postWindow,
		logger:     log,
	}
}

// List handles GET /api/v1/trips/{id}/borderbuddy/chat/messages
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tripID := chi.URLParam(r, "id")

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	msgs, err := h.service.List(r.Context(), tripID, userID, limit)
	if err != nil {
		writeServiceError(w, err, "failed to list messages")
		return
	}
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, model.ListMessagesResponse{Messages: msgs})
}

// Post handles POST /api/v1/trips/{id}/borderbuddy/chat/messages
func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tripID := chi.URLParam(r, "id")

	req, ok := h.decodeTurn(w, r, userID, tripID)
	if !ok {
		return
	}

	res, err := h.service.Post(r.Context(), tripID, userID, req)
	if err != nil {
		writeServiceError(w, err, "failed to post message")
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// Stream handles POST /api/v1/trips/{id}/borderbuddy/chat/stream
//
// Events go out as SSE frames: a `data: ` prefix, the JSON-encoded
// {type, data} object, then a blank line. The connection closes after
// the terminal complete or error event.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tripID := chi.URLParam(r, "id")

	req, ok := h.decodeTurn(w, r, userID, tripID)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	var emitted bool
	emit := func(ev model.StreamEvent) error {
		if err := r.Context().Err(); err != nil {
			return err
		}
		emitted = true
		return writeSSEEvent(w, flusher, ev)
	}

	if _, err := h.service.PostStream(r.Context(), tripID, userID, req, emit); err != nil {
		// Pre-start failures (unknown trip, wrong owner, buddy
		// missing) happen before any frame is written; the response
		// is still uncommitted and gets a plain status code. Once
		// start has gone out, the terminal error event already
		// carries the failure.
		if !emitted {
			writeServiceError(w, err, "failed to start chat turn")
		}
		return
	}
}

// decodeTurn parses and validates a chat turn request, applying the
// per-trip posting limit. Returns ok=false after writing the error
// response.
func (h *ChatHandler) decodeTurn(w http.ResponseWriter, r *http.Request, userID, tripID string) (*model.PostMessageRequest, bool) {
	key := fmt.Sprintf("%s:%s:chat:post", userID, tripID)
	if !h.limiter.Consume(key, h.postLimit, h.postWindow) {
		metrics.RateLimitRejections.WithLabelValues("chat:post").Inc()
		writeError(w, http.StatusTooManyRequests, "too many messages, slow down")
		return nil, false
	}

	var req model.PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &req, true
}

// writeSSEEvent writes one event frame and flushes it to the client.
func writeSSEEvent(w http.ResponseWriter, flusher http.Flusher, ev model.StreamEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
