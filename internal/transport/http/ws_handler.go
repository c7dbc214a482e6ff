package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"quiz-player/internal/app"
	"quiz-player/internal/domain"
)

const (
	defaultWriteWait  = 10 * time.Second
	defaultSendBuffer = 64
)

type WSHandler struct {
	service    *app.QuizService
	upgrader   websocket.Upgrader
	writeWait  time.Duration
	sendBuffer int
}

// WSOption configures a WSHandler.
type WSOption func(*WSHandler)

// WithWriteWait bounds each write to a client. A client that stops reading
// for longer is disconnected.
func WithWriteWait(d time.Duration) WSOption {
	return func(h *WSHandler) {
		if d > 0 {
			h.writeWait = d
		}
	}
}

// WithSendBuffer sets how many outbound messages are queued per connection.
// It is at least 2 so the events emitted while a session starts fit before
// the writer runs.
func WithSendBuffer(n int) WSOption {
	return func(h *WSHandler) {
		h.sendBuffer = max(n, 2)
	}
}

func NewWSHandler(service *app.QuizService, opts ...WSOption) *WSHandler {
	h := &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		writeWait:  defaultWriteWait,
		sendBuffer: defaultSendBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// wsPresenter forwards session events to the connection writer. It gives up
// once the connection is closing so a stalled client cannot block the session.
type wsPresenter struct {
	send       chan<- outboundMessage[any]
	closing    <-chan struct{}
	writerDone <-chan struct{}
}

func (p *wsPresenter) push(msg outboundMessage[any]) {
	select {
	case p.send <- msg:
	case <-p.closing:
	case <-p.writerDone:
	}
}

func (p *wsPresenter) QuestionChanged(view domain.QuestionView) {
	p.push(outboundMessage[any]{Type: "question", Payload: toQuestionPayload(view)})
}

func (p *wsPresenter) TimeRemaining(seconds int) {
	p.push(outboundMessage[any]{Type: "timer", Payload: timerPayload{RemainingSeconds: seconds, Display: clock(seconds)}})
}

func (p *wsPresenter) SessionCompleted(summary domain.ResultSummary) {
	p.push(outboundMessage[any]{Type: "completed", Payload: toResultPayload(summary)})
}

// ServeWS plays one session per connection. The exercise comes from the
// exerciseId query parameter; answers arrive as
// {"type":"answer","payload":{"answer":"B"}}.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	exerciseID := strings.TrimSpace(r.URL.Query().Get("exerciseId"))
	if exerciseID == "" {
		http.Error(w, "missing exerciseId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], h.sendBuffer)
	closing := make(chan struct{})
	writerDone := make(chan struct{})
	presenter := &wsPresenter{send: send, closing: closing, writerDone: writerDone}

	// Events emitted by Start are buffered until the writer runs.
	session, err := h.service.Start(r.Context(), exerciseID, presenter)
	if err != nil {
		log.Printf("ws start exercise %s: %v", exerciseID, err)
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: userMessage(err)})
		return
	}
	sessionID := session.ID()
	_ = conn.SetWriteDeadline(time.Now().Add(h.writeWait))
	if err := conn.WriteJSON(outboundMessage[any]{Type: "session", Payload: toSessionPayload(session.Snapshot())}); err != nil {
		log.Printf("ws write error: %v", err)
		h.end(sessionID)
		return
	}

	go func() {
		defer close(writerDone)
		for msg := range send {
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// unblocks the read loop so the session is ended
				_ = conn.Close()
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Answer.IsZero() {
				presenter.push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			result, err := h.service.SubmitAnswer(r.Context(), sessionID, payload.Answer)
			if err != nil {
				presenter.push(outboundMessage[any]{Type: "error", Payload: userMessage(err)})
				continue
			}
			presenter.push(outboundMessage[any]{Type: "answerResult", Payload: result})
		case "state":
			snap, err := h.service.Snapshot(sessionID)
			if err != nil {
				presenter.push(outboundMessage[any]{Type: "error", Payload: userMessage(err)})
				continue
			}
			presenter.push(outboundMessage[any]{Type: "session", Payload: toSessionPayload(snap)})
		default:
			presenter.push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closing)
	h.end(sessionID)
	close(send)
	<-writerDone
}

func (h *WSHandler) end(sessionID string) {
	if _, err := h.service.End(context.Background(), sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		log.Printf("ws end session %s: %v", sessionID, err)
	}
}
