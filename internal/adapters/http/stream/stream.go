// Package stream serves the websocket feed for the symbol board UI.
//
// Each connection gets its own hub subscription. Hub messages are written
// as JSON text frames; a detector may push frames back over the same socket
// as {"type":"frame","frame":{...}}.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/gazeboard/internal/adapters/mq/queue"
	"github.com/okian/gazeboard/internal/adapters/sink"
	"github.com/okian/gazeboard/internal/domain/eyemetrics"
	"github.com/okian/gazeboard/internal/domain/model"
	"github.com/okian/gazeboard/pkg/logger"
	"github.com/okian/gazeboard/pkg/metrics"
)

const (
	defaultWriteTimeout = 2 * time.Second
	defaultPongWait     = 60 * time.Second
	defaultMaxMessage   = 1 << 20
	defaultBuffer       = 64
	replyBuffer         = 8

	inboundFrame = "frame"
	replyAck     = "ack"
	replyError   = "error"
)

// Subscriber is the part of the hub a connection needs.
type Subscriber interface {
	Subscribe(buffer int) (string, <-chan sink.Message, func())
}

// FrameSubmitter accepts frames pushed by a client.
type FrameSubmitter interface {
	SubmitFrame(ctx context.Context, f model.Frame, source string) error
}

// Handler upgrades GET /ws and runs one read and one write pump per
// connection.
type Handler struct {
	hub          Subscriber
	frames       FrameSubmitter
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	pongWait     time.Duration
	maxMessage   int64
	buffer       int
	logger       logger.Logger
}

type inbound struct {
	Type  string          `json:"type"`
	Frame json.RawMessage `json:"frame"`
}

// reply answers an inbound message on the same socket.
type reply struct {
	Type    string `json:"type"`
	Seq     uint64 `json:"seq,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewHandler returns a websocket handler. frames may be nil, in which case
// inbound frames are refused.
func NewHandler(hub Subscriber, frames FrameSubmitter, opts ...Option) *Handler {
	h := &Handler{
		hub:          hub,
		frames:       frames,
		writeTimeout: defaultWriteTimeout,
		pongWait:     defaultPongWait,
		maxMessage:   defaultMaxMessage,
		buffer:       defaultBuffer,
		logger:       logger.Get().Named("stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The board UI is served from another origin during development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches GET /ws to mux. It bypasses the metrics middleware
// because the upgrade needs the raw http.Hijacker.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.ServeWS)
}

func (h *Handler) pingPeriod() time.Duration {
	return h.pongWait * 9 / 10
}

// ServeWS upgrades the request and blocks until the connection ends.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		metrics.RecordErrorByComponent("stream", "upgrade")
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	id, events, cancel := h.hub.Subscribe(h.buffer)
	defer cancel()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	h.logger.Info(ctx, "stream client connected",
		logger.String("client", id),
		logger.String("remote", r.RemoteAddr))

	replies := make(chan reply, replyBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(ctx, conn, events, replies)
	}()

	h.readPump(ctx, conn, replies)
	stop()
	<-done
	_ = conn.Close()

	h.logger.Info(ctx, "stream client disconnected", logger.String("client", id))
}

func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, replies chan<- reply) {
	conn.SetReadLimit(h.maxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug(ctx, "stream read ended", logger.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))

		rep := h.handleInbound(ctx, data)
		select {
		case replies <- rep:
		case <-ctx.Done():
			return
		default:
			// client is not draining; skip the reply rather than block reads
		}
	}
}

func (h *Handler) handleInbound(ctx context.Context, data []byte) reply {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return reply{Type: replyError, Code: "bad_request", Message: err.Error()}
	}
	if in.Type != inboundFrame {
		return reply{Type: replyError, Code: "unknown_type", Message: "unsupported message type: " + in.Type}
	}
	if h.frames == nil {
		return reply{Type: replyError, Code: "unavailable", Message: "frame ingest disabled"}
	}

	var f model.Frame
	if err := json.Unmarshal(in.Frame, &f); err != nil {
		return reply{Type: replyError, Code: "bad_request", Message: err.Error()}
	}

	err := h.frames.SubmitFrame(ctx, f, "ws")
	switch {
	case err == nil:
		return reply{Type: replyAck, Seq: f.Seq}
	case errors.Is(err, eyemetrics.ErrMalformedFrame):
		return reply{Type: replyError, Seq: f.Seq, Code: "malformed_frame", Message: err.Error()}
	case errors.Is(err, queue.ErrFull):
		return reply{Type: replyError, Seq: f.Seq, Code: "backpressure", Message: err.Error()}
	case errors.Is(err, queue.ErrClosed):
		return reply{Type: replyError, Seq: f.Seq, Code: "unavailable", Message: err.Error()}
	default:
		metrics.RecordErrorByComponent("stream", "submit")
		return reply{Type: replyError, Seq: f.Seq, Code: "internal_error", Message: err.Error()}
	}
}

// writePump is the only writer on conn.
func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, events <-chan sink.Message, replies <-chan reply) {
	ticker := time.NewTicker(h.pingPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case msg, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if !ok {
				// hub closed
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				_ = conn.Close()
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.fail(ctx, conn, err)
				return
			}

		case rep := <-replies:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteJSON(rep); err != nil {
				h.fail(ctx, conn, err)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.fail(ctx, conn, err)
				return
			}
		}
	}
}

// fail closes conn so the blocked reader returns too.
func (h *Handler) fail(ctx context.Context, conn *websocket.Conn, err error) {
	metrics.RecordErrorByComponent("stream", "write")
	h.logger.Debug(ctx, "stream write failed", logger.Error(err))
	_ = conn.Close()
}
