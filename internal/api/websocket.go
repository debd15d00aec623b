package api

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/axoraweb/seo-backend/internal/jobs"
	gojson "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// WebSocket message types for the analysis stream
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeProgress  = "progress"
	MsgTypeComplete  = "complete"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

// WSMessage is the envelope for every frame on the stream.
type WSMessage struct {
	Type      string            `json:"type"`
	ID        string            `json:"id,omitempty"`
	Payload   gojson.RawMessage `json:"payload,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// WSErrorResponse is the payload of an error frame.
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// wsConn serializes writes; gorilla connections allow one concurrent writer.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) send(msg WSMessage) error {
	msg.Timestamp = time.Now().UnixMilli()
	data, err := gojson.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// StreamHandlerImpl implements the AnalysisStreamHandler interface
type StreamHandlerImpl struct {
	jobs     AnalysisJobs
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewStreamHandler creates a new analysis stream handler
func NewStreamHandler(j AnalysisJobs, logger *slog.Logger) AnalysisStreamHandler {
	return &StreamHandlerImpl{
		jobs: j,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		logger: logger,
	}
}

// HandleAnalysisStream upgrades to WebSocket and pushes step snapshots until the job finishes
func (h *StreamHandlerImpl) HandleAnalysisStream(c echo.Context) error {
	id := c.Param("id")
	updates, cancel, err := h.jobs.Subscribe(id)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			return NewNotFoundError("analysis job", id)
		}
		return NewInternalError("failed to subscribe to job", err)
	}
	defer cancel()

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	conn := &wsConn{ws: ws}
	log := h.logger.With("job", id)
	log.Debug("stream client connected")
	conn.send(WSMessage{Type: MsgTypeConnected, ID: id})

	closed := make(chan struct{})
	go h.readLoop(conn, closed, log)

	for {
		select {
		case <-closed:
			log.Debug("stream client disconnected")
			return nil
		case job, ok := <-updates:
			if !ok {
				conn.ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "analysis finished"),
					time.Now().Add(time.Second))
				return nil
			}
			if err := conn.send(jobMessage(job)); err != nil {
				log.Warn("stream write failed", "error", err)
				return nil
			}
		}
	}
}

// readLoop answers pings and reports when the client goes away.
func (h *StreamHandlerImpl) readLoop(conn *wsConn, closed chan<- struct{}, log *slog.Logger) {
	defer close(closed)
	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("stream connection error", "error", err)
			}
			return
		}
		var msg WSMessage
		if err := gojson.Unmarshal(data, &msg); err != nil {
			conn.send(errorMessage("Invalid message: "+err.Error(), "INVALID_PAYLOAD"))
			continue
		}
		switch msg.Type {
		case MsgTypePing:
			conn.send(WSMessage{Type: MsgTypePong})
		default:
			conn.send(errorMessage("Unknown message type: "+msg.Type, "INVALID_TYPE"))
		}
	}
}

func jobMessage(job jobs.Job) WSMessage {
	msgType := MsgTypeProgress
	switch job.Status {
	case jobs.StatusComplete:
		msgType = MsgTypeComplete
	case jobs.StatusError:
		msgType = MsgTypeError
	}
	return WSMessage{Type: msgType, ID: job.ID, Payload: mustJSON(job)}
}

func errorMessage(message, code string) WSMessage {
	return WSMessage{
		Type:    MsgTypeError,
		Payload: mustJSON(WSErrorResponse{Message: message, Code: code}),
	}
}

func mustJSON(v interface{}) gojson.RawMessage {
	data, err := gojson.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
