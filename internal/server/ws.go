package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/gorilla/websocket"
)

const (
	maxMessageBytes = 64 << 10
	writeTimeout    = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // renderer is served locally
	},
}

// Session websocket message types.
const (
	MsgFrame  = "frame"
	MsgLost   = "lost"
	MsgSelect = "select"
	MsgMode   = "mode"
	MsgReset  = "reset"
	MsgResult = "result"
	MsgState  = "state"
	MsgError  = "error"
)

// ClientMessage is sent by the renderer on /api/session.
type ClientMessage struct {
	Type       string             `json:"type"`
	Landmarks  []landmark.Point3D `json:"landmarks,omitempty"`
	Confidence float64            `json:"confidence,omitempty"`
	// Timestamp is the capture time in Unix milliseconds. Zero means now.
	Timestamp int64  `json:"timestamp,omitempty"`
	Selected  bool   `json:"selected,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

// ServerMessage is the reply to a ClientMessage.
type ServerMessage struct {
	Type   string           `json:"type"`
	Result *app.FrameResult `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// SessionHandler lets a renderer drive the session over a websocket. Every
// frame or lost message gets exactly one result reply. Control messages are
// answered with the current state.
type SessionHandler struct {
	session *app.Session
	logger  *slog.Logger
	now     func() time.Time
}

// NewSessionHandler creates a SessionHandler for session.
func NewSessionHandler(session *app.Session, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{session: session, logger: logger, now: time.Now}
}

// ServeHTTP upgrades the request and serves messages until the peer closes.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("session websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)

	h.logger.Info("renderer connected", "remote", r.RemoteAddr)
	defer h.logger.Info("renderer disconnected", "remote", r.RemoteAddr)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("session websocket read failed", "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		reply := h.handle(data)
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			h.logger.Warn("session websocket write failed", "error", err)
			return
		}
	}
}

func (h *SessionHandler) handle(data []byte) ServerMessage {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ServerMessage{Type: MsgError, Error: "invalid JSON"}
	}

	switch msg.Type {
	case MsgFrame:
		res := h.session.ProcessPoints(msg.Landmarks, msg.Confidence, h.timestamp(msg.Timestamp))
		return ServerMessage{Type: MsgResult, Result: &res}
	case MsgLost:
		res := h.session.Lost(h.timestamp(msg.Timestamp))
		return ServerMessage{Type: MsgResult, Result: &res}
	case MsgSelect:
		h.session.SetSelected(msg.Selected)
	case MsgMode:
		mode, err := interaction.ParseMode(msg.Mode)
		if err != nil {
			return ServerMessage{Type: MsgError, Error: err.Error()}
		}
		h.session.SetMode(mode)
	case MsgReset:
		h.session.Reset()
	default:
		return ServerMessage{Type: MsgError, Error: fmt.Sprintf("unknown message type %q", msg.Type)}
	}

	last := h.session.Last()
	return ServerMessage{Type: MsgState, Result: &last}
}

func (h *SessionHandler) timestamp(ms int64) time.Time {
	if ms <= 0 {
		return h.now()
	}
	return time.UnixMilli(ms)
}
