package httpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-voiceform/pkg/interview"
	"github.com/goliatone/go-voiceform/pkg/session"
)

const (
	localSession   = "voiceform.session"
	localRequestID = "voiceform.request_id"
)

// Stream message types.
const (
	StreamUtterance = "utterance"
	StreamToolCall  = "tool_call"
	StreamState     = "state"
	StreamError     = "error"
)

// streamMessage is one frame sent by the voice agent.
type streamMessage struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// streamReply answers every frame with the outcome and a fresh view.
type streamReply struct {
	Type          string                 `json:"type"`
	Message       string                 `json:"message,omitempty"`
	Outcomes      []session.Outcome      `json:"outcomes,omitempty"`
	Notifications []session.Notification `json:"notifications,omitempty"`
	View          *interview.View        `json:"view,omitempty"`
	Error         string                 `json:"error,omitempty"`
}

type streamHandler struct {
	srv *Server
}

func newStreamHandler(srv *Server) *streamHandler {
	return &streamHandler{srv: srv}
}

func (h *streamHandler) Start(router fiber.Router) {
	router.Get("/sessions/:id/stream", h.upgrade, websocket.New(h.Stream))
}

func (h *streamHandler) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	requestID := GetRequestID(c)
	sess, err := h.srv.registry.Get(c.Params("id"))
	if err != nil {
		return h.srv.errHandler.Handle(c, requestID, err, "open_stream")
	}
	c.Locals(localSession, sess)
	c.Locals(localRequestID, requestID)
	return c.Next()
}

// Stream serves one voice agent connection. Each text frame is a
// streamMessage; malformed frames are answered with an error reply and never
// close the stream.
func (h *streamHandler) Stream(c *websocket.Conn) {
	sess, ok := c.Locals(localSession).(*session.Session)
	if !ok {
		return
	}
	requestID, _ := c.Locals(localRequestID).(string)
	ctx := session.WithRequestID(context.Background(), requestID)

	logger := h.srv.log.WithFields(logrus.Fields{
		"session_id": sess.ID(),
		"request_id": requestID,
	})
	logger.Info("Voice stream connected")
	defer logger.Info("Voice stream disconnected")

	for {
		if err := c.SetReadDeadline(time.Now().Add(h.srv.streamIdle)); err != nil {
			logger.WithError(err).Error("Error setting read deadline")
			return
		}

		messageType, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithError(err).Warn("Voice stream closed unexpectedly")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		data, err := jsoniter.Marshal(dispatch(ctx, sess, raw))
		if err != nil {
			logger.WithError(err).Error("Error encoding stream reply")
			return
		}
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.WithError(err).Warn("Error writing stream reply")
			return
		}
	}
}

func dispatch(ctx context.Context, sess *session.Session, raw []byte) streamReply {
	var msg streamMessage
	if err := jsoniter.Unmarshal(raw, &msg); err != nil {
		return streamReply{Type: StreamError, Error: "invalid message: " + err.Error()}
	}

	reply := streamReply{Type: msg.Type}
	switch msg.Type {
	case StreamUtterance:
		reply.Outcomes = sess.HandleUtterance(ctx, msg.Text)
	case StreamToolCall:
		reply.Message = sess.HandleToolCall(ctx, msg.Payload)
	case StreamState:
	default:
		return streamReply{Type: StreamError, Error: fmt.Sprintf("unknown message type %q", msg.Type)}
	}

	view := sess.View()
	reply.View = &view
	reply.Notifications = sess.Notifications()
	return reply
}
