package editor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"resume-builder/internal/permissions"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/layout"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = livePongWait * 9 / 10
	liveMaxMessage = 1 << 20
)

// clientMessage is sent by the browser on the live channel.
//
//	{"type":"update","step":"skills","patch":{...}}
//	{"type":"goto","action":"next|prev|jump","step":"education"}
//	{"type":"resize","width":812}
type clientMessage struct {
	Type   string          `json:"type"`
	Step   string          `json:"step"`
	Action string          `json:"action"`
	Patch  json.RawMessage `json:"patch"`
	Width  float64         `json:"width"`
}

// serverMessage is either a full state push with the rendered preview or an
// error for the last client message.
type serverMessage struct {
	Type  string             `json:"type"`
	State *State             `json:"state,omitempty"`
	HTML  string             `json:"html,omitempty"`
	Error *respond.ErrorBody `json:"error,omitempty"`
}

func (h *Handler) upgrader() *websocket.Upgrader {
	origins := middleware.NewOrigins(h.AllowedOrigins)
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 16384,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origins.Allowed(origin)
		},
	}
}

// live streams state and previews for one session. Edits, navigation and
// save status changes push immediately; resize reports push once the
// viewport debounce settles.
func (h *Handler) live(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	userID := middleware.UserIDFromContext(c)
	level, err := h.Plans.LevelForRequest(c)
	if err != nil {
		h.fail(c, err, "failed to resolve plan")
		return
	}

	ws, err := h.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		telemetry.Warn("editor.live_upgrade_failed", map[string]any{"session_id": sess.ID(), "error": err})
		return
	}
	defer ws.Close()

	fields := map[string]any{"session_id": sess.ID(), "document_id": sess.DocumentID(), "user_id": userID}
	telemetry.Info("editor.live_connected", fields)
	defer telemetry.Info("editor.live_disconnected", fields)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kick := make(chan struct{}, 1)
	signal := func() {
		select {
		case kick <- struct{}{}:
		default:
		}
	}
	defer sess.Subscribe(signal)()
	defer sess.OnFrame(func(layout.Frame) { signal() })()

	errs := make(chan respond.ErrorBody, 8)
	quit := make(chan struct{})

	ws.SetReadLimit(liveMaxMessage)
	_ = ws.SetReadDeadline(time.Now().Add(livePongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(livePongWait))
	})

	go func() {
		defer close(quit)
		for {
			var msg clientMessage
			if err := ws.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					telemetry.Debug("editor.live_read_failed", map[string]any{"session_id": sess.ID(), "error": err})
				}
				return
			}
			if _, err := h.Sessions.Get(userID, sess.ID()); err != nil {
				return
			}
			if err := applyLive(sess, msg, level); err != nil {
				_, body := errorBody(err, "failed to apply message")
				select {
				case errs <- body:
				default:
				}
			}
		}
	}()

	signal()
	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()
	for {
		var out serverMessage
		select {
		case <-quit:
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
			continue
		case body := <-errs:
			out = serverMessage{Type: "error", Error: &body}
		case <-kick:
			state := sess.State()
			html, err := sess.Preview(ctx, true)
			if err != nil {
				_, body := errorBody(err, "failed to render preview")
				out = serverMessage{Type: "error", State: &state, Error: &body}
			} else {
				out = serverMessage{Type: "state", State: &state, HTML: html}
			}
		}
		_ = ws.SetWriteDeadline(time.Now().Add(liveWriteWait))
		if err := ws.WriteJSON(out); err != nil {
			telemetry.Debug("editor.live_write_failed", map[string]any{"session_id": sess.ID(), "error": err})
			return
		}
	}
}

func applyLive(sess Handle, msg clientMessage, level permissions.Level) error {
	switch msg.Type {
	case "update":
		return sess.Update(msg.Step, msg.Patch, level)
	case "goto":
		return navigate(sess, msg.Action, msg.Step)
	case "resize":
		sess.Resize(msg.Width)
		return nil
	case "ping":
		return nil
	default:
		return errUnknownMessage
	}
}

var errUnknownMessage = errors.New("message type must be update, goto, resize or ping")
