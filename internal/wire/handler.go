package wire

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/rulesetview/internal/catalog"
	"github.com/matthewbaird/rulesetview/internal/event"
	"github.com/matthewbaird/rulesetview/internal/form"
	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/session"
	"github.com/matthewbaird/rulesetview/internal/view"
)

// Handler manages WebSocket connections for live editing.
type Handler struct {
	catalog  *catalog.Catalog
	sessions *session.Manager
	recorder event.Recorder
	fallback label.PriorityList
	logger   *slog.Logger
}

// NewHandler creates a WebSocket handler. fallback labels masks opened
// without a language.
func NewHandler(c *catalog.Catalog, sessions *session.Manager, rec event.Recorder,
	fallback label.PriorityList, logger *slog.Logger) *Handler {

	if rec == nil {
		rec = event.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{catalog: c, sessions: sessions, recorder: rec, fallback: fallback, logger: logger}
}

// ServeHTTP upgrades to WebSocket and runs the message loop for the ruleset
// named by the {ruleset} path parameter.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "ruleset")
	if _, err := h.catalog.Get(name); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn("websocket accept", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	sess := h.sessions.Create(name)
	h.record(ctx, event.NewSessionOpened(event.SessionPayload{SessionID: sess.ID, Ruleset: name}))
	defer func() {
		h.sessions.Remove(sess.ID)
		st := sess.State()
		h.record(context.WithoutCancel(ctx), event.NewSessionClosed(event.SessionPayload{
			SessionID: sess.ID, Ruleset: name, Division: st.Division,
		}))
	}()

	h.send(ctx, conn, ServerMessage{
		Type: "session",
		Data: SessionData{SessionID: sess.ID, Ruleset: name},
	})

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				h.logger.Debug("websocket closed", "session", sess.ID, "status", status)
			}
			return
		}
		sess.Touch()

		switch msg.Type {
		case "open":
			h.handleOpen(ctx, conn, sess, msg)
		case "set":
			h.handleSet(ctx, conn, sess, msg)
		case "add_field":
			h.handleAddField(ctx, conn, sess, msg)
		case "validate":
			h.handleValidate(ctx, conn, sess, msg)
		case "view":
			h.sendView(ctx, conn, sess, msg.ID)
		case "ping":
			h.send(ctx, conn, ServerMessage{Type: "pong", RequestID: msg.ID})
		default:
			h.sendError(ctx, conn, msg.ID, "unknown_type", fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

func (h *Handler) handleOpen(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	var data OpenData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.Division == "" {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "open needs a division")
		return
	}
	priority := h.fallback
	if data.Lang != "" {
		p, err := label.ParsePriorityList(data.Lang)
		if err != nil {
			h.sendError(ctx, conn, msg.ID, "invalid_language", err.Error())
			return
		}
		priority = p
	}
	sess.Open(data.Division, data.Stage, priority)
	h.sendView(ctx, conn, sess, msg.ID)
}

func (h *Handler) handleSet(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	var data SetData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid set data")
		return
	}
	sess.SetMetadata(data.Metadata)
	h.sendView(ctx, conn, sess, msg.ID)
}

func (h *Handler) handleAddField(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	var data AddFieldData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.Key == "" {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "add_field needs a key")
		return
	}
	sess.AddField(data.Key)
	h.sendView(ctx, conn, sess, msg.ID)
}

func (h *Handler) handleValidate(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	var data ValidateData
	if err := json.Unmarshal(msg.Data, &data); err != nil || data.Key == "" {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "validate needs a key")
		return
	}
	e, err := h.catalog.Get(sess.Ruleset)
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "ruleset_gone", err.Error())
		return
	}
	st := sess.State()
	priority := st.Priority
	if priority == nil {
		priority = h.fallback
	}
	kv, ok := e.Management.MetadataView(data.Key, st.Stage, priority).(*view.KeyView)
	if !ok {
		h.sendError(ctx, conn, msg.ID, "complex_key", "complex keys have no single value to validate")
		return
	}
	h.send(ctx, conn, ServerMessage{
		Type:      "validation",
		RequestID: msg.ID,
		Data:      ValidationData{Key: data.Key, Value: data.Value, Valid: kv.IsValid(data.Value)},
	})
}

// sendView renders the session's mask against the ruleset as currently
// loaded, so reloads take effect on the next message.
func (h *Handler) sendView(ctx context.Context, conn *websocket.Conn, sess *session.Session, requestID string) {
	st := sess.State()
	if !st.IsOpen() {
		h.sendError(ctx, conn, requestID, "not_open", "open a division first")
		return
	}
	e, err := h.catalog.Get(sess.Ruleset)
	if err != nil {
		h.sendError(ctx, conn, requestID, "ruleset_gone", err.Error())
		return
	}
	v := e.Management.StructuralElementView(st.Division, st.Stage, st.Priority)
	subdivisions := form.DescribeDivision(v).Subdivisions
	h.send(ctx, conn, ServerMessage{
		Type:      "view",
		RequestID: requestID,
		Data: ViewData{
			Division:     st.Division,
			Label:        v.Label(),
			Stage:        st.Stage,
			Rows:         form.DescribeRows(v.SortedVisibleMetadata(st.Metadata, st.Additional)),
			Addable:      form.DescribeAll(v.AddableMetadata(st.Metadata, st.Additional)),
			Subdivisions: subdivisions,
		},
	})
}

func (h *Handler) record(ctx context.Context, evt event.DomainEvent) {
	if err := h.recorder.Record(ctx, evt); err != nil {
		h.logger.Warn("event recording failed", "type", evt.EventType, "error", err)
	}
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		h.logger.Debug("websocket write error", "error", err)
	}
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	h.send(ctx, conn, ServerMessage{
		Type:      "error",
		RequestID: requestID,
		Data: ErrorData{
			Code:    code,
			Message: message,
		},
	})
}
