package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/weft-dev/weft/pkg/session"
	"github.com/weft-dev/weft/pkg/weft"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// liveMessage is one live-update submission from the client.
type liveMessage struct {
	PageID string `json:"page_id"`
	Field  string `json:"field"`
	Value  string `json:"value"`
}

// liveReply is the server's answer to one live message.
type liveReply struct {
	HTML     string `json:"html,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Error    string `json:"error,omitempty"`
}

// liveRequest presents one websocket message as a callback request
// against the page it names.
type liveRequest struct {
	pageID string
	fields map[string]string
}

func (l *liveRequest) PageID() string            { return l.pageID }
func (l *liveRequest) IsRenderRequest() bool     { return false }
func (l *liveRequest) Fields() map[string]string { return l.fields }

func (l *liveRequest) BuildURL(params map[string]string) string {
	req := &httpRequest{path: "/"}
	return req.BuildURL(params)
}

// serveLive upgrades to a websocket and runs each incoming message
// through the session as a callback request. Content responses are
// streamed back as HTML fragments; page rotations become redirect
// replies the client follows with a normal navigation.
func (h *appHandler) serveLive(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		var msg liveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", "error", err)
			}
			return
		}

		reply := h.processLive(r, sess, &msg)
		if err := conn.WriteJSON(reply); err != nil {
			h.logger.Debug("websocket write failed", "error", err)
			return
		}
	}
}

func (h *appHandler) processLive(r *http.Request, sess *session.Session, msg *liveMessage) liveReply {
	if msg.PageID == "" || msg.Field == "" {
		return liveReply{Error: "page_id and field are required"}
	}

	req := &liveRequest{
		pageID: msg.PageID,
		fields: map[string]string{msg.Field: msg.Value},
	}

	resp, err := sess.ProcessRequest(r.Context(), req)
	if err != nil {
		return liveReply{Error: err.Error()}
	}

	switch v := resp.(type) {
	case *weft.ContentResponse:
		return liveReply{HTML: string(v.Body)}
	case *weft.RedirectResponse:
		return liveReply{Redirect: v.Location}
	default:
		return liveReply{Error: "unsupported response"}
	}
}
