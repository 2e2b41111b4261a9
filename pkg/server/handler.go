package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/weft-dev/weft/pkg/session"
	"github.com/weft-dev/weft/pkg/weft"
)

// SessionCookie is the cookie identifying a browser's session.
const SessionCookie = "weft_sid"

// HandlerOption configures the HTTP handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	logger   *slog.Logger
	appPath  string
	livePath string
}

// WithHandlerLogger sets the logger. Default: slog.Default().
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// WithAppPath sets the application route. Default: "/".
func WithAppPath(path string) HandlerOption {
	return func(c *handlerConfig) {
		c.appPath = path
	}
}

// WithLivePath sets the websocket route for live updates.
// Default: "/live".
func WithLivePath(path string) HandlerOption {
	return func(c *handlerConfig) {
		c.livePath = path
	}
}

// Handler builds the HTTP handler serving an application through the
// manager. GET and POST on the app path run the request cycle; the
// live path upgrades to a websocket for live-update callbacks.
func Handler(m *Manager, opts ...HandlerOption) http.Handler {
	cfg := &handlerConfig{
		logger:   slog.Default(),
		appPath:  "/",
		livePath: "/live",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	h := &appHandler{manager: m, logger: cfg.logger}

	r := chi.NewRouter()
	r.Get(cfg.livePath, h.serveLive)
	r.Get(cfg.appPath, h.serveApp)
	r.Post(cfg.appPath, h.serveApp)
	return r
}

type appHandler struct {
	manager *Manager
	logger  *slog.Logger
}

// serveApp runs one request through the browser's session and maps
// the outcome to HTTP.
func (h *appHandler) serveApp(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	req, err := newHTTPRequest(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	resp, err := sess.ProcessRequest(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeResponse(w, r, resp)
}

// resolveSession identifies the browser by cookie, minting a new id
// on first contact.
func (h *appHandler) resolveSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	var sid string
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		sid = c.Value
	} else {
		sid = newSessionID()
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	sess, err := h.manager.GetOrCreate(r.Context(), sid)
	if err != nil {
		h.logger.Error("session resolution failed", "error", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	return sess, true
}

// writeError maps processing errors to status codes. An unresolvable
// page id is deterministic: always 404, never a guess at a fallback
// page.
func (h *appHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var invalidPage *session.InvalidPageIDError
	if errors.As(err, &invalidPage) {
		h.logger.Debug("page expired", "page", invalidPage.PageID)
		http.Error(w, "page expired", http.StatusNotFound)
		return
	}

	var multi *weft.MultipleActionCallbacksError
	var dup *weft.DuplicateActionCallbackError
	if errors.As(err, &multi) || errors.As(err, &dup) {
		http.Error(w, "conflicting form submission", http.StatusBadRequest)
		return
	}

	h.logger.Error("request processing failed",
		"path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// writeResponse translates a session response to HTTP. Redirects use
// 303 so the browser re-requests with GET regardless of the method
// that triggered the rotation.
func writeResponse(w http.ResponseWriter, r *http.Request, resp weft.Response) {
	switch v := resp.(type) {
	case *weft.RedirectResponse:
		http.Redirect(w, r, v.Location, http.StatusSeeOther)
	case *weft.ContentResponse:
		w.Header().Set("Content-Type", v.ContentType)
		w.Write(v.Body)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// newSessionID returns an opaque 128-bit id.
func newSessionID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
