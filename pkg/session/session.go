package session

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/weft-dev/weft/pkg/page"
	"github.com/weft-dev/weft/pkg/persist"
	"github.com/weft-dev/weft/pkg/render"
	"github.com/weft-dev/weft/pkg/weft"
)

// Handler processes one request into a response. The session's own
// processing is a Handler, so middleware can wrap it.
type Handler func(ctx context.Context, req weft.Request) (weft.Response, error)

// Middleware wraps a Handler with cross-cutting behavior.
type Middleware func(Handler) Handler

// Session drives one user's component tree through the
// resolve / backtrack / render-or-dispatch request cycle.
// Requests against a session are processed one at a time.
type Session struct {
	id     string
	root   weft.Component
	store  page.Store
	logger *slog.Logger

	idGen   func() string
	handler Handler

	mu         sync.Mutex
	seq        uint64
	currentID  string
	lastActive time.Time
}

// Option configures a Session.
type Option func(*config)

type config struct {
	id         string
	logger     *slog.Logger
	idGen      func() string
	middleware []Middleware
}

// WithID sets the session's identifier, used in logs and continuity
// records. Default: "".
func WithID(id string) Option {
	return func(c *config) {
		c.id = id
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithIDGenerator replaces the page id generator. The default is a
// decimal counter starting at 1; opaque random ids are a drop-in
// replacement. Generated ids must be unique within the session.
func WithIDGenerator(gen func() string) Option {
	return func(c *config) {
		c.idGen = gen
	}
}

// WithMiddleware wraps request processing. The first middleware given
// is the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *config) {
		c.middleware = append(c.middleware, mw...)
	}
}

// New creates a session for the given root component and page store.
func New(root weft.Component, store page.Store, opts ...Option) (*Session, error) {
	if root == nil {
		return nil, &weft.ConfigurationError{Reason: "session requires a root component"}
	}
	if store == nil {
		return nil, &weft.ConfigurationError{Reason: "session requires a page store"}
	}

	cfg := &config{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Session{
		id:     cfg.id,
		root:   root,
		store:  store,
		logger: cfg.logger,
		idGen:  cfg.idGen,
	}

	handler := s.process
	for i := len(cfg.middleware) - 1; i >= 0; i-- {
		handler = cfg.middleware[i](handler)
	}
	s.handler = handler

	return s, nil
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// LastActive returns when the session last processed a request.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// ProcessRequest runs one request through the middleware chain and
// the session's request cycle.
func (s *Session) ProcessRequest(ctx context.Context, req weft.Request) (weft.Response, error) {
	return s.handler(ctx, req)
}

// process is the innermost handler: resolve the page, backtrack if
// needed, then render or dispatch.
func (s *Session) process(ctx context.Context, req weft.Request) (weft.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()

	pid := req.PageID()
	if pid == "" {
		return s.freshView(ctx, req)
	}

	pg, err := s.store.Fetch(ctx, pid)
	if err != nil {
		return nil, err
	}
	if pg == nil {
		return nil, &InvalidPageIDError{PageID: pid}
	}

	// A request for a non-current page is a backtrack: replay that
	// page's snapshot before doing anything else.
	if pid != s.currentID {
		s.logger.Debug("backtracking to stored page",
			"session", s.id, "from", s.currentID, "to", pid)
		if pg.Snapshot != nil {
			pg.Snapshot.Restore()
		}
		s.currentID = pid
	}

	if req.IsRenderRequest() {
		return s.renderPage(ctx, req, pg)
	}
	return s.dispatch(ctx, req, pg)
}

// freshView starts a new page for a request carrying no page id. The
// state is recorded immediately so the redirected render request can
// resolve the id.
func (s *Session) freshView(ctx context.Context, req weft.Request) (weft.Response, error) {
	id := s.mintID()
	pg := page.New(id, weft.Capture(s.root), weft.NewRegistry())
	if err := s.store.Put(ctx, pg); err != nil {
		return nil, err
	}
	s.currentID = id

	s.logger.Debug("fresh view", "session", s.id, "page", id)
	return weft.Redirect(req.BuildURL(map[string]string{weft.PageIDParam: id})), nil
}

// renderPage renders the tree under the page's own id. The page gets
// a brand new registry; field ids from the previous rendering of this
// page are dead from here on.
func (s *Session) renderPage(ctx context.Context, req weft.Request, pg *page.Page) (weft.Response, error) {
	reg := weft.NewRegistry()
	wctx := weft.NewContext(ctx, req, reg, pg.ID)

	r := render.NewHTML()
	weft.Render(wctx, r, s.root)

	pg.Registry = reg
	pg.Snapshot = weft.Capture(s.root)
	if err := s.store.Put(ctx, pg); err != nil {
		return nil, err
	}

	s.logger.Debug("rendered page",
		"session", s.id, "page", pg.ID, "callbacks", reg.Len())
	return weft.HTMLResponse(r.Bytes()), nil
}

// dispatch runs the page's callbacks against the submitted fields.
// On success the mutated state is recorded under a fresh page id and
// the browser is redirected to it, which makes reload safe and leaves
// the old id pointing at the pre-action state. Two exceptions skip
// the rotation: a premature response re-snapshots under the same id
// and is sent as-is, and a request that triggered only live-update
// callbacks re-renders in place so a live channel gets content
// instead of a redirect. On error nothing is stored.
func (s *Session) dispatch(ctx context.Context, req weft.Request, pg *page.Page) (weft.Response, error) {
	wctx := weft.NewContext(ctx, req, pg.Registry, pg.ID)
	st := weft.NewStream(pg.Registry, req.Fields())

	liveOnly := len(st.TriggeredIDs(weft.KindLiveUpdate)) > 0 &&
		len(st.TriggeredIDs(weft.KindAction)) == 0 &&
		len(st.TriggeredIDs(weft.KindInput)) == 0

	err := weft.ProcessCallbacks(wctx, s.root, st)
	if pr, ok := weft.AsPremature(err); ok {
		pg.Snapshot = weft.Capture(s.root)
		if err := s.store.Put(ctx, pg); err != nil {
			return nil, err
		}
		s.logger.Debug("premature response",
			"session", s.id, "page", pg.ID)
		return pr.Resp, nil
	}
	if err != nil {
		s.logger.Warn("callback dispatch failed",
			"session", s.id, "page", pg.ID, "error", err)
		return nil, err
	}

	if liveOnly {
		return s.renderPage(ctx, req, pg)
	}

	id := s.mintID()
	next := page.New(id, weft.Capture(s.root), weft.NewRegistry())
	if err := s.store.Put(ctx, next); err != nil {
		return nil, err
	}
	s.currentID = id

	s.logger.Debug("dispatched callbacks",
		"session", s.id, "from", pg.ID, "to", id)
	return weft.Redirect(req.BuildURL(map[string]string{weft.PageIDParam: id})), nil
}

// mintID returns the next page id. Caller holds the lock.
func (s *Session) mintID() string {
	if s.idGen != nil {
		return s.idGen()
	}
	s.seq++
	return strconv.FormatUint(s.seq, 10)
}

// ContinuityState captures the metadata a restarted server needs to
// resume this session without reissuing page ids.
func (s *Session) ContinuityState() *persist.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &persist.State{
		SessionID:     s.id,
		CurrentPageID: s.currentID,
		NextPageSeq:   s.seq + 1,
		LastActive:    s.lastActive,
	}
}

// RestoreContinuity resumes the page id sequence from a persisted
// record. Live pages did not survive, so the current id is left
// unset; requests carrying pre-restart ids fail page resolution.
func (s *Session) RestoreContinuity(st *persist.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.NextPageSeq > 0 {
		s.seq = st.NextPageSeq - 1
	}
	s.currentID = ""
	if !st.LastActive.IsZero() {
		s.lastActive = st.LastActive
	}
}
