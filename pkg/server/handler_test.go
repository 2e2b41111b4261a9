package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/weft-dev/weft/pkg/page"
	"github.com/weft-dev/weft/pkg/render"
	"github.com/weft-dev/weft/pkg/session"
	"github.com/weft-dev/weft/pkg/weft"
)

// counter is the demo fixture: one preserved field, one increment
// action.
type counter struct {
	weft.Core
	n        int
	actionID string
}

func newCounter() *counter {
	c := &counter{}
	weft.Preserve(c, c)
	return c
}

func (c *counter) CaptureSlot() any  { return c.n }
func (c *counter) RestoreSlot(v any) { c.n, _ = v.(int) }

func (c *counter) RenderContent(ctx *weft.Context, r render.Renderer) {
	r.Text(fmt.Sprintf("count=%d", c.n))
	c.actionID = ctx.RegisterAction(c, func(*weft.Context) error {
		c.n++
		return nil
	})
	r.Button(c.actionID, "+")
}

func counterFactory(id string) (*session.Session, error) {
	return session.New(newCounter(), page.NewMemoryStore(), session.WithID(id))
}

func newTestServer(t *testing.T) (*httptest.Server, *Manager) {
	t.Helper()

	m := NewManager(counterFactory)
	t.Cleanup(func() { m.Close(context.Background()) })

	srv := httptest.NewServer(Handler(m))
	t.Cleanup(srv.Close)
	return srv, m
}

// newBrowser returns a client that keeps cookies and does not follow
// redirects, so tests can observe each hop.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, c *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := c.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

var buttonID = regexp.MustCompile(`name="(k[0-9]+-[0-9]+)"`)

func TestFreshViewCycle(t *testing.T) {
	srv, _ := newTestServer(t)
	browser := newBrowser(t)

	resp := get(t, browser, srv.URL+"/")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("fresh request status = %d, want 303", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.Contains(loc, weft.PageIDParam+"=") {
		t.Fatalf("redirect location %q carries no page id", loc)
	}

	resp = get(t, browser, srv.URL+loc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("render status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
	if body := readBody(t, resp); !strings.Contains(body, "count=0") {
		t.Errorf("body %q does not show the initial count", body)
	}
}

func TestActionPostRotatesAndReloadIsSafe(t *testing.T) {
	srv, _ := newTestServer(t)
	browser := newBrowser(t)

	resp := get(t, browser, srv.URL+"/")
	first := resp.Header.Get("Location")
	resp = get(t, browser, srv.URL+first)
	body := readBody(t, resp)

	match := buttonID.FindStringSubmatch(body)
	if match == nil {
		t.Fatalf("no field id in body: %s", body)
	}
	action := match[1]

	u, _ := url.Parse(srv.URL + first)
	form := url.Values{weft.PageIDParam: {u.Query().Get(weft.PageIDParam)}, action: {""}}
	post, err := browser.PostForm(srv.URL+"/", form)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer post.Body.Close()

	if post.StatusCode != http.StatusSeeOther {
		t.Fatalf("action status = %d, want 303", post.StatusCode)
	}
	second := post.Header.Get("Location")
	if second == first {
		t.Fatal("page id did not rotate after the action")
	}

	resp = get(t, browser, srv.URL+second)
	if body := readBody(t, resp); !strings.Contains(body, "count=1") {
		t.Errorf("body after action = %q, want count=1", body)
	}

	// Reloading the redirect target re-renders without replaying.
	resp = get(t, browser, srv.URL+second)
	if body := readBody(t, resp); !strings.Contains(body, "count=1") {
		t.Errorf("reloaded body = %q, want count=1", body)
	}

	// The back button still shows the old state.
	resp = get(t, browser, srv.URL+first)
	if body := readBody(t, resp); !strings.Contains(body, "count=0") {
		t.Errorf("backtracked body = %q, want count=0", body)
	}
}

func TestExpiredPageIs404(t *testing.T) {
	srv, _ := newTestServer(t)
	browser := newBrowser(t)

	// Establish the session cookie first.
	get(t, browser, srv.URL+"/")

	resp := get(t, browser, srv.URL+"/?"+weft.PageIDParam+"=999")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "page expired") {
		t.Errorf("body = %q, want page expired notice", body)
	}

	// Deterministic: the same stale id fails the same way again.
	resp = get(t, browser, srv.URL+"/?"+weft.PageIDParam+"=999")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("repeat status = %d, want 404", resp.StatusCode)
	}
}

func TestSessionsAreIsolatedByCookie(t *testing.T) {
	srv, m := newTestServer(t)

	alice := newBrowser(t)
	bob := newBrowser(t)

	locA := get(t, alice, srv.URL+"/").Header.Get("Location")
	locB := get(t, bob, srv.URL+"/").Header.Get("Location")

	if m.Count() != 2 {
		t.Errorf("manager holds %d sessions, want 2", m.Count())
	}

	// Each browser renders its own page 1 independently.
	if resp := get(t, alice, srv.URL+locA); resp.StatusCode != http.StatusOK {
		t.Errorf("alice render status = %d", resp.StatusCode)
	}
	if resp := get(t, bob, srv.URL+locB); resp.StatusCode != http.StatusOK {
		t.Errorf("bob render status = %d", resp.StatusCode)
	}

	// Bob cannot use Alice's page under his own cookie-scoped session;
	// ids are per session, and both got "1", so this succeeds for his
	// own page but his state stays separate from hers.
	if got := readBody(t, get(t, bob, srv.URL+locB)); !strings.Contains(got, "count=0") {
		t.Errorf("bob sees %q, want his own count=0", got)
	}
}
