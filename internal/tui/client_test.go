package tui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/thobiasn/monui/internal/protocol"
)

// recordingBackend serves fixed bodies and remembers every query it saw.
type recordingBackend struct {
	mu      sync.Mutex
	queries []url.Values
	accept  string

	contentType string
	body        []byte
	code        int
	delay       time.Duration
}

func (b *recordingBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.queries = append(b.queries, r.URL.Query())
	b.accept = r.Header.Get("Accept")
	ct, body, code, delay := b.contentType, b.body, b.code, b.delay
	b.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if code != 0 {
		w.WriteHeader(code)
	}
	w.Write(body)
}

func (b *recordingBackend) setBody(body string) {
	b.mu.Lock()
	b.body = []byte(body)
	b.mu.Unlock()
}

func (b *recordingBackend) last() url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[len(b.queries)-1]
}

func newBackend(t *testing.T, b *recordingBackend, path string, scopeComponent bool) *Client {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+path, scopeComponent, 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func assertQuery(t *testing.T, got url.Values, want map[string]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("query = %v, want exactly %v", got, want)
	}
	for k, v := range want {
		if got.Get(k) != v {
			t.Errorf("%s = %q, want %q (query %v)", k, got.Get(k), v, got)
		}
	}
}

func TestClientStatusQuery(t *testing.T) {
	b := &recordingBackend{contentType: "application/json", body: []byte(`[{"host":"h1","service":"svc-x","state":"OK","output":"fine"}]`)}
	c := newBackend(t, b, "/monitoring-ui/", true)
	scope := protocol.Scope{Host: "h1", Component: "c1"}

	services, err := c.Status(context.Background(), scope)
	if err != nil {
		t.Fatal(err)
	}
	if len(services) != 1 || services[0].Service != "svc-x" {
		t.Errorf("services = %+v", services)
	}
	assertQuery(t, b.last(), map[string]string{"host": "h1", "comp": "c1"})
	b.mu.Lock()
	accept := b.accept
	b.mu.Unlock()
	if accept != protocol.AcceptHeader {
		t.Errorf("Accept = %q", accept)
	}
}

func TestClientDetailAndGraphsQuery(t *testing.T) {
	b := &recordingBackend{body: []byte(`[{"name":"Status","value":"OK"}]`)}
	c := newBackend(t, b, "/", true)
	scope := protocol.Scope{Host: "h1", Component: "c1"}

	d, err := c.Detail(context.Background(), scope, "svc-x")
	if err != nil {
		t.Fatal(err)
	}
	if d.Service != "svc-x" {
		t.Errorf("detail service = %q", d.Service)
	}
	if len(d.Fields) != 1 || d.Fields[0] != (protocol.DetailField{Name: "Status", Value: "OK"}) {
		t.Errorf("fields = %+v", d.Fields)
	}
	assertQuery(t, b.last(), map[string]string{"host": "h1", "service": "svc-x", "comp": "c1"})

	b.setBody(`[{"title":"Load","points":[1,2,3]}]`)
	g, err := c.Graphs(context.Background(), scope, "svc-x")
	if err != nil {
		t.Fatal(err)
	}
	if len(g) != 1 || len(g[0].Points) != 3 {
		t.Errorf("graphs = %+v", g)
	}
	assertQuery(t, b.last(), map[string]string{"graph": "h1", "service": "svc-x", "comp": "c1"})
}

func TestClientWithoutComponentScoping(t *testing.T) {
	b := &recordingBackend{body: []byte(`[]`)}
	c := newBackend(t, b, "/", false)
	scope := protocol.Scope{Host: "vm-17", Component: "engine"}

	if _, err := c.Status(context.Background(), scope); err != nil {
		t.Fatal(err)
	}
	assertQuery(t, b.last(), map[string]string{"host": "vm-17"})

	c.Detail(context.Background(), scope, "svc")
	if b.last().Has("comp") {
		t.Error("detail request carries comp with scoping off")
	}
	c.Graphs(context.Background(), scope, "svc")
	if b.last().Has("comp") {
		t.Error("graphs request carries comp with scoping off")
	}
}

func TestClientKeepsBaseQuery(t *testing.T) {
	b := &recordingBackend{body: []byte(`[]`)}
	c := newBackend(t, b, "/ui/?lang=en", true)
	if _, err := c.Status(context.Background(), protocol.Scope{Host: "h1"}); err != nil {
		t.Fatal(err)
	}
	assertQuery(t, b.last(), map[string]string{"lang": "en", "host": "h1"})
}

func TestClientMsgpack(t *testing.T) {
	want := []protocol.ServiceStatus{{Host: "h1", Service: "disk", State: "WARNING", Output: "85% used"}}
	body, err := msgpack.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	b := &recordingBackend{contentType: "application/msgpack", body: body}
	c := newBackend(t, b, "/", true)

	got, err := c.Status(context.Background(), protocol.Scope{Host: "h1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestClientFailures(t *testing.T) {
	tests := []struct {
		name  string
		b     *recordingBackend
		check func(t *testing.T, err error)
	}{
		{
			name: "server error",
			b:    &recordingBackend{code: http.StatusInternalServerError, body: []byte("boom")},
			check: func(t *testing.T, err error) {
				var he *protocol.HTTPError
				if !errors.As(err, &he) || he.Code != 500 {
					t.Errorf("err = %v, want HTTPError 500", err)
				}
			},
		},
		{
			name: "empty body",
			b:    &recordingBackend{},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, protocol.ErrEmptyResponse) {
					t.Errorf("err = %v, want ErrEmptyResponse", err)
				}
			},
		},
		{
			name: "malformed body",
			b:    &recordingBackend{body: []byte(`<html>oops</html>`)},
			check: func(t *testing.T, err error) {
				if err == nil {
					t.Error("expected decode error")
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newBackend(t, tt.b, "/", true)
			_, err := c.Status(context.Background(), protocol.Scope{Host: "h1"})
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestClientContextCancel(t *testing.T) {
	b := &recordingBackend{body: []byte(`[]`), delay: 5 * time.Second}
	c := newBackend(t, b, "/", true)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := c.Detail(ctx, protocol.Scope{Host: "h1"}, "svc")
	if err == nil {
		t.Fatal("expected error from cancelled request")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("request did not stop at the context deadline")
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := NewClient("ftp://mon/", true, time.Second); err == nil {
		t.Error("expected error for non-http scheme")
	}
}
