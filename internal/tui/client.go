package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/thobiasn/monui/internal/protocol"
)

// Fetcher reads the three backend endpoints. Client is the HTTP
// implementation; tests substitute their own.
type Fetcher interface {
	Status(ctx context.Context, scope protocol.Scope) ([]protocol.ServiceStatus, error)
	Detail(ctx context.Context, scope protocol.Scope, service string) (*protocol.ServiceDetail, error)
	Graphs(ctx context.Context, scope protocol.Scope, service string) ([]protocol.Graph, error)
}

// Client fetches status, details and graphs from the monitoring backend
// over HTTP GET.
type Client struct {
	http  *http.Client
	query *protocol.Query
}

// NewClient creates a client for the backend base URL. When scopeComponent
// is false the component is never sent.
func NewClient(baseURL string, scopeComponent bool, timeout time.Duration) (*Client, error) {
	q, err := protocol.NewQuery(baseURL, scopeComponent)
	if err != nil {
		return nil, err
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		query: q,
	}, nil
}

// Status fetches the status snapshot of a scope.
func (c *Client) Status(ctx context.Context, scope protocol.Scope) ([]protocol.ServiceStatus, error) {
	ct, body, err := c.get(ctx, c.query.Status(scope))
	if err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	services, err := protocol.DecodeStatus(ct, body)
	if err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return services, nil
}

// Detail fetches the detail record of one service.
func (c *Client) Detail(ctx context.Context, scope protocol.Scope, service string) (*protocol.ServiceDetail, error) {
	ct, body, err := c.get(ctx, c.query.Detail(scope, service))
	if err != nil {
		return nil, fmt.Errorf("fetch detail: %w", err)
	}
	fields, err := protocol.DecodeDetail(ct, body)
	if err != nil {
		return nil, fmt.Errorf("decode detail: %w", err)
	}
	return &protocol.ServiceDetail{Service: service, Fields: fields}, nil
}

// Graphs fetches the graph set of one service.
func (c *Client) Graphs(ctx context.Context, scope protocol.Scope, service string) ([]protocol.Graph, error) {
	ct, body, err := c.get(ctx, c.query.Graphs(scope, service))
	if err != nil {
		return nil, fmt.Errorf("fetch graphs: %w", err)
	}
	graphs, err := protocol.DecodeGraphs(ct, body)
	if err != nil {
		return nil, fmt.Errorf("decode graphs: %w", err)
	}
	return graphs, nil
}

// get performs one GET and returns the Content-Type and body.
func (c *Client) get(ctx context.Context, url string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Accept", protocol.AcceptHeader)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return "", nil, &protocol.HTTPError{Code: resp.StatusCode, Status: resp.Status}
	}

	// Read one byte past the limit so Decode can tell an oversized body.
	body, err := io.ReadAll(io.LimitReader(resp.Body, protocol.MaxMessageSize+1))
	if err != nil {
		return "", nil, fmt.Errorf("read body: %w", err)
	}
	slog.Debug("backend request", "url", url, "status", resp.StatusCode, "bytes", len(body), "took", time.Since(start))
	return resp.Header.Get("Content-Type"), body, nil
}
