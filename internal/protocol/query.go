package protocol

import (
	"fmt"
	"net/url"
)

// Query parameter names understood by the monitoring backend.
const (
	ParamHost      = "host"
	ParamComponent = "comp"
	ParamService   = "service"
	ParamGraph     = "graph"
)

// Query builds request URLs against a backend base URL. Parameters already
// present on the base URL are kept.
type Query struct {
	base *url.URL
	// ScopeComponent controls whether the component is sent at all. The
	// oVirt flavour of the backend has no notion of components.
	ScopeComponent bool
}

// NewQuery parses the backend base URL.
func NewQuery(base string, scopeComponent bool) (*Query, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url scheme must be http or https, got %q", u.Scheme)
	}
	return &Query{base: u, ScopeComponent: scopeComponent}, nil
}

// Status returns the URL of the status snapshot for a scope.
func (q *Query) Status(s Scope) string {
	v := q.values()
	v.Set(ParamHost, s.Host)
	q.setComponent(v, s)
	return q.encode(v)
}

// Detail returns the URL of the detail record of one service.
func (q *Query) Detail(s Scope, service string) string {
	v := q.values()
	v.Set(ParamHost, s.Host)
	v.Set(ParamService, service)
	q.setComponent(v, s)
	return q.encode(v)
}

// Graphs returns the URL of the graph set of one service. The backend
// expects the host under the graph parameter for this endpoint.
func (q *Query) Graphs(s Scope, service string) string {
	v := q.values()
	v.Set(ParamGraph, s.Host)
	v.Set(ParamService, service)
	q.setComponent(v, s)
	return q.encode(v)
}

// setComponent adds comp only when scoping is on and a component is known.
// An empty value is never sent.
func (q *Query) setComponent(v url.Values, s Scope) {
	if q.ScopeComponent && s.Component != "" {
		v.Set(ParamComponent, s.Component)
	}
}

func (q *Query) values() url.Values {
	return q.base.Query()
}

func (q *Query) encode(v url.Values) string {
	u := *q.base
	u.RawQuery = v.Encode()
	return u.String()
}
