package protocol

import (
	"fmt"
	"sort"
)

// Service states as reported by the backend. Anything else renders as unknown.
const (
	StateOK       = "OK"
	StateWarning  = "WARNING"
	StateCritical = "CRITICAL"
	StateUnknown  = "UNKNOWN"
	StatePending  = "PENDING"
)

// Scope identifies which host, and optionally which component of that host,
// every request is bound to. It is set once at startup.
type Scope struct {
	Host      string
	Component string
}

func (s Scope) String() string {
	if s.Component == "" {
		return s.Host
	}
	return s.Host + "/" + s.Component
}

// ServiceStatus is one row of a status snapshot.
type ServiceStatus struct {
	Host      string `json:"host" msgpack:"host"`
	Service   string `json:"service" msgpack:"service"`
	State     string `json:"state" msgpack:"state"`
	Output    string `json:"output" msgpack:"output"`
	LastCheck int64  `json:"last_check,omitempty" msgpack:"last_check,omitempty"`
	Attempt   string `json:"attempt,omitempty" msgpack:"attempt,omitempty"`
}

// DetailField is a single name/value line of a service detail record.
type DetailField struct {
	Name  string `json:"name" msgpack:"name"`
	Value string `json:"value" msgpack:"value"`
}

// ServiceDetail is the extended information for one service.
type ServiceDetail struct {
	Service string
	Fields  []DetailField
}

// Graph is one performance graph of a service. Backends either send the
// data points or only an image reference (PNP4Nagios style).
type Graph struct {
	Title  string    `json:"title" msgpack:"title"`
	Image  string    `json:"image,omitempty" msgpack:"image,omitempty"`
	Unit   string    `json:"unit,omitempty" msgpack:"unit,omitempty"`
	Points []float64 `json:"points,omitempty" msgpack:"points,omitempty"`
}

// fieldsFromMap flattens an object-shaped detail record into fields
// sorted by name.
func fieldsFromMap(m map[string]any) []DetailField {
	fields := make([]DetailField, 0, len(m))
	for k, v := range m {
		val := ""
		if v != nil {
			val = fmt.Sprint(v)
		}
		fields = append(fields, DetailField{Name: k, Value: val})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}
