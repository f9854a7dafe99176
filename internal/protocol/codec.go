package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// MaxMessageSize is the maximum accepted response body (4 MB).
const MaxMessageSize = 4 * 1024 * 1024

// AcceptHeader lists the encodings Decode understands, JSON preferred.
const AcceptHeader = "application/json, application/msgpack;q=0.9"

// ErrEmptyResponse is returned when the backend answers without a body
// or with a null in either encoding.
var ErrEmptyResponse = errors.New("empty response")

// HTTPError reports a non-2xx backend answer.
type HTTPError struct {
	Code   int
	Status string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend returned %s", e.Status)
}

// IsMsgpack reports whether a Content-Type header names msgpack.
func IsMsgpack(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/msgpack" || mt == "application/x-msgpack"
}

// Decode unmarshals a response body into v, choosing msgpack or JSON from
// the Content-Type. Unknown content types are treated as JSON since that is
// what the backend historically sends, often as text/html.
func Decode(contentType string, data []byte, v any) error {
	if len(data) > MaxMessageSize {
		return fmt.Errorf("response too large: %d > %d", len(data), MaxMessageSize)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyResponse
	}
	if IsMsgpack(contentType) {
		if len(data) == 1 && data[0] == msgpcode.Nil {
			return ErrEmptyResponse
		}
		if err := msgpack.Unmarshal(data, v); err != nil {
			return fmt.Errorf("unmarshal msgpack: %w", err)
		}
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal json: %w", err)
	}
	return nil
}

// DecodeStatus decodes a status snapshot.
func DecodeStatus(contentType string, data []byte) ([]ServiceStatus, error) {
	var out []ServiceStatus
	if err := Decode(contentType, data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return []ServiceStatus{}, nil
	}
	return out, nil
}

// DecodeDetail decodes a detail record. Both a list of {name, value}
// objects and a flat object are accepted.
func DecodeDetail(contentType string, data []byte) ([]DetailField, error) {
	var fields []DetailField
	err := Decode(contentType, data, &fields)
	if err == nil {
		return fields, nil
	}
	if errors.Is(err, ErrEmptyResponse) {
		return nil, err
	}
	var m map[string]any
	if err2 := Decode(contentType, data, &m); err2 != nil {
		return nil, err
	}
	return fieldsFromMap(m), nil
}

// DecodeGraphs decodes the graph set of a service.
func DecodeGraphs(contentType string, data []byte) ([]Graph, error) {
	var out []Graph
	if err := Decode(contentType, data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
