package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// FieldErrorSeparator joins field messages into one display line.
const FieldErrorSeparator = " | "

// HTTPError is a non-2xx response.
type HTTPError struct {
	Status int
	Method string
	Path   string
	Detail string
	Fields map[string][]string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message())
}

// HasFieldErrors reports whether the backend returned per-field messages.
func (e *HTTPError) HasFieldErrors() bool { return len(e.Fields) > 0 }

// Message returns every field message joined with FieldErrorSeparator, in
// field-name order, or the detail / status text when there are none.
func (e *HTTPError) Message() string {
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		var msgs []string
		for _, name := range names {
			msgs = append(msgs, e.Fields[name]...)
		}
		return strings.Join(msgs, FieldErrorSeparator)
	}
	if e.Detail != "" {
		return e.Detail
	}
	return http.StatusText(e.Status)
}

// IsStatus reports whether err is an *HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == status
}

// newHTTPError parses the usual REST error bodies: {"detail": "..."},
// {"field": ["msg", ...]}, {"non_field_errors": [...]} and nested objects.
// Bodies that are not JSON objects end up in Detail verbatim (trimmed).
func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	e := &HTTPError{Status: status, Method: method, Path: path}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		e.Detail = strings.TrimSpace(string(body))
		if len(e.Detail) > 200 {
			e.Detail = e.Detail[:200]
		}
		return e
	}

	for key, val := range obj {
		if key == "detail" {
			if s, ok := val.(string); ok {
				e.Detail = s
				continue
			}
		}
		msgs := flattenMessages(val)
		if len(msgs) == 0 {
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string][]string)
		}
		e.Fields[key] = append(e.Fields[key], msgs...)
	}
	return e
}

func flattenMessages(v any) []string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, flattenMessages(item)...)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			out = append(out, flattenMessages(t[k])...)
		}
		return out
	case nil:
		return nil
	default:
		return []string{fmt.Sprint(t)}
	}
}
