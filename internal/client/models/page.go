package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Page is one page of a list response.
type Page[T any] struct {
	Results  []T
	Next     string
	Previous string
	Count    int
}

// HasNext reports whether the server announced a following page.
func (p Page[T]) HasNext() bool { return p.Next != "" }

type pageEnvelope[T any] struct {
	Results  []T     `json:"results"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Count    int     `json:"count"`
}

// ErrUnrecognizedShape is returned alongside an empty page when the body is
// neither an array nor a {results, ...} object.
var ErrUnrecognizedShape = errors.New("unrecognized list response shape")

// DecodePage accepts either a bare JSON array or a paginated envelope
// {results, next, previous, count}. Any other body yields an empty page and
// ErrUnrecognizedShape so the caller can log it; the page itself is always
// usable.
func DecodePage[T any](body []byte) (Page[T], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Page[T]{Results: []T{}}, ErrUnrecognizedShape
	}

	switch trimmed[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page[T]{Results: []T{}}, errors.Join(ErrUnrecognizedShape, err)
		}
		if items == nil {
			items = []T{}
		}
		return Page[T]{Results: items, Count: len(items)}, nil

	case '{':
		var env pageEnvelope[T]
		if err := json.Unmarshal(trimmed, &env); err != nil || env.Results == nil {
			return Page[T]{Results: []T{}}, errors.Join(ErrUnrecognizedShape, err)
		}
		p := Page[T]{Results: env.Results, Count: env.Count}
		if env.Next != nil {
			p.Next = *env.Next
		}
		if env.Previous != nil {
			p.Previous = *env.Previous
		}
		if p.Count == 0 {
			p.Count = len(p.Results)
		}
		return p, nil
	}

	return Page[T]{Results: []T{}}, ErrUnrecognizedShape
}
