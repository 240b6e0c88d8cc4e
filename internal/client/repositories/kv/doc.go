// Package kv is the local key/value store backing the token store and the
// response cache. Values are opaque bytes; callers own the encoding.
package kv
