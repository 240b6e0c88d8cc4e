// Package models holds the records exchanged with the fleet backend and the
// tolerant page decoder used by every list screen.
package models

// Record is implemented by every entity with a server-assigned id.
type Record interface {
	GetID() int64
}

// Ref is a nested {id, name} reference as the backend embeds it in parents.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (r *Ref) GetID() int64 { return r.ID }

// RefName returns the name of a possibly nil reference.
func RefName(r *Ref) string {
	if r == nil {
		return ""
	}
	return r.Name
}
