package screens

import "sync/atomic"

// Generation hands out increasing tags. A result is applied only if its
// tag is still the latest.
type Generation struct {
	n atomic.Uint64
}

func (g *Generation) Next() uint64 { return g.n.Add(1) }

func (g *Generation) IsCurrent(tag uint64) bool { return g.n.Load() == tag }
