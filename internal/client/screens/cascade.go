package screens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
)

var (
	ErrInvalidChoice = errors.New("invalid choice")
	ErrStale         = errors.New("result superseded by a newer request")
)

// Slot is one level of a cascade. Load receives the id selected in the
// parent slot (0 for the root).
type Slot struct {
	Field string
	Label string
	Load  func(ctx context.Context, parentID int64) ([]Option, error)
}

// Cascade is an ordered chain of dependent selections. Selecting a value
// resets every descendant and reloads the direct child's options.
type Cascade struct {
	slots []Slot

	mu       sync.Mutex
	selected []int64
	labels   []string
	options  [][]Option
	gens     []Generation
}

func NewCascade(slots ...Slot) *Cascade {
	return &Cascade{
		slots:    slots,
		selected: make([]int64, len(slots)),
		labels:   make([]string, len(slots)),
		options:  make([][]Option, len(slots)),
		gens:     make([]Generation, len(slots)),
	}
}

func (c *Cascade) Len() int { return len(c.slots) }

func (c *Cascade) Slot(level int) Slot { return c.slots[level] }

// Init loads the root options.
func (c *Cascade) Init(ctx context.Context) error {
	if len(c.slots) == 0 {
		return nil
	}
	return c.load(ctx, 0, 0)
}

func (c *Cascade) Options(level int) []Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Option(nil), c.options[level]...)
}

func (c *Cascade) Selected(level int) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected[level]
}

// Select picks id at level. Descendant selections and options are cleared
// and the next level is reloaded for the new parent.
func (c *Cascade) Select(ctx context.Context, level int, id int64) error {
	if level < 0 || level >= len(c.slots) {
		return fmt.Errorf("%w: level %d", ErrInvalidChoice, level)
	}

	c.mu.Lock()
	label, ok := findOption(c.options[level], id)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s %d", ErrInvalidChoice, c.slots[level].Field, id)
	}
	c.selected[level] = id
	c.labels[level] = label
	for d := level + 1; d < len(c.slots); d++ {
		c.selected[d] = 0
		c.labels[d] = ""
		c.options[d] = nil
		c.gens[d].Next()
	}
	c.mu.Unlock()

	if level+1 < len(c.slots) {
		return c.load(ctx, level+1, id)
	}
	return nil
}

func (c *Cascade) load(ctx context.Context, level int, parentID int64) error {
	tag := c.gens[level].Next()

	opts, err := c.slots[level].Load(ctx, parentID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.gens[level].IsCurrent(tag) {
		return ErrStale
	}
	if err != nil {
		c.options[level] = nil
		return err
	}
	c.options[level] = opts
	return nil
}

// Fill copies the selections into f under each slot's field name.
func (c *Cascade) Fill(f Form) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.slots {
		if c.selected[i] == 0 {
			delete(f, s.Field)
			delete(f, LabelKey(s.Field))
			continue
		}
		f[s.Field] = strconv.FormatInt(c.selected[i], 10)
		f[LabelKey(s.Field)] = c.labels[i]
	}
}

func findOption(opts []Option, id int64) (string, bool) {
	want := strconv.FormatInt(id, 10)
	for _, o := range opts {
		if o.Value == want {
			return o.Label, true
		}
	}
	return "", false
}
