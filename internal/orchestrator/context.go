package orchestrator

import (
	"sync"
)

// Context is handed to every Stage's Run function. It carries the
// immutable snapshot plus a shared overlay for writes, and a concurrency-
// safe bag of per-stage outputs that later stages read by StageID.
type Context struct {
	Snapshot *Snapshot
	Overlay  *Overlay

	mu      sync.RWMutex
	outputs map[StageID]any
}

// NewContext returns a Context over snapshot with a fresh overlay and
// empty output bag.
func NewContext(snapshot *Snapshot) *Context {
	return &Context{
		Snapshot: snapshot,
		Overlay:  NewOverlay(snapshot),
		outputs:  make(map[StageID]any),
	}
}

// SetOutput records stage id's output for downstream stages to consume.
func (c *Context) SetOutput(id StageID, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.outputs[id] = v
}

// Output returns the previously recorded output of stage id, if any.
func (c *Context) Output(id StageID) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.outputs[id]

	return v, ok
}
