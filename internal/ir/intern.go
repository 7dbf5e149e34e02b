package ir

import "sync"

// Interner hands out a stable handle for each distinct string it sees.
// Equal strings always return the same handle; this is the core invariant
// the rest of the pipeline relies on when comparing FQNs and identifiers
// by handle instead of by string content. Grounded on the teacher's
// pkg/toposort.SymbolTable, generalized into a standalone package so the
// parser adapter and IR builder can share one interner per run.
type Interner struct {
	mu      sync.RWMutex
	strToID map[string]int32
	idToStr []string
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{strToID: make(map[string]int32)}
}

// Intern returns s's handle, assigning a new one on first sight.
func (in *Interner) Intern(s string) int32 {
	in.mu.RLock()
	id, ok := in.strToID[s]
	in.mu.RUnlock()

	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	// Re-check under the write lock: another goroutine may have interned
	// s between the RUnlock above and this Lock.
	if id, ok := in.strToID[s]; ok {
		return id
	}

	id = int32(len(in.idToStr))
	in.idToStr = append(in.idToStr, s)
	in.strToID[s] = id

	return id
}

// Resolve returns the string for a handle, or "" if the handle is unknown.
func (in *Interner) Resolve(id int32) string {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if id < 0 || int(id) >= len(in.idToStr) {
		return ""
	}

	return in.idToStr[id]
}

// Len returns the number of distinct strings interned so far.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()

	return len(in.idToStr)
}
