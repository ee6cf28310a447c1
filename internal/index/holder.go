package index

import (
	"errors"
	"sync/atomic"
)

// ErrNotLoaded is returned by Holder.Current before any index was stored.
var ErrNotLoaded = errors.New("index: not loaded")

// Holder is the process-wide slot for the current CatalogIndex. Readers
// never block; a rebuild stores a whole new index.
type Holder struct {
	cur atomic.Pointer[CatalogIndex]
}

func NewHolder(x *CatalogIndex) *Holder {
	h := &Holder{}
	if x != nil {
		h.cur.Store(x)
	}
	return h
}

// Current returns the index in use.
func (h *Holder) Current() (*CatalogIndex, error) {
	x := h.cur.Load()
	if x == nil {
		return nil, ErrNotLoaded
	}
	return x, nil
}

// Swap installs x and returns the previous index, if any.
func (h *Holder) Swap(x *CatalogIndex) *CatalogIndex {
	return h.cur.Swap(x)
}

func (h *Holder) Loaded() bool { return h.cur.Load() != nil }
