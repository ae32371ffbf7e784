package canvas

import (
	"sort"
	"sync"
)

// Document maps element ids to surfaces, standing in for a page the
// standalone renderer looks canvases up in.
type Document struct {
	mu       sync.RWMutex
	elements map[string]Surface
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{elements: make(map[string]Surface)}
}

// Set adds or replaces the surface registered under id.
func (d *Document) Set(id string, s Surface) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements[id] = s
}

// GetElementByID returns the surface registered under id.
func (d *Document) GetElementByID(id string) (Surface, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.elements[id]
	return s, ok && s != nil
}

// Remove deletes id and reports whether it was present.
func (d *Document) Remove(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.elements[id]
	delete(d.elements, id)
	return ok
}

// IDs returns the registered ids in sorted order.
func (d *Document) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.elements))
	for id := range d.elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
