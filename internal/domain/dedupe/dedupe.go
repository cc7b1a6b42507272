// Package dedupe tracks distinct identifiers, such as the transaction hashes
// seen within one wallet.
package dedupe

// Deduper records seen identifiers.
type Deduper interface {
	// SeenAndRecord reports whether id was already seen and records it if not.
	SeenAndRecord(id string) bool

	// Size returns the number of distinct identifiers recorded.
	Size() int
}

// inMemoryDeduper implements Deduper with a map. It is not safe for
// concurrent use; each wallet partition owns its own instance.
type inMemoryDeduper struct {
	seen     map[string]struct{}
	capacity int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{}, d.capacity)
	return d
}

// SeenAndRecord reports whether id was already seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(id string) bool {
	if _, exists := d.seen[id]; exists {
		return true
	}
	d.seen[id] = struct{}{}
	return false
}

// Size returns the number of distinct identifiers recorded.
func (d *inMemoryDeduper) Size() int {
	return len(d.seen)
}

// CountDistinct returns the number of distinct non-empty values in ids.
// Empty ids stand for absent values and are not counted.
func CountDistinct(ids []string) int {
	d := NewInMemoryDeduper(WithCapacity(len(ids)))
	for _, id := range ids {
		if id == "" {
			continue
		}
		d.SeenAndRecord(id)
	}
	return d.Size()
}
