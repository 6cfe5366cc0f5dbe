package character

import "errors"

// ErrEmptyRegistry is returned when the reference document yielded no character.
var ErrEmptyRegistry = errors.New("character registry is empty")

// Record is the structured profile of one character. Records are immutable once extracted.
type Record struct {
	Name     string   `json:"name"`
	Race     string   `json:"race"`
	Greeting string   `json:"greeting"`
	Context  string   `json:"context"`
	Quotes   []string `json:"quotes"`
}

// Registry maps character names to records in document order.
// It is built once and never mutated, so it is shared across sessions without locking.
type Registry struct {
	names   []string
	records map[string]Record
}

// NewRegistry builds a registry from records in order. When two records share a
// name the later one wins and the name keeps the position of its first occurrence.
func NewRegistry(records []Record) *Registry {
	r := &Registry{records: make(map[string]Record, len(records))}
	for _, rec := range records {
		if _, seen := r.records[rec.Name]; !seen {
			r.names = append(r.names, rec.Name)
		}
		r.records[rec.Name] = rec
	}
	return r
}

func (r *Registry) Get(name string) (Record, bool) {
	rec, ok := r.records[name]
	if !ok {
		return Record{}, false
	}
	rec.Quotes = append(make([]string, 0, len(rec.Quotes)), rec.Quotes...)
	return rec, true
}

func (r *Registry) Contains(name string) bool {
	_, ok := r.records[name]
	return ok
}

// Names returns the character names in document order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Registry) Len() int {
	return len(r.names)
}

// All returns every record in document order.
func (r *Registry) All() []Record {
	out := make([]Record, 0, len(r.names))
	for _, name := range r.names {
		rec, _ := r.Get(name)
		out = append(out, rec)
	}
	return out
}
