package intensity

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a store lookup matches no entry.
var ErrNotFound = errors.New("intensity: result not found")

// Store keeps named result sets, one ordered slot list per result kind
// (for example "intensities" or "quant"). Entries are addressed by
// exact line identifier or element symbol; a Store is not safe for
// concurrent use.
type Store struct {
	kinds map[string][]Result
}

// NewStore creates an empty result store.
func NewStore() *Store {
	return &Store{kinds: make(map[string][]Result)}
}

// Put inserts r under kind, overwriting the slot holding the same line
// and appending otherwise.
func (st *Store) Put(kind string, r Result) {
	slots := st.kinds[kind]
	for i := range slots {
		if slots[i].Line == r.Line {
			slots[i] = r
			return
		}
	}
	st.kinds[kind] = append(slots, r)
}

// Get returns the entry for key under kind. key is either a full line
// identifier ("Fe_Ka") or an element symbol ("Fe"), matched exactly.
func (st *Store) Get(kind, key string) (Result, error) {
	for _, r := range st.kinds[kind] {
		if string(r.Line) == key || r.Line.Element() == key {
			return r, nil
		}
	}
	return Result{}, fmt.Errorf("%w: %q under %q", ErrNotFound, key, kind)
}

// Results returns the entries stored under kind in slot order.
func (st *Store) Results(kind string) []Result {
	slots := st.kinds[kind]
	out := make([]Result, len(slots))
	copy(out, slots)
	return out
}

// Normalize rescales the result set under kind so the per-pixel sum
// across all entries is one. Pixels whose sum is zero are left at zero.
// All entries must share one navigation shape.
func (st *Store) Normalize(kind string) error {
	slots := st.kinds[kind]
	if len(slots) == 0 {
		return fmt.Errorf("%w: no results under %q", ErrNotFound, kind)
	}

	n := len(slots[0].Data)
	for _, r := range slots {
		if len(r.Data) != n {
			return fmt.Errorf("intensity: result %q has %d pixels, want %d", r.Line, len(r.Data), n)
		}
	}

	total := make([]float64, n)
	for _, r := range slots {
		for px, v := range r.Data {
			total[px] += v
		}
	}

	for i := range slots {
		data := make([]float64, n)
		for px, v := range slots[i].Data {
			if total[px] != 0 {
				data[px] = v / total[px]
			}
		}
		slots[i].Data = data
	}
	return nil
}
