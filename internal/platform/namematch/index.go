package namematch

// Kind records which rule produced a match.
type Kind string

const (
	KindNone     Kind = ""
	KindExact    Kind = "exact"
	KindAlias    Kind = "alias"
	KindContains Kind = "contains"
)

type indexed[T any] struct {
	normalized string
	value      T
}

// Index resolves a name to one stored value. Lookup tries the exact
// normalized name, then each alias, then a containment match on word
// boundaries that must be unambiguous.
type Index[T any] struct {
	exact   map[string]T
	entries []indexed[T]
}

// NewIndex builds an index keyed by nameOf. The first value wins when two
// values normalize to the same name.
func NewIndex[T any](values []T, nameOf func(T) string) *Index[T] {
	idx := &Index[T]{
		exact:   make(map[string]T, len(values)),
		entries: make([]indexed[T], 0, len(values)),
	}
	for _, v := range values {
		key := Normalize(nameOf(v))
		if key == "" {
			continue
		}
		if _, exists := idx.exact[key]; exists {
			continue
		}
		idx.exact[key] = v
		idx.entries = append(idx.entries, indexed[T]{normalized: key, value: v})
	}
	return idx
}

func (idx *Index[T]) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Exact matches the normalized name only.
func (idx *Index[T]) Exact(name string) (T, bool) {
	var zero T
	if idx == nil {
		return zero, false
	}
	key := Normalize(name)
	if key == "" {
		return zero, false
	}
	v, ok := idx.exact[key]
	return v, ok
}

// Lookup applies exact, alias and containment matching in that order.
func (idx *Index[T]) Lookup(name string, aliases ...string) (T, Kind) {
	var zero T
	if idx == nil {
		return zero, KindNone
	}
	if v, ok := idx.Exact(name); ok {
		return v, KindExact
	}
	for _, alias := range aliases {
		if v, ok := idx.Exact(alias); ok {
			return v, KindAlias
		}
	}

	if v, ok := idx.containing(Normalize(name)); ok {
		return v, KindContains
	}
	return zero, KindNone
}

func (idx *Index[T]) containing(key string) (T, bool) {
	var zero T
	if key == "" {
		return zero, false
	}

	var (
		found T
		hits  int
	)
	for _, e := range idx.entries {
		if containsWords(e.normalized, key) || containsWords(key, e.normalized) {
			found = e.value
			hits++
			if hits > 1 {
				return zero, false
			}
		}
	}
	return found, hits == 1
}
