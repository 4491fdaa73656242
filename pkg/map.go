package pkg

type Map[K comparable, V any] map[K]V

func (m Map[K, V]) Get(key K) V {
	return m[key]
}

func (m Map[K, V]) Set(key K, value V) {
	m[key] = value
}

func (m Map[K, V]) Has(key K) bool {
	_, ok := m[key]
	return ok
}

func (m Map[K, V]) Delete(key K) {
	delete(m, key)
}

func (m Map[K, V]) Keys() []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func (m Map[K, V]) Clone() Map[K, V] {
	c := make(Map[K, V], len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Set is a Map with no values, used for index buckets.
type Set[K comparable] map[K]struct{}

func (s Set[K]) Add(key K) {
	s[key] = struct{}{}
}

func (s Set[K]) Has(key K) bool {
	_, ok := s[key]
	return ok
}

// Remove reports whether key was actually a member.
func (s Set[K]) Remove(key K) bool {
	_, ok := s[key]
	delete(s, key)
	return ok
}

func (s Set[K]) Union(other Set[K]) {
	for k := range other {
		s[k] = struct{}{}
	}
}

func (s Set[K]) Intersect(other Set[K]) {
	for k := range s {
		if !other.Has(k) {
			delete(s, k)
		}
	}
}
