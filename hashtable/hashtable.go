// Package hashtable provides the generic chained hash table that
// backs the compiler's symbol tables.
package hashtable

// delta[i] is the difference between 2^i and the largest prime below
// 2^i. Table sizes walk this ladder so the bucket count is always
// prime.
var delta = [...]int{0, 0, 1, 1, 3, 1, 3, 1, 5, 3, 3, 9, 3, 1, 3, 19, 15,
	1, 5, 1, 3, 9, 3, 15, 3, 39, 5, 39, 57, 3, 35, 1}

// first rung of the ladder: 2^4 - 3 = 13 buckets
const initialSizeIndex = 4

type entry[K, V any] struct {
	key K
	val V
}

// A HashTab is an open hash table with chained buckets. The hash and
// key-equality functions are supplied at construction, so any key type
// can be used.
type HashTab[K, V any] struct {
	buckets [][]entry[K, V]
	n       int
	idx     int // current position on the size ladder
	maxLoad float64
	hash    func(K) uint32
	eq      func(K, K) bool
}

// New returns an empty table that grows to the next prime size
// whenever an insert finds the load factor at or above maxLoad.
func New[K, V any](maxLoad float64, hash func(K) uint32, eq func(K, K) bool) *HashTab[K, V] {
	return &HashTab[K, V]{
		buckets: make([][]entry[K, V], sizeFor(initialSizeIndex)),
		idx:     initialSizeIndex,
		maxLoad: maxLoad,
		hash:    hash,
		eq:      eq,
	}
}

func sizeFor(idx int) int {
	return 1<<idx - delta[idx]
}

// Insert adds a key-value pair. It reports false and leaves the table
// unchanged if the key is already present.
func (t *HashTab[K, V]) Insert(key K, val V) bool {
	if t.LoadFactor() >= t.maxLoad {
		t.grow()
	}
	if _, ok := t.Search(key); ok {
		return false
	}
	b := t.bucket(key)
	t.buckets[b] = append(t.buckets[b], entry[K, V]{key, val})
	t.n++
	return true
}

// Search returns the value stored under key.
func (t *HashTab[K, V]) Search(key K) (V, bool) {
	for _, e := range t.buckets[t.bucket(key)] {
		if t.eq(key, e.key) {
			return e.val, true
		}
	}
	var zero V
	return zero, false
}

// Each calls f for every pair in the table, in no particular order.
func (t *HashTab[K, V]) Each(f func(key K, val V)) {
	for _, b := range t.buckets {
		for _, e := range b {
			f(e.key, e.val)
		}
	}
}

// Len returns the number of entries.
func (t *HashTab[K, V]) Len() int { return t.n }

// Size returns the number of buckets, one of the primes on the ladder.
func (t *HashTab[K, V]) Size() int { return len(t.buckets) }

// LoadFactor returns the entries-per-bucket ratio.
func (t *HashTab[K, V]) LoadFactor() float64 {
	return float64(t.n) / float64(len(t.buckets))
}

func (t *HashTab[K, V]) bucket(key K) int {
	return int(t.hash(key) % uint32(len(t.buckets)))
}

// grow rebuilds the table one rung up the ladder, re-inserting every
// entry into the new buckets.
func (t *HashTab[K, V]) grow() {
	if t.idx+1 >= len(delta) {
		return
	}
	old := t.buckets
	t.idx++
	t.buckets = make([][]entry[K, V], sizeFor(t.idx))
	for _, b := range old {
		for _, e := range b {
			nb := t.bucket(e.key)
			t.buckets[nb] = append(t.buckets[nb], e)
		}
	}
}
