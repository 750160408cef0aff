// Package mphf implements a minimal perfect hash map over a fixed set of
// string keys, built with the hash, displace and compress method.
//
// The table is two parallel arrays. salts has one slot per primary bucket
// and entries one slot per key. A salt of zero marks an empty bucket, a
// negative salt s stores the entry index directly as -(s+1), and a positive
// salt s means the key has to be hashed again with salt s-1.
package mphf

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

const (
	fnvOffsetBasis = 0xcbf29ce484222325
	fnvPrime       = 0x100000001b3

	// maxSalt bounds the search for a secondary salt of a colliding bucket.
	maxSalt = 100
)

// Entry is a key and its value.
type Entry[V any] struct {
	Key   string
	Value V
}

// Map is an immutable minimal perfect hash map. It is safe for concurrent
// use once built.
type Map[V any] struct {
	salts   []int16
	entries []Entry[V]
}

// Hash is FNV-1a with salt added to the accumulator before every byte,
// folded and reduced to [0, size).
func Hash(key string, salt uint64, size int) int {
	h := uint64(fnvOffsetBasis)
	for i := 0; i < len(key); i++ {
		h = (uint64(key[i]) ^ (h + salt)) * fnvPrime
	}
	h ^= h >> 32
	h ^= h >> 16
	return int(h % uint64(size))
}

// Build computes the salts and entry placement for entries. Keys must be
// unique.
func Build[V any](entries []Entry[V]) (*Map[V], error) {
	if len(entries) == 0 {
		return &Map[V]{}, nil
	}
	if len(entries) > math.MaxInt16 {
		return nil, fmt.Errorf("mphf: too many keys: %d", len(entries))
	}

	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b Entry[V]) int { return cmp.Compare(a.Key, b.Key) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Key == sorted[i-1].Key {
			return nil, fmt.Errorf("mphf: duplicate key %q", sorted[i].Key)
		}
	}

	size := largestPrime(len(sorted))
	salts := make([]int16, size)
	slots := make([]*Entry[V], len(sorted))

	collisions, singles := buckets(sorted, size)
	for _, bucket := range collisions {
		salt, positions, ok := findSalt(bucket, slots, size)
		if !ok {
			keys := make([]string, len(bucket))
			for i, e := range bucket {
				keys[i] = e.Key
			}
			return nil, fmt.Errorf("mphf: no salt places keys %q", keys)
		}
		salts[Hash(bucket[0].Key, 0, size)] = int16(salt + 1)
		for i, pos := range positions {
			slots[pos] = &bucket[i]
		}
	}

	free := 0
	for i := range singles {
		for slots[free] != nil {
			free++
		}
		slots[free] = &singles[i]
		salts[Hash(singles[i].Key, 0, size)] = int16(-free - 1)
	}

	m := &Map[V]{salts: salts, entries: make([]Entry[V], len(slots))}
	for i, e := range slots {
		m.entries[i] = *e
	}
	return m, nil
}

// buckets groups entries by their primary hash. Colliding buckets are
// returned largest first, in key order for equal sizes.
func buckets[V any](sorted []Entry[V], size int) (collisions [][]Entry[V], singles []Entry[V]) {
	index := make(map[int]int)
	var all [][]Entry[V]
	for _, e := range sorted {
		h := Hash(e.Key, 0, size)
		i, ok := index[h]
		if !ok {
			i = len(all)
			index[h] = i
			all = append(all, nil)
		}
		all[i] = append(all[i], e)
	}
	for _, b := range all {
		if len(b) > 1 {
			collisions = append(collisions, b)
		} else {
			singles = append(singles, b[0])
		}
	}
	slices.SortStableFunc(collisions, func(a, b []Entry[V]) int { return cmp.Compare(len(b), len(a)) })
	return collisions, singles
}

func findSalt[V any](bucket []Entry[V], slots []*Entry[V], size int) (int, []int, bool) {
	positions := make([]int, len(bucket))
next:
	for salt := 1; salt <= maxSalt; salt++ {
		for i, e := range bucket {
			pos := Hash(e.Key, uint64(salt), size)
			if slots[pos] != nil || slices.Contains(positions[:i], pos) {
				continue next
			}
			positions[i] = pos
		}
		return salt, positions, true
	}
	return 0, nil, false
}

func largestPrime(n int) int {
	for ; n > 2; n-- {
		if isPrime(n) {
			return n
		}
	}
	return max(n, 1)
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// Get returns the value stored for key.
func (m *Map[V]) Get(key string) (V, bool) {
	var zero V
	i, ok := m.indexOf(key)
	if !ok {
		return zero, false
	}
	e := &m.entries[i]
	if e.Key != key {
		return zero, false
	}
	return e.Value, true
}

func (m *Map[V]) indexOf(key string) (int, bool) {
	if len(m.salts) == 0 {
		return 0, false
	}
	salt := m.salts[Hash(key, 0, len(m.salts))]
	switch {
	case salt == 0:
		return 0, false
	case salt < 0:
		return int(-salt - 1), true
	}
	return Hash(key, uint64(salt-1), len(m.salts)), true
}

// Len returns the number of keys.
func (m *Map[V]) Len() int { return len(m.entries) }

// Entries returns the entries in table order.
func (m *Map[V]) Entries() []Entry[V] { return m.entries }
