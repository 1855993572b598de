package index

import (
	"github.com/paveg/tablejoin/internal/keys"
)

// Constants for key map sizing.
const (
	keyMapLoadFactor     = 0.75 // resize when size exceeds capacity * load factor
	keyMapGrowthFactor   = 2    // growth factor for key map resize
	keyMapInitialBuckets = 64
)

// KeyMap is a hash map from key tuple to the rows sharing it, bucketed by
// the key's xxhash. Distinct keys are remembered in first-seen order.
type KeyMap struct {
	buckets  [][]*keyEntry
	capacity int
	order    []*keyEntry
}

type keyEntry struct {
	encoded string
	key     keys.Key
	rows    [][]string
}

// NewKeyMap creates a key map sized for roughly estimatedSize distinct keys.
func NewKeyMap(estimatedSize int) *KeyMap {
	capacity := nextPowerOfTwo(int(float64(estimatedSize)/keyMapLoadFactor) + 1)
	if capacity < keyMapInitialBuckets {
		capacity = keyMapInitialBuckets
	}
	return &KeyMap{
		buckets:  make([][]*keyEntry, capacity),
		capacity: capacity,
	}
}

// Put appends row to key's list, creating the entry when key is new. It
// returns the rows stored for key before this call.
func (km *KeyMap) Put(key keys.Key, row []string) [][]string {
	encoded := key.Encode()
	hash := key.Hash()
	if e := km.find(hash, encoded); e != nil {
		previous := e.rows
		e.rows = append(e.rows, row)
		return previous
	}

	e := &keyEntry{encoded: encoded, key: key, rows: [][]string{row}}
	idx := km.bucketIndex(hash)
	km.buckets[idx] = append(km.buckets[idx], e)
	km.order = append(km.order, e)

	if float64(len(km.order)) > float64(km.capacity)*keyMapLoadFactor {
		km.resize()
	}
	return nil
}

// Get retrieves the rows stored for key.
func (km *KeyMap) Get(key keys.Key) ([][]string, bool) {
	e := km.find(key.Hash(), key.Encode())
	if e == nil {
		return nil, false
	}
	return e.rows, true
}

// Len returns the number of distinct keys.
func (km *KeyMap) Len() int {
	return len(km.order)
}

// Keys returns the distinct keys in first-seen order.
func (km *KeyMap) Keys() []keys.Key {
	out := make([]keys.Key, len(km.order))
	for i, e := range km.order {
		out[i] = e.key
	}
	return out
}

func (km *KeyMap) find(hash uint64, encoded string) *keyEntry {
	for _, e := range km.buckets[km.bucketIndex(hash)] {
		if e.encoded == encoded {
			return e
		}
	}
	return nil
}

// bucketIndex masks the hash; capacity is always a power of two.
func (km *KeyMap) bucketIndex(hash uint64) int {
	//nolint:gosec // capacity is a positive power of two
	return int(hash & uint64(km.capacity-1))
}

// resize doubles the capacity and rehashes all entries.
func (km *KeyMap) resize() {
	km.capacity *= keyMapGrowthFactor
	km.buckets = make([][]*keyEntry, km.capacity)
	for _, e := range km.order {
		idx := km.bucketIndex(e.key.Hash())
		km.buckets[idx] = append(km.buckets[idx], e)
	}
}

// nextPowerOfTwo returns the next power of two >= n.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
