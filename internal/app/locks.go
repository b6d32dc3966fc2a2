package service

import (
	"hash/fnv"
	"sync"
)

const stripeCount = 256

// stripes serialises work per key without a lock per key. Two keys that
// hash to the same stripe simply share a mutex.
type stripes [stripeCount]sync.Mutex

func (s *stripes) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	m := &s[h.Sum32()%stripeCount]
	m.Lock()
	return m.Unlock
}
