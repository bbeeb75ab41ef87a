package service

import (
	"hash/fnv"
	"sync"
)

// keyedMutex serializes work per key over a fixed set of lock stripes.
// The same key always maps to the same stripe, so two requests for one
// session or document never run concurrently. Stripes are shared by hash,
// which keeps memory constant instead of accumulating one lock object per
// id for the process lifetime.
type keyedMutex struct {
	stripes [64]sync.Mutex
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &k.stripes[h.Sum32()%uint32(len(k.stripes))]
}
