// Package cache holds small in-process caches for computed aggregates.
package cache

// Cache maps keys to computed values.
//
// Every Delete and Purge advances a generation counter. A reader that
// computes a value outside the cache takes Generation first and stores the
// result with SetAt, which drops the value when an invalidation happened in
// between.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	// SetAt stores data only if the cache is still at generation gen.
	SetAt(key string, data T, gen uint64) bool
	Delete(key string)
	Purge()
	Generation() uint64
	Size() int
}

var _ Cache[int] = (*LRUCache[int])(nil)
