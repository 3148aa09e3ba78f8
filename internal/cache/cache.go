// Package cache holds short-lived in-memory copies of server data, such as
// the profile fetched for a bearer token.
package cache

// Cache is a keyed in-memory store with expiry.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Purge drops every entry.
	Purge()
	Size() int
}

var _ Cache[int] = (*LRUCache[int])(nil)
