// Package cache provides the generic insert-once cache used for resources
// that must stay valid once handed out.
//
//	c := cache.New[uint32, string]()
//	v, err := c.GetOrCreate(7, func() (string, error) { return "seven", nil })
//
// # Thread Safety
//
// Cache is safe for concurrent use. Lookups take a read lock; creation
// takes the write lock, so each key is created at most once.
package cache
