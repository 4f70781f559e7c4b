package cache

import "time"

// BytesCache stores serialized scan results with a TTL. The in-process and
// Redis implementations are interchangeable; the scanner does not care
// which one it gets.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
