package cache

import "fmt"

// GenerateKey joins a prefix and an identifier into a cache key.
func GenerateKey(prefix, id string) string {
	return prefix + ":" + id
}

// GenerateKeyWithParams builds a cache key from a prefix and any number of
// parameters, e.g. ("bars", "AAPL", "1y") -> "bars:AAPL:1y".
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	key := prefix
	for _, p := range params {
		key = fmt.Sprintf("%s:%v", key, p)
	}
	return key
}
