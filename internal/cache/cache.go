package cache

import (
	"time"

	"github.com/ppiankov/omnieval/internal/model"
)

// Cache holds values by string key. Values are shared between callers and
// must be treated as immutable.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V, ttl time.Duration)
	Delete(key string)
	Clear()
}

// EvaluationKey identifies the sanitized evaluation of one article source
func EvaluationKey(key string, src model.Source) string {
	return "omnieval:v1:evaluation:" + key + ":" + string(src)
}

// Noop never stores anything; used when caching is disabled
type Noop[V any] struct{}

// Get always misses
func (Noop[V]) Get(string) (V, bool) {
	var zero V
	return zero, false
}

// Set discards the value
func (Noop[V]) Set(string, V, time.Duration) {}

// Delete does nothing
func (Noop[V]) Delete(string) {}

// Clear does nothing
func (Noop[V]) Clear() {}
