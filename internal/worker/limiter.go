package worker

import (
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long a client's bucket survives without requests
const DefaultIdleTTL = 10 * time.Minute

// Limiter implements per-client rate limiting. Clients are identified by
// an opaque key such as a remote IP. A client that stays idle for longer
// than the idle TTL loses its bucket and starts over with a full burst.
type Limiter struct {
	buckets      *gocache.Cache
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
	idleTTL      time.Duration
	lastSweep    atomic.Int64
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int, idleTTL time.Duration) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}

	// No janitor goroutine: expired buckets are swept on access.
	l := &Limiter{
		buckets:      gocache.New(idleTTL, 0),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
		idleTTL:      idleTTL,
	}
	l.lastSweep.Store(time.Now().UnixNano())
	return l
}

// Allow checks if a request is allowed without waiting
func (l *Limiter) Allow(client string) bool {
	l.sweep()
	return l.getLimiter(client).Allow()
}

func (l *Limiter) getLimiter(client string) *rate.Limiter {
	if v, ok := l.buckets.Get(client); ok {
		limiter := v.(*rate.Limiter)
		// Refresh the idle deadline
		l.buckets.SetDefault(client, limiter)
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring the lock
	if v, ok := l.buckets.Get(client); ok {
		return v.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.buckets.SetDefault(client, limiter)

	return limiter
}

// sweep drops idle buckets at most once per idle TTL
func (l *Limiter) sweep() {
	now := time.Now().UnixNano()
	last := l.lastSweep.Load()
	if now-last < int64(l.idleTTL) {
		return
	}
	if l.lastSweep.CompareAndSwap(last, now) {
		l.buckets.DeleteExpired()
	}
}

// Clients returns the number of clients holding a bucket
func (l *Limiter) Clients() int {
	l.sweep()
	return l.buckets.ItemCount()
}
