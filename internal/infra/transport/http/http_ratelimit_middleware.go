package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	context_ "github.com/mkrupp/socialsvc/internal/infra/context"
	"github.com/mkrupp/socialsvc/internal/infra/logging"
)

// RateLimitedMessage is returned to clients exceeding their request budget.
const RateLimitedMessage = "Too many requests, please slow down."

const (
	// DefaultRateMaxClients bounds the number of tracked clients when no limit is configured.
	DefaultRateMaxClients = 10000

	limiterSweepInterval = time.Minute
	minLimiterIdleTTL    = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a token-bucket budget per client address.
// It tracks at most maxClients clients; when full, idle clients are dropped
// first and then the least recently seen one.
type RateLimiter struct {
	limit      rate.Limit
	burst      int
	maxClients int
	idleTTL    time.Duration
	log        logging.Logger

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing perSecond sustained requests and
// bursts of up to burst requests for every client, tracking up to maxClients
// clients at once.
func NewRateLimiter(perSecond float64, burst, maxClients int, log logging.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}

	if maxClients < 1 {
		maxClients = DefaultRateMaxClients
	}

	return &RateLimiter{
		limit:      rate.Limit(perSecond),
		burst:      burst,
		maxClients: maxClients,
		idleTTL:    idleTTL(perSecond, burst),
		log:        log,
		clients:    make(map[string]*clientLimiter),
		lastSweep:  time.Now(),
		now:        time.Now,
	}
}

// idleTTL is how long a bucket takes to refill completely. A client idle for
// longer is indistinguishable from a new one and can be forgotten.
func idleTTL(perSecond float64, burst int) time.Duration {
	if perSecond <= 0 {
		return minLimiterIdleTTL
	}

	refill := time.Duration(float64(burst) / perSecond * float64(time.Second))

	return max(minLimiterIdleTTL, refill)
}

// Allow reports whether the client identified by key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if now.Sub(l.lastSweep) > limiterSweepInterval {
		l.sweep(now)
	}

	client, ok := l.clients[key]
	if !ok {
		if len(l.clients) >= l.maxClients {
			l.sweep(now)
		}

		if len(l.clients) >= l.maxClients {
			l.evictOldest()
		}

		client = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = client
	}

	client.lastSeen = now

	return client.limiter.AllowN(now, 1)
}

// Len returns the number of clients currently tracked.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.clients)
}

func (l *RateLimiter) sweep(now time.Time) {
	for key, client := range l.clients {
		if now.Sub(client.lastSeen) > l.idleTTL {
			delete(l.clients, key)
		}
	}

	l.lastSweep = now
}

func (l *RateLimiter) evictOldest() {
	var (
		oldestKey  string
		oldestSeen time.Time
		found      bool
	)

	for key, client := range l.clients {
		if !found || client.lastSeen.Before(oldestSeen) {
			oldestKey, oldestSeen, found = key, client.lastSeen, true
		}
	}

	if found {
		delete(l.clients, oldestKey)
	}
}

// retryAfter is the number of whole seconds until one token refills.
func (l *RateLimiter) retryAfter() int {
	if l.limit <= 0 {
		return 1
	}

	return max(1, int(math.Ceil(1/float64(l.limit))))
}

// Middleware rejects requests beyond the client's budget with 429.
// The client is identified by the address TracingMiddleware put in the context.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := context_.ClientAddrFromContext(r.Context())
		if !ok {
			key = peerHost(r.RemoteAddr)
		}

		if !l.Allow(key) {
			l.log.WarnContext(r.Context(), "rate limited", slog.Group("http",
				"uri", r.RequestURI,
				"method", r.Method,
			))

			w.Header().Set("Retry-After", strconv.Itoa(l.retryAfter()))
			_ = WriteAPIError(w, http.StatusTooManyRequests, RateLimitedMessage)

			return
		}

		next.ServeHTTP(w, r)
	})
}
