package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/smdu-sp/antares-backend/internal/config"
)

var rateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "antares_http_rate_limited_total",
		Help: "Requisições recusadas por excesso de chamadas",
	},
	[]string{"escopo"},
)

const limiterTTL = 10 * time.Minute

// RateLimiter guarda um token bucket por chave (IP ou usuário).
type RateLimiter struct {
	escopo   string
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
	buckets  map[string]*bucket
	ultimaGC time.Time
}

type bucket struct {
	limiter *rate.Limiter
	visto   time.Time
}

// NewRateLimiter cria limitador para o escopo informado ("publico", "autenticado").
func NewRateLimiter(escopo string, cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		escopo:   escopo,
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		buckets:  make(map[string]*bucket),
		ultimaGC: time.Now(),
	}
}

// reservar consome um token; devolve a espera necessária quando não há token livre.
func (r *RateLimiter) reservar(chave string, agora time.Time) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[chave]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.buckets[chave] = b
	}
	b.visto = agora

	if agora.Sub(r.ultimaGC) > limiterTTL {
		for k, other := range r.buckets {
			if agora.Sub(other.visto) > limiterTTL {
				delete(r.buckets, k)
			}
		}
		r.ultimaGC = agora
	}

	if b.limiter.AllowN(agora, 1) {
		return 0, true
	}
	res := b.limiter.ReserveN(agora, 1)
	espera := res.DelayFrom(agora)
	res.CancelAt(agora)
	return espera, false
}

func (r *RateLimiter) limitar(next http.Handler, chave func(*http.Request) string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		k := chave(req)
		if k == "" {
			next.ServeHTTP(w, req)
			return
		}

		espera, ok := r.reservar(k, time.Now())
		if !ok {
			rateLimitedTotal.WithLabelValues(r.escopo).Inc()
			w.Header().Set("Retry-After", retryAfter(espera))
			writeError(w, http.StatusTooManyRequests, "RATE_LIMIT", "limite de requisições excedido")
			return
		}
		next.ServeHTTP(w, req)
	})
}

// IPRateLimit limita por IP; depende de chi RealIP ter reescrito RemoteAddr.
func IPRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return limiter.limitar(next, func(r *http.Request) string {
			return "ip:" + hostDe(r.RemoteAddr)
		})
	}
}

// UserRateLimit limita pelo usuário autenticado; requisições sem subject passam.
func UserRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return limiter.limitar(next, func(r *http.Request) string {
			subject := GetSubject(r.Context())
			if subject == "" {
				return ""
			}
			return "usuario:" + subject
		})
	}
}

func hostDe(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func retryAfter(espera time.Duration) string {
	segundos := int(math.Ceil(espera.Seconds()))
	if segundos < 1 {
		segundos = 1
	}
	return strconv.Itoa(segundos)
}
