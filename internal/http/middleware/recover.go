package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var panicsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "antares_http_panics_total",
	Help: "Panics recuperados em handlers HTTP",
})

// Recover converte panic em 500 com envelope padrão.
// http.ErrAbortHandler é repassado para o servidor encerrar a conexão.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			panicsTotal.Inc()
			log.Error().
				Interface("panic", rec).
				Str("route", routePattern(r)).
				Str("path", r.URL.Path).
				Str("request_id", middleware.GetReqID(r.Context())).
				Bytes("stack", debug.Stack()).
				Msg("panic recuperado")

			writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
		}()
		next.ServeHTTP(w, r)
	})
}
