package processo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	respostasFinaisTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "antares_respostas_finais_total",
			Help: "Respostas finais recebidas, por forma de resolução",
		},
		[]string{"situacao"},
	)

	origensCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "antares_origens_cache_total",
			Help: "Consultas ao cache de origens de processo",
		},
		[]string{"resultado"},
	)
)
