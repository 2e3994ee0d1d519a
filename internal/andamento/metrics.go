package andamento

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var loteItensTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "antares_andamentos_lote_itens_total",
		Help: "Itens processados em operações de lote de andamentos",
	},
	[]string{"operacao", "resultado"},
)
