package processo

import (
	"time"

	"github.com/smdu-sp/antares-backend/internal/andamento"
	"github.com/smdu-sp/antares-backend/internal/util"
)

// Classificacao indica a situação de prazo de um processo.
type Classificacao struct {
	VencendoHoje bool
	Atrasado     bool
}

// JanelaDoDia devolve o início (00:00) e o fim (23:59:59.999) do dia corrente em loc.
func JanelaDoDia(agora time.Time, loc *time.Location) (time.Time, time.Time) {
	return util.InicioDoDia(agora, loc), util.FimDoDia(agora, loc)
}

// Classificar avalia os andamentos de um processo. Somente andamentos ativos e
// EM_ANDAMENTO contam; o prazo efetivo é a prorrogação quando houver.
func Classificar(andamentos []andamento.Andamento, agora time.Time, loc *time.Location) Classificacao {
	inicio, fim := JanelaDoDia(agora, loc)

	var c Classificacao
	for _, a := range andamentos {
		if !a.Ativo || a.Status != andamento.StatusEmAndamento {
			continue
		}
		prazo := a.PrazoEfetivo()
		switch {
		case prazo.Before(inicio):
			c.Atrasado = true
		case !prazo.After(fim):
			c.VencendoHoje = true
		}
	}
	return c
}
