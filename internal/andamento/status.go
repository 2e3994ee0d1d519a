package andamento

import (
	"time"

	"github.com/google/uuid"
)

// Mudanca descreve a alteração de um campo de data: ausente, limpo (Valor nil) ou definido.
type Mudanca struct {
	Presente bool
	Valor    *time.Time
}

// Definir cria uma Mudanca com valor.
func Definir(t time.Time) Mudanca {
	return Mudanca{Presente: true, Valor: &t}
}

// Estado reúne os campos que determinam o status.
type Estado struct {
	Prorrogacao          *time.Time
	Resposta             *time.Time
	UsuarioProrrogacaoID *uuid.UUID
	Status               Status
}

// EstadoDe extrai o estado de um andamento.
func EstadoDe(a Andamento) Estado {
	return Estado{
		Prorrogacao:          a.Prorrogacao,
		Resposta:             a.Resposta,
		UsuarioProrrogacaoID: a.UsuarioProrrogacaoID,
		Status:               a.Status,
	}
}

// StatusDe calcula o status: resposta prevalece sobre prorrogação.
func StatusDe(prorrogacao, resposta *time.Time) Status {
	switch {
	case resposta != nil:
		return StatusConcluido
	case prorrogacao != nil:
		return StatusProrrogado
	default:
		return StatusEmAndamento
	}
}

// Derivar aplica as mudanças ao estado atual e recalcula o status.
// Definir prorrogação registra usuarioID como autor; limpá-la apaga o autor.
func Derivar(atual Estado, prorrogacao, resposta Mudanca, usuarioID uuid.UUID) Estado {
	novo := atual

	if prorrogacao.Presente {
		novo.Prorrogacao = prorrogacao.Valor
		if prorrogacao.Valor != nil {
			autor := usuarioID
			novo.UsuarioProrrogacaoID = &autor
		} else {
			novo.UsuarioProrrogacaoID = nil
		}
	}
	if resposta.Presente {
		novo.Resposta = resposta.Valor
	}

	novo.Status = StatusDe(novo.Prorrogacao, novo.Resposta)
	return novo
}

func (a *Andamento) aplicar(e Estado) {
	a.Prorrogacao = e.Prorrogacao
	a.Resposta = e.Resposta
	a.UsuarioProrrogacaoID = e.UsuarioProrrogacaoID
	a.Status = e.Status
}
