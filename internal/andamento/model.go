package andamento

import (
	"time"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/util"
)

// Status representa a situação derivada de um andamento.
type Status string

const (
	StatusEmAndamento Status = "EM_ANDAMENTO"
	StatusProrrogado  Status = "PRORROGADO"
	StatusConcluido   Status = "CONCLUIDO"
)

// Valido indica se o status é conhecido.
func (s Status) Valido() bool {
	switch s {
	case StatusEmAndamento, StatusProrrogado, StatusConcluido:
		return true
	}
	return false
}

// Andamento representa o envio de um processo de uma unidade a outra.
type Andamento struct {
	ID                   uuid.UUID  `json:"id"`
	ProcessoID           uuid.UUID  `json:"processo_id"`
	Origem               string     `json:"origem"`
	Destino              string     `json:"destino"`
	DataEnvio            time.Time  `json:"data_envio"`
	Prazo                time.Time  `json:"prazo"`
	Prorrogacao          *time.Time `json:"prorrogacao"`
	Resposta             *time.Time `json:"resposta"`
	Status               Status     `json:"status"`
	Observacao           *string    `json:"observacao"`
	UsuarioID            uuid.UUID  `json:"usuario_id"`
	UsuarioProrrogacaoID *uuid.UUID `json:"usuario_prorrogacao_id"`
	Ativo                bool       `json:"ativo"`
	UnidadeID            uuid.UUID  `json:"-"`
	CriadoEm             time.Time  `json:"criado_em"`
	AtualizadoEm         time.Time  `json:"atualizado_em"`
}

// PrazoEfetivo devolve a prorrogação quando houver, senão o prazo original.
func (a Andamento) PrazoEfetivo() time.Time {
	if a.Prorrogacao != nil {
		return *a.Prorrogacao
	}
	return a.Prazo
}

// NovoAndamento contém os campos gravados na inserção.
type NovoAndamento struct {
	ProcessoID uuid.UUID
	Origem     string
	Destino    string
	DataEnvio  time.Time
	Prazo      time.Time
	Resposta   *time.Time
	Status     Status
	Observacao *string
	UsuarioID  uuid.UUID
}

// ProcessoRef resume o processo dono do andamento.
type ProcessoRef struct {
	ID        uuid.UUID
	UnidadeID uuid.UUID
	Ativo     bool
}

// CriarInput é o corpo aceito na criação.
type CriarInput struct {
	ProcessoID uuid.UUID `json:"processo_id"`
	Origem     string    `json:"origem"`
	Destino    string    `json:"destino"`
	DataEnvio  string    `json:"data_envio"`
	Prazo      string    `json:"prazo"`
	Observacao *string   `json:"observacao"`
}

// AtualizarInput é o corpo aceito na atualização parcial.
// Status e Conclusao existem apenas para serem rejeitados.
type AtualizarInput struct {
	Origem      *string   `json:"origem"`
	Destino     *string   `json:"destino"`
	DataEnvio   *string   `json:"data_envio"`
	Prazo       *string   `json:"prazo"`
	Observacao  *string   `json:"observacao"`
	Prorrogacao CampoData `json:"prorrogacao"`
	Resposta    CampoData `json:"resposta"`
	Status      *string   `json:"status"`
	Conclusao   CampoData `json:"conclusao"`
}

// ProrrogarInput é o corpo de PATCH /andamentos/{id}/prorrogar.
type ProrrogarInput struct {
	Prorrogacao string  `json:"prorrogacao"`
	Observacao  *string `json:"observacao"`
}

// ConcluirInput é o corpo de PATCH /andamentos/{id}/concluir; sem resposta usa o momento atual.
type ConcluirInput struct {
	Resposta   string  `json:"resposta"`
	Observacao *string `json:"observacao"`
}

const (
	OperacaoProrrogar = "prorrogar"
	OperacaoConcluir  = "concluir"
	OperacaoExcluir   = "excluir"
)

// LoteInput aplica uma operação a vários andamentos.
type LoteInput struct {
	IDs         []string `json:"ids"`
	Operacao    string   `json:"operacao"`
	Prorrogacao string   `json:"prorrogacao"`
	Resposta    string   `json:"resposta"`
}

// ErroLote descreve a falha de um item do lote.
type ErroLote struct {
	ID   string `json:"id"`
	Erro string `json:"erro"`
}

// LoteResultado resume o processamento do lote.
type LoteResultado struct {
	Processados int        `json:"processados"`
	Erros       []ErroLote `json:"erros"`
}

// Filtro permite filtrar a listagem.
type Filtro struct {
	ProcessoID *uuid.UUID
	Status     Status
	Busca      string
	UnidadeID  *uuid.UUID
	Ativo      *bool
	Paginacao  util.Paginacao
}
