package processo

import (
	"time"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/andamento"
	"github.com/smdu-sp/antares-backend/internal/util"
)

// PrefixoSemNumero identifica números gerados para processos cadastrados sem número.
const PrefixoSemNumero = "SEM-NUMERO-"

// Processo representa um expediente administrativo acompanhado pelo sistema.
type Processo struct {
	ID                  uuid.UUID  `json:"id"`
	NumeroProcesso      string     `json:"numero_processo"`
	Assunto             string     `json:"assunto"`
	Origem              string     `json:"origem"`
	InteressadoID       *uuid.UUID `json:"interessado_id"`
	UnidadeRemetenteID  *uuid.UUID `json:"unidade_remetente_id"`
	DataRecebimento     *time.Time `json:"data_recebimento"`
	Prazo               *time.Time `json:"prazo"`
	DataRespostaFinal   *time.Time `json:"data_resposta_final"`
	RespostaFinal       *string    `json:"resposta_final"`
	UnidadeRespondidaID *string    `json:"unidade_respondida_id"`
	UnidadeID           uuid.UUID  `json:"unidade_id"`
	Ativo               bool       `json:"ativo"`
	VencendoHoje        bool       `json:"vencendo_hoje"`
	Atrasado            bool       `json:"atrasado"`
	CriadoEm            time.Time  `json:"criado_em"`
	AtualizadoEm        time.Time  `json:"atualizado_em"`
}

// Respondido indica se o processo já tem resposta final com a data e o texto informados.
func (p Processo) Respondido(data time.Time, texto string) bool {
	return p.DataRespostaFinal != nil && p.DataRespostaFinal.Equal(data) &&
		p.RespostaFinal != nil && *p.RespostaFinal == texto
}

// CriarInput é o corpo aceito na criação.
type CriarInput struct {
	NumeroProcesso     string     `json:"numero_processo"`
	Assunto            string     `json:"assunto"`
	Origem             string     `json:"origem"`
	InteressadoID      *uuid.UUID `json:"interessado_id"`
	UnidadeRemetenteID *uuid.UUID `json:"unidade_remetente_id"`
	DataRecebimento    string     `json:"data_recebimento"`
	Prazo              string     `json:"prazo"`
	UnidadeID          *uuid.UUID `json:"unidade_id"`
}

// AtualizarInput é o corpo aceito na atualização parcial.
type AtualizarInput struct {
	NumeroProcesso     *string    `json:"numero_processo"`
	Assunto            *string    `json:"assunto"`
	Origem             *string    `json:"origem"`
	InteressadoID      *uuid.UUID `json:"interessado_id"`
	UnidadeRemetenteID *uuid.UUID `json:"unidade_remetente_id"`
	DataRecebimento    *string    `json:"data_recebimento"`
	Prazo              *string    `json:"prazo"`
	UnidadeID          *uuid.UUID `json:"unidade_id"`
}

// novoProcesso contém os valores já validados para inserção.
type novoProcesso struct {
	NumeroProcesso     string
	Assunto            string
	Origem             string
	InteressadoID      *uuid.UUID
	UnidadeRemetenteID *uuid.UUID
	DataRecebimento    *time.Time
	Prazo              *time.Time
	UnidadeID          uuid.UUID
}

// alteracao contém os valores já validados para atualização.
type alteracao struct {
	ID                 uuid.UUID
	NumeroProcesso     *string
	Assunto            *string
	Origem             *string
	InteressadoID      *uuid.UUID
	UnidadeRemetenteID *uuid.UUID
	DataRecebimento    *time.Time
	Prazo              *time.Time
	UnidadeID          *uuid.UUID
}

// Filtro permite filtrar a listagem.
type Filtro struct {
	Busca        string
	VencendoHoje bool
	Atrasados    bool
	Ativo        *bool
	UnidadeID    *uuid.UUID
	Paginacao    util.Paginacao

	inicioDia time.Time
	fimDia    time.Time
}

// ResumoPrazos conta processos vencendo hoje e atrasados.
type ResumoPrazos struct {
	VencendoHoje int `json:"vencendo_hoje"`
	Atrasados    int `json:"atrasados"`
}

// RespostaFinalInput é o corpo de POST /processos/resposta-final.
// UnidadeRespondidaID é aceito mas ignorado: a unidade respondida é sempre a origem do processo.
type RespostaFinalInput struct {
	ProcessoID          uuid.UUID `json:"processo_id"`
	DataRespostaFinal   string    `json:"data_resposta_final"`
	RespostaFinal       string    `json:"resposta_final"`
	UnidadeRespondidaID *string   `json:"unidade_respondida_id"`
}

const (
	RespostaRegistrada   = "registrada"
	RespostaExistente    = "existente"
	RespostaComplementar = "complementada"
)

// RespostaFinalResultado informa o estado final e como a operação foi resolvida.
type RespostaFinalResultado struct {
	Situacao  string               `json:"situacao"`
	Processo  *Processo            `json:"processo"`
	Andamento *andamento.Andamento `json:"andamento,omitempty"`
}

// respostaFinal contém os valores gravados pela resposta final.
type respostaFinal struct {
	ProcessoID        uuid.UUID
	Data              time.Time
	Texto             string
	UnidadeRespondida string
	UsuarioID         uuid.UUID
}
