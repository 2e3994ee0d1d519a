// Package auditoria registra e consulta o log de ações dos usuários.
package auditoria

import (
	"time"

	"github.com/google/uuid"
)

const (
	AcaoCriar     = "CRIAR"
	AcaoAtualizar = "ATUALIZAR"
	AcaoDesativar = "DESATIVAR"
	AcaoAtivar    = "ATIVAR"
	AcaoExcluir   = "EXCLUIR"
	AcaoConcluir  = "CONCLUIR"
	AcaoProrrogar = "PRORROGAR"
	AcaoResponder = "RESPOSTA_FINAL"
	AcaoLogin     = "LOGIN"
)

// Registro representa uma linha da tabela logs.
type Registro struct {
	ID         int64          `json:"id,string"`
	UsuarioID  *uuid.UUID     `json:"usuario_id,omitempty"`
	Acao       string         `json:"acao"`
	Entidade   string         `json:"entidade"`
	EntidadeID string         `json:"entidade_id"`
	Detalhes   map[string]any `json:"detalhes"`
	CriadoEm   time.Time      `json:"criado_em"`
}

// Entrada descreve uma ação a registrar.
type Entrada struct {
	UsuarioID  uuid.UUID
	Acao       string
	Entidade   string
	EntidadeID string
	Detalhes   map[string]any
}

// Filtro restringe a listagem do log.
type Filtro struct {
	UsuarioID *uuid.UUID
	Entidade  string
	Pagina    int
	Limite    int
}
