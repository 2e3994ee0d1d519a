package unidade

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/util"
)

// Unidade representa uma unidade organizacional dona de usuários e processos.
type Unidade struct {
	ID           uuid.UUID `json:"id"`
	Nome         string    `json:"nome"`
	Sigla        string    `json:"sigla"`
	Ativo        bool      `json:"status"`
	CriadoEm     time.Time `json:"criado_em"`
	AtualizadoEm time.Time `json:"atualizado_em"`
}

// CriarInput encapsula campos para cadastro.
type CriarInput struct {
	Nome  string
	Sigla string
}

// AtualizarInput permite alteração parcial.
type AtualizarInput struct {
	ID    uuid.UUID
	Nome  *string
	Sigla *string
}

// Filtro permite filtrar a listagem.
type Filtro struct {
	Busca     string
	Ativo     *bool
	Paginacao util.Paginacao
}

// Vinculos contabiliza registros ativos que impedem a desativação.
type Vinculos struct {
	Usuarios  int
	Processos int
}

func normalizarSigla(sigla string) string {
	return strings.ToUpper(strings.TrimSpace(sigla))
}
