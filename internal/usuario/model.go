package usuario

import (
	"time"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/util"
)

// Usuario representa um servidor com acesso ao sistema.
type Usuario struct {
	ID           uuid.UUID `json:"id"`
	Nome         string    `json:"nome"`
	Login        string    `json:"login"`
	Email        string    `json:"email"`
	Permissao    string    `json:"permissao"`
	UnidadeID    uuid.UUID `json:"unidade_id"`
	Ativo        bool      `json:"status"`
	CriadoEm     time.Time `json:"criado_em"`
	AtualizadoEm time.Time `json:"atualizado_em"`
}

// CriarInput encapsula campos para cadastro.
type CriarInput struct {
	Nome      string
	Login     string
	Email     string
	Permissao string
	UnidadeID uuid.UUID
	Senha     string
	senhaHash *string
}

// AtualizarInput permite alteração parcial.
type AtualizarInput struct {
	ID        uuid.UUID
	Nome      *string
	Email     *string
	Permissao *string
	UnidadeID *uuid.UUID
	Senha     *string
	senhaHash *string
}

// Filtro permite filtrar a listagem.
type Filtro struct {
	Busca     string
	Permissao string
	UnidadeID *uuid.UUID
	Ativo     *bool
	Paginacao util.Paginacao
}
