package interessado

import (
	"time"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/util"
)

// Interessado representa a parte interessada em um processo.
type Interessado struct {
	ID           uuid.UUID `json:"id"`
	Nome         string    `json:"nome"`
	CriadoEm     time.Time `json:"criado_em"`
	AtualizadoEm time.Time `json:"atualizado_em"`
}

// Filtro permite busca por nome.
type Filtro struct {
	Busca     string
	Paginacao util.Paginacao
}
