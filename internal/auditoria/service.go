package auditoria

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/smdu-sp/antares-backend/internal/util"
)

type repository interface {
	Inserir(ctx context.Context, e Entrada) error
	Listar(ctx context.Context, filtro Filtro) ([]Registro, int, error)
}

// Service grava o log de auditoria sem interromper a operação principal.
type Service struct {
	repo repository
}

// NewService cria uma nova instância do serviço.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Registrar grava a entrada; falhas são apenas logadas.
func (s *Service) Registrar(ctx context.Context, e Entrada) {
	if s == nil || s.repo == nil {
		return
	}
	e.Entidade = strings.ToLower(strings.TrimSpace(e.Entidade))
	if err := s.repo.Inserir(ctx, e); err != nil {
		log.Warn().Err(err).
			Str("acao", e.Acao).
			Str("entidade", e.Entidade).
			Str("entidade_id", e.EntidadeID).
			Msg("auditoria: falha ao registrar")
	}
}

// Listar devolve a página solicitada do log.
func (s *Service) Listar(ctx context.Context, filtro Filtro) (util.Pagina[Registro], error) {
	registros, total, err := s.repo.Listar(ctx, filtro)
	if err != nil {
		return util.Pagina[Registro]{}, err
	}
	return util.NovaPagina(registros, total, util.Paginacao{Pagina: filtro.Pagina, Limite: filtro.Limite}), nil
}
