package unidade

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/auditoria"
	"github.com/smdu-sp/antares-backend/internal/permissao"
	"github.com/smdu-sp/antares-backend/internal/util"
)

const cacheSize = 512

type repository interface {
	Criar(ctx context.Context, input CriarInput) (*Unidade, error)
	Buscar(ctx context.Context, id uuid.UUID) (*Unidade, error)
	Listar(ctx context.Context, filtro Filtro) ([]Unidade, int, error)
	ListarAtivas(ctx context.Context) ([]Unidade, error)
	Atualizar(ctx context.Context, input AtualizarInput) (*Unidade, error)
	DefinirAtivo(ctx context.Context, id uuid.UUID, ativo bool) (*Unidade, error)
	ContarVinculos(ctx context.Context, id uuid.UUID) (Vinculos, error)
}

type auditor interface {
	Registrar(ctx context.Context, e auditoria.Entrada)
}

// Service reúne regras de negócio das unidades.
type Service struct {
	repo  repository
	audit auditor
	cache *lru.Cache[uuid.UUID, Unidade]
}

// NewService cria uma nova instância do serviço.
func NewService(repo *Repository, audit *auditoria.Service) *Service {
	return newService(repo, audit)
}

func newService(repo repository, audit auditor) *Service {
	cache, err := lru.New[uuid.UUID, Unidade](cacheSize)
	if err != nil {
		panic(err)
	}
	return &Service{repo: repo, audit: audit, cache: cache}
}

// Criar cadastra nova unidade.
func (s *Service) Criar(ctx context.Context, sol permissao.Solicitante, input CriarInput) (*Unidade, error) {
	input.Nome = strings.TrimSpace(input.Nome)
	input.Sigla = normalizarSigla(input.Sigla)
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	if err := util.RequireString(input.Sigla, "sigla"); err != nil {
		return nil, err
	}

	u, err := s.repo.Criar(ctx, input)
	if err != nil {
		return nil, err
	}

	s.cache.Add(u.ID, *u)
	s.registrar(ctx, sol, auditoria.AcaoCriar, u, nil)
	return u, nil
}

// Buscar devolve unidade pelo id, servida do cache quando possível.
func (s *Service) Buscar(ctx context.Context, id uuid.UUID) (*Unidade, error) {
	if u, ok := s.cache.Get(id); ok {
		return &u, nil
	}

	u, err := s.repo.Buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, *u)
	return u, nil
}

// ExigirAtiva garante que a unidade existe e está ativa.
func (s *Service) ExigirAtiva(ctx context.Context, id uuid.UUID, campo string) (*Unidade, error) {
	u, err := s.Buscar(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation(campo, "unidade informada não existe")
		}
		return nil, err
	}
	if !u.Ativo {
		return nil, apperr.Validation(campo, "unidade informada está inativa")
	}
	return u, nil
}

// Listar devolve unidades paginadas.
func (s *Service) Listar(ctx context.Context, filtro Filtro) (util.Pagina[Unidade], error) {
	unidades, total, err := s.repo.Listar(ctx, filtro)
	if err != nil {
		return util.Pagina[Unidade]{}, err
	}
	return util.NovaPagina(unidades, total, filtro.Paginacao), nil
}

// ListarAtivas devolve unidades ativas para seleção.
func (s *Service) ListarAtivas(ctx context.Context) ([]Unidade, error) {
	unidades, err := s.repo.ListarAtivas(ctx)
	if err != nil {
		return nil, err
	}
	if unidades == nil {
		unidades = []Unidade{}
	}
	return unidades, nil
}

// Atualizar altera nome e sigla.
func (s *Service) Atualizar(ctx context.Context, sol permissao.Solicitante, input AtualizarInput) (*Unidade, error) {
	if input.Nome != nil {
		if err := util.RequireString(*input.Nome, "nome"); err != nil {
			return nil, err
		}
	}
	if input.Sigla != nil {
		if err := util.RequireString(*input.Sigla, "sigla"); err != nil {
			return nil, err
		}
	}

	u, err := s.repo.Atualizar(ctx, input)
	if err != nil {
		return nil, err
	}
	s.cache.Add(u.ID, *u)
	s.registrar(ctx, sol, auditoria.AcaoAtualizar, u, nil)
	return u, nil
}

// Desativar bloqueia a unidade se não houver usuários nem processos ativos.
func (s *Service) Desativar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*Unidade, error) {
	if _, err := s.repo.Buscar(ctx, id); err != nil {
		return nil, err
	}

	v, err := s.repo.ContarVinculos(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Usuarios > 0 || v.Processos > 0 {
		return nil, apperr.Validation("status", "unidade possui usuários ou processos ativos")
	}

	u, err := s.repo.DefinirAtivo(ctx, id, false)
	if err != nil {
		return nil, err
	}
	s.cache.Remove(id)
	s.registrar(ctx, sol, auditoria.AcaoDesativar, u, nil)
	return u, nil
}

// Ativar reativa a unidade.
func (s *Service) Ativar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*Unidade, error) {
	u, err := s.repo.DefinirAtivo(ctx, id, true)
	if err != nil {
		return nil, err
	}
	s.cache.Remove(id)
	s.registrar(ctx, sol, auditoria.AcaoAtivar, u, nil)
	return u, nil
}

func (s *Service) registrar(ctx context.Context, sol permissao.Solicitante, acao string, u *Unidade, detalhes map[string]any) {
	if s.audit == nil {
		return
	}
	if detalhes == nil {
		detalhes = map[string]any{"sigla": u.Sigla}
	}
	s.audit.Registrar(ctx, auditoria.Entrada{
		UsuarioID:  sol.ID,
		Acao:       acao,
		Entidade:   "unidade",
		EntidadeID: u.ID.String(),
		Detalhes:   detalhes,
	})
}
