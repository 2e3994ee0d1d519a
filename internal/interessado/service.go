package interessado

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/auditoria"
	"github.com/smdu-sp/antares-backend/internal/permissao"
	"github.com/smdu-sp/antares-backend/internal/util"
)

type repository interface {
	Criar(ctx context.Context, nome string) (*Interessado, error)
	Buscar(ctx context.Context, id uuid.UUID) (*Interessado, error)
	Listar(ctx context.Context, filtro Filtro) ([]Interessado, int, error)
	Renomear(ctx context.Context, id uuid.UUID, nome string) (*Interessado, error)
	ContarProcessos(ctx context.Context, id uuid.UUID) (int, error)
	Excluir(ctx context.Context, id uuid.UUID) error
}

type auditor interface {
	Registrar(ctx context.Context, e auditoria.Entrada)
}

// Service reúne regras dos interessados.
type Service struct {
	repo  repository
	audit auditor
}

// NewService cria uma nova instância do serviço.
func NewService(repo *Repository, audit *auditoria.Service) *Service {
	return &Service{repo: repo, audit: audit}
}

// Criar cadastra interessado com nome único.
func (s *Service) Criar(ctx context.Context, sol permissao.Solicitante, nome string) (*Interessado, error) {
	nome = strings.TrimSpace(nome)
	if err := util.RequireString(nome, "nome"); err != nil {
		return nil, err
	}
	i, err := s.repo.Criar(ctx, nome)
	if err != nil {
		return nil, err
	}
	s.registrar(ctx, sol, auditoria.AcaoCriar, i)
	return i, nil
}

// Buscar devolve interessado pelo id.
func (s *Service) Buscar(ctx context.Context, id uuid.UUID) (*Interessado, error) {
	return s.repo.Buscar(ctx, id)
}

// Listar devolve interessados paginados.
func (s *Service) Listar(ctx context.Context, filtro Filtro) (util.Pagina[Interessado], error) {
	itens, total, err := s.repo.Listar(ctx, filtro)
	if err != nil {
		return util.Pagina[Interessado]{}, err
	}
	return util.NovaPagina(itens, total, filtro.Paginacao), nil
}

// Atualizar renomeia o interessado.
func (s *Service) Atualizar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID, nome string) (*Interessado, error) {
	nome = strings.TrimSpace(nome)
	if err := util.RequireString(nome, "nome"); err != nil {
		return nil, err
	}
	i, err := s.repo.Renomear(ctx, id, nome)
	if err != nil {
		return nil, err
	}
	s.registrar(ctx, sol, auditoria.AcaoAtualizar, i)
	return i, nil
}

// Excluir remove o interessado quando nenhum processo o referencia.
func (s *Service) Excluir(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) error {
	i, err := s.repo.Buscar(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.repo.ContarProcessos(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("interessado vinculado a processos")
	}
	if err := s.repo.Excluir(ctx, id); err != nil {
		return err
	}
	s.registrar(ctx, sol, auditoria.AcaoExcluir, i)
	return nil
}

func (s *Service) registrar(ctx context.Context, sol permissao.Solicitante, acao string, i *Interessado) {
	if s.audit == nil {
		return
	}
	s.audit.Registrar(ctx, auditoria.Entrada{
		UsuarioID:  sol.ID,
		Acao:       acao,
		Entidade:   "interessado",
		EntidadeID: i.ID.String(),
		Detalhes:   map[string]any{"nome": i.Nome},
	})
}
