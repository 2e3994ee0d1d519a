package usuario

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/auditoria"
	"github.com/smdu-sp/antares-backend/internal/auth"
	"github.com/smdu-sp/antares-backend/internal/permissao"
	"github.com/smdu-sp/antares-backend/internal/unidade"
	"github.com/smdu-sp/antares-backend/internal/util"
)

type repository interface {
	Criar(ctx context.Context, input CriarInput) (*Usuario, error)
	Buscar(ctx context.Context, id uuid.UUID) (*Usuario, error)
	Listar(ctx context.Context, filtro Filtro) ([]Usuario, int, error)
	Atualizar(ctx context.Context, input AtualizarInput) (*Usuario, error)
	DefinirAtivo(ctx context.Context, id uuid.UUID, ativo bool) (*Usuario, error)
}

type unidades interface {
	ExigirAtiva(ctx context.Context, id uuid.UUID, campo string) (*unidade.Unidade, error)
}

type auditor interface {
	Registrar(ctx context.Context, e auditoria.Entrada)
}

// Service reúne regras de cadastro de usuários.
type Service struct {
	repo     repository
	unidades unidades
	audit    auditor
}

// NewService cria uma nova instância do serviço.
func NewService(repo *Repository, unidades *unidade.Service, audit *auditoria.Service) *Service {
	return newService(repo, unidades, audit)
}

func newService(repo repository, u unidades, audit auditor) *Service {
	return &Service{repo: repo, unidades: u, audit: audit}
}

// Criar cadastra usuário vinculado a uma unidade ativa.
func (s *Service) Criar(ctx context.Context, sol permissao.Solicitante, input CriarInput) (*Usuario, error) {
	input.Nome = strings.TrimSpace(input.Nome)
	input.Login = strings.ToLower(strings.TrimSpace(input.Login))
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Permissao = permissao.Normalizar(input.Permissao)
	if input.Permissao == "" {
		input.Permissao = permissao.USR
	}

	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	if err := util.RequireString(input.Login, "login"); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if !permissao.Valida(input.Permissao) {
		return nil, apperr.Validation("permissao", "permissão inválida")
	}
	if !permissao.PodeConceder(sol.Permissao, input.Permissao) {
		return nil, apperr.Forbidden("sem permissão para conceder " + input.Permissao)
	}
	if input.UnidadeID == uuid.Nil {
		return nil, apperr.Validation("unidade_id", "unidade_id obrigatório")
	}
	if _, err := s.unidades.ExigirAtiva(ctx, input.UnidadeID, "unidade_id"); err != nil {
		return nil, err
	}

	if input.Senha != "" {
		hash, err := hashSenha(input.Senha)
		if err != nil {
			return nil, err
		}
		input.senhaHash = &hash
	}

	u, err := s.repo.Criar(ctx, input)
	if err != nil {
		return nil, err
	}
	s.registrar(ctx, sol, auditoria.AcaoCriar, u, map[string]any{"login": u.Login, "permissao": u.Permissao})
	return u, nil
}

// Buscar devolve usuário visível ao solicitante.
func (s *Service) Buscar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*Usuario, error) {
	u, err := s.repo.Buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.ID != sol.ID && !sol.PodeAcessar(u.UnidadeID) {
		return nil, apperr.Forbidden("usuário de outra unidade")
	}
	return u, nil
}

// Listar devolve usuários paginados, restritos à unidade do solicitante quando necessário.
func (s *Service) Listar(ctx context.Context, sol permissao.Solicitante, filtro Filtro) (util.Pagina[Usuario], error) {
	if escopo := sol.Escopo(); escopo != nil {
		filtro.UnidadeID = escopo
	}
	filtro.Permissao = permissao.Normalizar(filtro.Permissao)

	usuarios, total, err := s.repo.Listar(ctx, filtro)
	if err != nil {
		return util.Pagina[Usuario]{}, err
	}
	return util.NovaPagina(usuarios, total, filtro.Paginacao), nil
}

// Atualizar altera dados cadastrais, papel, unidade ou senha.
func (s *Service) Atualizar(ctx context.Context, sol permissao.Solicitante, input AtualizarInput) (*Usuario, error) {
	atual, err := s.repo.Buscar(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if atual.Permissao == permissao.DEV && permissao.Normalizar(sol.Permissao) != permissao.DEV {
		return nil, apperr.Forbidden("somente DEV altera usuários DEV")
	}

	if input.Nome != nil {
		nome := strings.TrimSpace(*input.Nome)
		if err := util.RequireString(nome, "nome"); err != nil {
			return nil, err
		}
		input.Nome = &nome
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if err := util.ValidateEmail(email); err != nil {
			return nil, err
		}
		input.Email = &email
	}
	if input.Permissao != nil {
		p := permissao.Normalizar(*input.Permissao)
		if !permissao.Valida(p) {
			return nil, apperr.Validation("permissao", "permissão inválida")
		}
		if !permissao.PodeConceder(sol.Permissao, p) {
			return nil, apperr.Forbidden("sem permissão para conceder " + p)
		}
		input.Permissao = &p
	}
	if input.UnidadeID != nil && *input.UnidadeID != atual.UnidadeID {
		if _, err := s.unidades.ExigirAtiva(ctx, *input.UnidadeID, "unidade_id"); err != nil {
			return nil, err
		}
	}
	if input.Senha != nil {
		hash, err := hashSenha(*input.Senha)
		if err != nil {
			return nil, err
		}
		input.senhaHash = &hash
	}

	u, err := s.repo.Atualizar(ctx, input)
	if err != nil {
		return nil, err
	}

	detalhes := map[string]any{"login": u.Login}
	if input.Permissao != nil && *input.Permissao != atual.Permissao {
		detalhes["permissao_anterior"] = atual.Permissao
		detalhes["permissao"] = u.Permissao
	}
	if input.senhaHash != nil {
		detalhes["senha_alterada"] = true
	}
	s.registrar(ctx, sol, auditoria.AcaoAtualizar, u, detalhes)
	return u, nil
}

// Desativar bloqueia o acesso do usuário.
func (s *Service) Desativar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*Usuario, error) {
	if id == sol.ID {
		return nil, apperr.Validation("status", "não é possível desativar o próprio usuário")
	}
	return s.definirAtivo(ctx, sol, id, false)
}

// Ativar restabelece o acesso do usuário.
func (s *Service) Ativar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*Usuario, error) {
	return s.definirAtivo(ctx, sol, id, true)
}

func (s *Service) definirAtivo(ctx context.Context, sol permissao.Solicitante, id uuid.UUID, ativo bool) (*Usuario, error) {
	atual, err := s.repo.Buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if atual.Permissao == permissao.DEV && permissao.Normalizar(sol.Permissao) != permissao.DEV {
		return nil, apperr.Forbidden("somente DEV altera usuários DEV")
	}

	u, err := s.repo.DefinirAtivo(ctx, id, ativo)
	if err != nil {
		return nil, err
	}
	acao := auditoria.AcaoDesativar
	if ativo {
		acao = auditoria.AcaoAtivar
	}
	s.registrar(ctx, sol, acao, u, map[string]any{"login": u.Login})
	return u, nil
}

func (s *Service) registrar(ctx context.Context, sol permissao.Solicitante, acao string, u *Usuario, detalhes map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Registrar(ctx, auditoria.Entrada{
		UsuarioID:  sol.ID,
		Acao:       acao,
		Entidade:   "usuario",
		EntidadeID: u.ID.String(),
		Detalhes:   detalhes,
	})
}

func hashSenha(senha string) (string, error) {
	if err := util.ValidatePassword(senha); err != nil {
		return "", err
	}
	return auth.Hash(senha)
}
