package http

import (
	"context"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/andamento"
	"github.com/smdu-sp/antares-backend/internal/auditoria"
	"github.com/smdu-sp/antares-backend/internal/auth"
	"github.com/smdu-sp/antares-backend/internal/interessado"
	"github.com/smdu-sp/antares-backend/internal/permissao"
	"github.com/smdu-sp/antares-backend/internal/processo"
	"github.com/smdu-sp/antares-backend/internal/unidade"
	"github.com/smdu-sp/antares-backend/internal/usuario"
	"github.com/smdu-sp/antares-backend/internal/util"
)

type authService interface {
	Login(ctx context.Context, login, senha string) (*auth.LoginResult, error)
	Refresh(ctx context.Context, raw string) (*auth.LoginResult, error)
	Logout(ctx context.Context, raw string) error
	Perfil(ctx context.Context, id uuid.UUID) (*auth.Perfil, error)
}

type unidadeService interface {
	Criar(ctx context.Context, sol permissao.Solicitante, input unidade.CriarInput) (*unidade.Unidade, error)
	Buscar(ctx context.Context, id uuid.UUID) (*unidade.Unidade, error)
	Listar(ctx context.Context, filtro unidade.Filtro) (util.Pagina[unidade.Unidade], error)
	ListarAtivas(ctx context.Context) ([]unidade.Unidade, error)
	Atualizar(ctx context.Context, sol permissao.Solicitante, input unidade.AtualizarInput) (*unidade.Unidade, error)
	Desativar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*unidade.Unidade, error)
	Ativar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*unidade.Unidade, error)
}

type usuarioService interface {
	Criar(ctx context.Context, sol permissao.Solicitante, input usuario.CriarInput) (*usuario.Usuario, error)
	Buscar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*usuario.Usuario, error)
	Listar(ctx context.Context, sol permissao.Solicitante, filtro usuario.Filtro) (util.Pagina[usuario.Usuario], error)
	Atualizar(ctx context.Context, sol permissao.Solicitante, input usuario.AtualizarInput) (*usuario.Usuario, error)
	Desativar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*usuario.Usuario, error)
	Ativar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*usuario.Usuario, error)
}

type interessadoService interface {
	Criar(ctx context.Context, sol permissao.Solicitante, nome string) (*interessado.Interessado, error)
	Buscar(ctx context.Context, id uuid.UUID) (*interessado.Interessado, error)
	Listar(ctx context.Context, filtro interessado.Filtro) (util.Pagina[interessado.Interessado], error)
	Atualizar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID, nome string) (*interessado.Interessado, error)
	Excluir(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) error
}

type processoService interface {
	Criar(ctx context.Context, sol permissao.Solicitante, input processo.CriarInput) (*processo.Processo, error)
	Buscar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*processo.Processo, error)
	Listar(ctx context.Context, sol permissao.Solicitante, filtro processo.Filtro) (util.Pagina[processo.Processo], error)
	ResumoPrazos(ctx context.Context, sol permissao.Solicitante) (processo.ResumoPrazos, error)
	Atualizar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID, input processo.AtualizarInput) (*processo.Processo, error)
	Desativar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*processo.Processo, error)
	Ativar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*processo.Processo, error)
	Origens(ctx context.Context, busca string) ([]string, error)
	RespostaFinal(ctx context.Context, sol permissao.Solicitante, input processo.RespostaFinalInput) (*processo.RespostaFinalResultado, error)
}

type andamentoService interface {
	Criar(ctx context.Context, sol permissao.Solicitante, input andamento.CriarInput) (*andamento.Andamento, error)
	Buscar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*andamento.Andamento, error)
	Listar(ctx context.Context, sol permissao.Solicitante, filtro andamento.Filtro) (util.Pagina[andamento.Andamento], error)
	Atualizar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID, input andamento.AtualizarInput) (*andamento.Andamento, error)
	Concluir(ctx context.Context, sol permissao.Solicitante, id uuid.UUID, input andamento.ConcluirInput) (*andamento.Andamento, error)
	Prorrogar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID, input andamento.ProrrogarInput) (*andamento.Andamento, error)
	Desativar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) error
	Lote(ctx context.Context, sol permissao.Solicitante, input andamento.LoteInput) (*andamento.LoteResultado, error)
}

type logService interface {
	Registrar(ctx context.Context, e auditoria.Entrada)
	Listar(ctx context.Context, filtro auditoria.Filtro) (util.Pagina[auditoria.Registro], error)
}
