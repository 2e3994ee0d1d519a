package usuario

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/auth"
	"github.com/smdu-sp/antares-backend/internal/db"
)

const colunas = `id, nome, login, email, permissao, unidade_id, ativo, criado_em, atualizado_em`

// Repository provê acesso à tabela usuarios.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Criar insere um novo usuário.
func (r *Repository) Criar(ctx context.Context, input CriarInput) (*Usuario, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO usuarios (nome, login, email, permissao, unidade_id, senha_hash)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+colunas,
		input.Nome, input.Login, input.Email, input.Permissao, input.UnidadeID, input.senhaHash,
	)
	u, err := scanUsuario(row)
	if err != nil {
		return nil, traduzir(err)
	}
	return u, nil
}

// Buscar devolve usuário pelo id.
func (r *Repository) Buscar(ctx context.Context, id uuid.UUID) (*Usuario, error) {
	return scanUsuario(r.pool.QueryRow(ctx, `SELECT `+colunas+` FROM usuarios WHERE id = $1`, id))
}

// Listar aplica filtros e paginação.
func (r *Repository) Listar(ctx context.Context, filtro Filtro) ([]Usuario, int, error) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if busca := strings.TrimSpace(filtro.Busca); busca != "" {
		clauses = append(clauses, fmt.Sprintf("(nome ILIKE $%d OR login ILIKE $%d OR email ILIKE $%d)", idx, idx, idx))
		args = append(args, "%"+busca+"%")
		idx++
	}
	if filtro.Permissao != "" {
		clauses = append(clauses, fmt.Sprintf("permissao = $%d", idx))
		args = append(args, filtro.Permissao)
		idx++
	}
	if filtro.UnidadeID != nil {
		clauses = append(clauses, fmt.Sprintf("unidade_id = $%d", idx))
		args = append(args, *filtro.UnidadeID)
		idx++
	}
	if filtro.Ativo != nil {
		clauses = append(clauses, fmt.Sprintf("ativo = $%d", idx))
		args = append(args, *filtro.Ativo)
		idx++
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM usuarios"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pag := filtro.Paginacao.Normalizar()
	query := fmt.Sprintf("SELECT %s FROM usuarios%s ORDER BY nome ASC LIMIT $%d OFFSET $%d", colunas, where, idx, idx+1)
	args = append(args, pag.Limite, pag.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var usuarios []Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, 0, err
		}
		usuarios = append(usuarios, *u)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return usuarios, total, nil
}

// Atualizar altera os campos informados.
func (r *Repository) Atualizar(ctx context.Context, input AtualizarInput) (*Usuario, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	set := func(coluna string, valor any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", coluna, idx))
		args = append(args, valor)
		idx++
	}

	if input.Nome != nil {
		set("nome", *input.Nome)
	}
	if input.Email != nil {
		set("email", *input.Email)
	}
	if input.Permissao != nil {
		set("permissao", *input.Permissao)
	}
	if input.UnidadeID != nil {
		set("unidade_id", *input.UnidadeID)
	}
	if input.senhaHash != nil {
		set("senha_hash", *input.senhaHash)
	}

	if len(setParts) == 0 {
		return r.Buscar(ctx, input.ID)
	}

	setParts = append(setParts, "atualizado_em = now()")
	args = append(args, input.ID)

	query := fmt.Sprintf(`UPDATE usuarios SET %s WHERE id = $%d RETURNING %s`, strings.Join(setParts, ", "), idx, colunas)
	u, err := scanUsuario(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, traduzir(err)
	}
	return u, nil
}

// DefinirAtivo liga ou desliga o flag ativo.
func (r *Repository) DefinirAtivo(ctx context.Context, id uuid.UUID, ativo bool) (*Usuario, error) {
	return scanUsuario(r.pool.QueryRow(ctx, `
        UPDATE usuarios SET ativo = $2, atualizado_em = now()
        WHERE id = $1
        RETURNING `+colunas, id, ativo))
}

// BuscarContaPorLogin atende a autenticação.
func (r *Repository) BuscarContaPorLogin(ctx context.Context, login string) (auth.Conta, error) {
	return scanConta(r.pool.QueryRow(ctx, `
        SELECT id, nome, login, email, permissao, unidade_id, senha_hash, ativo
        FROM usuarios WHERE login = $1
    `, strings.ToLower(strings.TrimSpace(login))))
}

// BuscarContaPorID atende a renovação de sessão.
func (r *Repository) BuscarContaPorID(ctx context.Context, id uuid.UUID) (auth.Conta, error) {
	return scanConta(r.pool.QueryRow(ctx, `
        SELECT id, nome, login, email, permissao, unidade_id, senha_hash, ativo
        FROM usuarios WHERE id = $1
    `, id))
}

func scanUsuario(row pgx.Row) (*Usuario, error) {
	var u Usuario
	if err := row.Scan(&u.ID, &u.Nome, &u.Login, &u.Email, &u.Permissao, &u.UnidadeID, &u.Ativo, &u.CriadoEm, &u.AtualizadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("usuário não encontrado")
		}
		return nil, err
	}
	return &u, nil
}

func scanConta(row pgx.Row) (auth.Conta, error) {
	var c auth.Conta
	if err := row.Scan(&c.ID, &c.Nome, &c.Login, &c.Email, &c.Permissao, &c.UnidadeID, &c.SenhaHash, &c.Ativo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Conta{}, apperr.NotFound("usuário não encontrado")
		}
		return auth.Conta{}, err
	}
	return c, nil
}

func traduzir(err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return apperr.Conflict("já existe usuário com este login ou email")
	case db.IsForeignKeyViolation(err):
		return apperr.Validation("unidade_id", "unidade informada não existe")
	}
	return err
}
