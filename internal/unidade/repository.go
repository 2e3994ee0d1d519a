package unidade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/db"
)

const colunas = `id, nome, sigla, ativo, criado_em, atualizado_em`

// Repository provê acesso à tabela unidades.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Criar insere uma nova unidade.
func (r *Repository) Criar(ctx context.Context, input CriarInput) (*Unidade, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO unidades (nome, sigla)
        VALUES ($1, $2)
        RETURNING `+colunas,
		strings.TrimSpace(input.Nome),
		normalizarSigla(input.Sigla),
	)
	u, err := scanUnidade(row)
	if err != nil {
		return nil, traduzir(err)
	}
	return u, nil
}

// Buscar devolve uma unidade pelo id.
func (r *Repository) Buscar(ctx context.Context, id uuid.UUID) (*Unidade, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+colunas+` FROM unidades WHERE id = $1`, id)
	return scanUnidade(row)
}

// Listar aplica filtros simples e paginação.
func (r *Repository) Listar(ctx context.Context, filtro Filtro) ([]Unidade, int, error) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if busca := strings.TrimSpace(filtro.Busca); busca != "" {
		clauses = append(clauses, fmt.Sprintf("(nome ILIKE $%d OR sigla ILIKE $%d)", idx, idx))
		args = append(args, "%"+busca+"%")
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
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM unidades"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pag := filtro.Paginacao.Normalizar()
	query := fmt.Sprintf("SELECT %s FROM unidades%s ORDER BY nome ASC LIMIT $%d OFFSET $%d", colunas, where, idx, idx+1)
	args = append(args, pag.Limite, pag.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var unidades []Unidade
	for rows.Next() {
		u, err := scanUnidade(rows)
		if err != nil {
			return nil, 0, err
		}
		unidades = append(unidades, *u)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return unidades, total, nil
}

// ListarAtivas devolve todas as unidades ativas, para seleção.
func (r *Repository) ListarAtivas(ctx context.Context) ([]Unidade, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+colunas+` FROM unidades WHERE ativo ORDER BY nome ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var unidades []Unidade
	for rows.Next() {
		u, err := scanUnidade(rows)
		if err != nil {
			return nil, err
		}
		unidades = append(unidades, *u)
	}
	return unidades, rows.Err()
}

// Atualizar altera nome e/ou sigla.
func (r *Repository) Atualizar(ctx context.Context, input AtualizarInput) (*Unidade, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if input.Nome != nil {
		setParts = append(setParts, fmt.Sprintf("nome = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Nome))
		idx++
	}
	if input.Sigla != nil {
		setParts = append(setParts, fmt.Sprintf("sigla = $%d", idx))
		args = append(args, normalizarSigla(*input.Sigla))
		idx++
	}

	if len(setParts) == 0 {
		return r.Buscar(ctx, input.ID)
	}

	setParts = append(setParts, "atualizado_em = now()")
	args = append(args, input.ID)

	query := fmt.Sprintf(`UPDATE unidades SET %s WHERE id = $%d RETURNING %s`, strings.Join(setParts, ", "), idx, colunas)
	u, err := scanUnidade(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, traduzir(err)
	}
	return u, nil
}

// DefinirAtivo liga ou desliga o flag ativo.
func (r *Repository) DefinirAtivo(ctx context.Context, id uuid.UUID, ativo bool) (*Unidade, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE unidades SET ativo = $2, atualizado_em = now()
        WHERE id = $1
        RETURNING `+colunas, id, ativo)
	return scanUnidade(row)
}

// ContarVinculos conta usuários e processos ativos da unidade.
func (r *Repository) ContarVinculos(ctx context.Context, id uuid.UUID) (Vinculos, error) {
	var v Vinculos
	err := r.pool.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM usuarios WHERE unidade_id = $1 AND ativo),
            (SELECT COUNT(*) FROM processos WHERE unidade_id = $1 AND ativo)
    `, id).Scan(&v.Usuarios, &v.Processos)
	return v, err
}

func scanUnidade(row pgx.Row) (*Unidade, error) {
	var u Unidade
	if err := row.Scan(&u.ID, &u.Nome, &u.Sigla, &u.Ativo, &u.CriadoEm, &u.AtualizadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("unidade não encontrada")
		}
		return nil, err
	}
	return &u, nil
}

func traduzir(err error) error {
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("já existe unidade com este nome ou sigla")
	}
	return err
}
