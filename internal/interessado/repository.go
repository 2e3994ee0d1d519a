package interessado

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/db"
)

// Repository provê acesso à tabela interessados.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Criar insere um novo interessado.
func (r *Repository) Criar(ctx context.Context, nome string) (*Interessado, error) {
	i, err := scanInteressado(r.pool.QueryRow(ctx, `
        INSERT INTO interessados (nome) VALUES ($1)
        RETURNING id, nome, criado_em, atualizado_em
    `, nome))
	if err != nil {
		return nil, traduzir(err)
	}
	return i, nil
}

// Buscar devolve interessado pelo id.
func (r *Repository) Buscar(ctx context.Context, id uuid.UUID) (*Interessado, error) {
	return scanInteressado(r.pool.QueryRow(ctx, `
        SELECT id, nome, criado_em, atualizado_em FROM interessados WHERE id = $1
    `, id))
}

// Listar busca por nome com paginação.
func (r *Repository) Listar(ctx context.Context, filtro Filtro) ([]Interessado, int, error) {
	busca := "%" + strings.TrimSpace(filtro.Busca) + "%"

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM interessados WHERE nome ILIKE $1`, busca).Scan(&total); err != nil {
		return nil, 0, err
	}

	pag := filtro.Paginacao.Normalizar()
	rows, err := r.pool.Query(ctx, `
        SELECT id, nome, criado_em, atualizado_em
        FROM interessados
        WHERE nome ILIKE $1
        ORDER BY nome ASC
        LIMIT $2 OFFSET $3
    `, busca, pag.Limite, pag.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var itens []Interessado
	for rows.Next() {
		i, err := scanInteressado(rows)
		if err != nil {
			return nil, 0, err
		}
		itens = append(itens, *i)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return itens, total, nil
}

// Renomear altera o nome.
func (r *Repository) Renomear(ctx context.Context, id uuid.UUID, nome string) (*Interessado, error) {
	i, err := scanInteressado(r.pool.QueryRow(ctx, `
        UPDATE interessados SET nome = $2, atualizado_em = now()
        WHERE id = $1
        RETURNING id, nome, criado_em, atualizado_em
    `, id, nome))
	if err != nil {
		return nil, traduzir(err)
	}
	return i, nil
}

// ContarProcessos conta processos que referenciam o interessado.
func (r *Repository) ContarProcessos(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM processos WHERE interessado_id = $1`, id).Scan(&n)
	return n, err
}

// Excluir remove o registro.
func (r *Repository) Excluir(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM interessados WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return apperr.Conflict("interessado vinculado a processos")
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("interessado não encontrado")
	}
	return nil
}

func scanInteressado(row pgx.Row) (*Interessado, error) {
	var i Interessado
	if err := row.Scan(&i.ID, &i.Nome, &i.CriadoEm, &i.AtualizadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("interessado não encontrado")
		}
		return nil, err
	}
	return &i, nil
}

func traduzir(err error) error {
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("já existe interessado com este nome")
	}
	return err
}
