package auditoria

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smdu-sp/antares-backend/internal/util"
)

// Repository provê acesso à tabela logs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Inserir grava uma entrada de auditoria.
func (r *Repository) Inserir(ctx context.Context, e Entrada) error {
	detalhes := e.Detalhes
	if detalhes == nil {
		detalhes = map[string]any{}
	}
	raw, err := json.Marshal(detalhes)
	if err != nil {
		return err
	}

	var usuario any
	if e.UsuarioID != uuid.Nil {
		usuario = e.UsuarioID
	}

	_, err = r.pool.Exec(ctx, `
        INSERT INTO logs (usuario_id, acao, entidade, entidade_id, detalhes)
        VALUES ($1, $2, $3, $4, $5)
    `, usuario, e.Acao, e.Entidade, e.EntidadeID, raw)
	return err
}

// Listar devolve registros mais recentes primeiro.
func (r *Repository) Listar(ctx context.Context, filtro Filtro) ([]Registro, int, error) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filtro.UsuarioID != nil {
		clauses = append(clauses, fmt.Sprintf("usuario_id = $%d", idx))
		args = append(args, *filtro.UsuarioID)
		idx++
	}
	if entidade := strings.TrimSpace(filtro.Entidade); entidade != "" {
		clauses = append(clauses, fmt.Sprintf("entidade = $%d", idx))
		args = append(args, strings.ToLower(entidade))
		idx++
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM logs"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pag := util.Paginacao{Pagina: filtro.Pagina, Limite: filtro.Limite}.Normalizar()
	query := fmt.Sprintf(`
        SELECT id, usuario_id, acao, entidade, entidade_id, detalhes, criado_em
        FROM logs%s
        ORDER BY criado_em DESC, id DESC
        LIMIT $%d OFFSET $%d`, where, idx, idx+1)
	args = append(args, pag.Limite, pag.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var registros []Registro
	for rows.Next() {
		var (
			reg Registro
			raw []byte
		)
		if err := rows.Scan(&reg.ID, &reg.UsuarioID, &reg.Acao, &reg.Entidade, &reg.EntidadeID, &raw, &reg.CriadoEm); err != nil {
			return nil, 0, err
		}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &reg.Detalhes)
		}
		registros = append(registros, reg)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return registros, total, nil
}
