package andamento

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

const colunas = `a.id, a.processo_id, a.origem, a.destino, a.data_envio, a.prazo, a.prorrogacao, a.resposta,
        a.status, a.observacao, a.usuario_id, a.usuario_prorrogacao_id, a.ativo, p.unidade_id,
        a.criado_em, a.atualizado_em`

// Repository provê acesso à tabela andamentos.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Inserir grava um andamento usando q, que pode ser uma transação aberta.
func Inserir(ctx context.Context, q db.Querier, n NovoAndamento) (*Andamento, error) {
	return scanAndamento(q.QueryRow(ctx, `
        WITH novo AS (
            INSERT INTO andamentos (processo_id, origem, destino, data_envio, prazo, resposta, status, observacao, usuario_id)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
            RETURNING *
        )
        SELECT `+colunas+`
        FROM novo a
        JOIN processos p ON p.id = a.processo_id
    `, n.ProcessoID, n.Origem, n.Destino, n.DataEnvio, n.Prazo, n.Resposta, n.Status, n.Observacao, n.UsuarioID))
}

// Criar insere um andamento fora de transação.
func (r *Repository) Criar(ctx context.Context, n NovoAndamento) (*Andamento, error) {
	return Inserir(ctx, r.pool, n)
}

// Buscar devolve andamento pelo id.
func (r *Repository) Buscar(ctx context.Context, id uuid.UUID) (*Andamento, error) {
	return scanAndamento(r.pool.QueryRow(ctx, `
        SELECT `+colunas+`
        FROM andamentos a
        JOIN processos p ON p.id = a.processo_id
        WHERE a.id = $1
    `, id))
}

// BuscarProcesso devolve unidade e situação do processo.
func (r *Repository) BuscarProcesso(ctx context.Context, id uuid.UUID) (ProcessoRef, error) {
	ref := ProcessoRef{ID: id}
	err := r.pool.QueryRow(ctx, `SELECT unidade_id, ativo FROM processos WHERE id = $1`, id).Scan(&ref.UnidadeID, &ref.Ativo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProcessoRef{}, apperr.NotFound("processo não encontrado")
		}
		return ProcessoRef{}, err
	}
	return ref, nil
}

// Listar aplica filtros e paginação.
func (r *Repository) Listar(ctx context.Context, filtro Filtro) ([]Andamento, int, error) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filtro.ProcessoID != nil {
		clauses = append(clauses, fmt.Sprintf("a.processo_id = $%d", idx))
		args = append(args, *filtro.ProcessoID)
		idx++
	}
	if filtro.Status != "" {
		clauses = append(clauses, fmt.Sprintf("a.status = $%d", idx))
		args = append(args, filtro.Status)
		idx++
	}
	if busca := strings.TrimSpace(filtro.Busca); busca != "" {
		clauses = append(clauses, fmt.Sprintf("(a.origem ILIKE $%d OR a.destino ILIKE $%d OR a.observacao ILIKE $%d OR p.numero_processo ILIKE $%d)", idx, idx, idx, idx))
		args = append(args, "%"+busca+"%")
		idx++
	}
	if filtro.UnidadeID != nil {
		clauses = append(clauses, fmt.Sprintf("p.unidade_id = $%d", idx))
		args = append(args, *filtro.UnidadeID)
		idx++
	}
	if filtro.Ativo != nil {
		clauses = append(clauses, fmt.Sprintf("a.ativo = $%d", idx))
		args = append(args, *filtro.Ativo)
		idx++
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}
	from := " FROM andamentos a JOIN processos p ON p.id = a.processo_id"

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pag := filtro.Paginacao.Normalizar()
	query := fmt.Sprintf("SELECT %s%s%s ORDER BY a.data_envio DESC, a.criado_em DESC LIMIT $%d OFFSET $%d", colunas, from, where, idx, idx+1)
	args = append(args, pag.Limite, pag.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var andamentos []Andamento
	for rows.Next() {
		a, err := scanAndamento(rows)
		if err != nil {
			return nil, 0, err
		}
		andamentos = append(andamentos, *a)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return andamentos, total, nil
}

// Salvar grava os campos mutáveis do andamento.
func (r *Repository) Salvar(ctx context.Context, a *Andamento) (*Andamento, error) {
	return scanAndamento(r.pool.QueryRow(ctx, `
        WITH alterado AS (
            UPDATE andamentos SET
                origem = $2,
                destino = $3,
                data_envio = $4,
                prazo = $5,
                prorrogacao = $6,
                resposta = $7,
                status = $8,
                observacao = $9,
                usuario_prorrogacao_id = $10,
                atualizado_em = now()
            WHERE id = $1
            RETURNING *
        )
        SELECT `+colunas+`
        FROM alterado a
        JOIN processos p ON p.id = a.processo_id
    `, a.ID, a.Origem, a.Destino, a.DataEnvio, a.Prazo, a.Prorrogacao, a.Resposta, a.Status, a.Observacao, a.UsuarioProrrogacaoID))
}

// DefinirAtivo liga ou desliga o flag ativo.
func (r *Repository) DefinirAtivo(ctx context.Context, id uuid.UUID, ativo bool) (*Andamento, error) {
	return scanAndamento(r.pool.QueryRow(ctx, `
        WITH alterado AS (
            UPDATE andamentos SET ativo = $2, atualizado_em = now()
            WHERE id = $1
            RETURNING *
        )
        SELECT `+colunas+`
        FROM alterado a
        JOIN processos p ON p.id = a.processo_id
    `, id, ativo))
}

func scanAndamento(row pgx.Row) (*Andamento, error) {
	var a Andamento
	if err := row.Scan(
		&a.ID, &a.ProcessoID, &a.Origem, &a.Destino, &a.DataEnvio, &a.Prazo, &a.Prorrogacao, &a.Resposta,
		&a.Status, &a.Observacao, &a.UsuarioID, &a.UsuarioProrrogacaoID, &a.Ativo, &a.UnidadeID,
		&a.CriadoEm, &a.AtualizadoEm,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("andamento não encontrado")
		}
		return nil, err
	}
	return &a, nil
}
