package processo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smdu-sp/antares-backend/internal/andamento"
	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/db"
)

const colunas = `p.id, p.numero_processo, p.assunto, p.origem, p.interessado_id, p.unidade_remetente_id,
        p.data_recebimento, p.prazo, p.data_resposta_final, p.resposta_final, p.unidade_respondida_id,
        p.unidade_id, p.ativo, p.criado_em, p.atualizado_em`

// Andamentos pendentes contam para prazo: ativos, EM_ANDAMENTO, com prazo efetivo = prorrogação ou prazo.
const pendente = `SELECT 1 FROM andamentos a
        WHERE a.processo_id = p.id AND a.ativo AND a.status = 'EM_ANDAMENTO'`

// Repository provê acesso à tabela processos.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Criar insere um novo processo.
func (r *Repository) Criar(ctx context.Context, n novoProcesso) (*Processo, error) {
	p, err := scanProcesso(r.pool.QueryRow(ctx, `
        INSERT INTO processos AS p (numero_processo, assunto, origem, interessado_id, unidade_remetente_id,
            data_recebimento, prazo, unidade_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+colunas,
		n.NumeroProcesso, n.Assunto, n.Origem, n.InteressadoID, n.UnidadeRemetenteID,
		n.DataRecebimento, n.Prazo, n.UnidadeID,
	))
	if err != nil {
		return nil, traduzir(err)
	}
	return p, nil
}

// Buscar devolve processo pelo id.
func (r *Repository) Buscar(ctx context.Context, id uuid.UUID) (*Processo, error) {
	return scanProcesso(r.pool.QueryRow(ctx, `SELECT `+colunas+` FROM processos p WHERE p.id = $1`, id))
}

// Listar aplica filtros, incluindo os de prazo, e paginação.
func (r *Repository) Listar(ctx context.Context, filtro Filtro) ([]Processo, int, error) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if busca := strings.TrimSpace(filtro.Busca); busca != "" {
		clauses = append(clauses, fmt.Sprintf("(p.numero_processo ILIKE $%d OR p.assunto ILIKE $%d OR p.origem ILIKE $%d)", idx, idx, idx))
		args = append(args, "%"+busca+"%")
		idx++
	}
	if filtro.UnidadeID != nil {
		clauses = append(clauses, fmt.Sprintf("p.unidade_id = $%d", idx))
		args = append(args, *filtro.UnidadeID)
		idx++
	}
	if filtro.Ativo != nil {
		clauses = append(clauses, fmt.Sprintf("p.ativo = $%d", idx))
		args = append(args, *filtro.Ativo)
		idx++
	}
	if filtro.VencendoHoje {
		clauses = append(clauses, fmt.Sprintf("EXISTS (%s AND COALESCE(a.prorrogacao, a.prazo) BETWEEN $%d AND $%d)", pendente, idx, idx+1))
		args = append(args, filtro.inicioDia, filtro.fimDia)
		idx += 2
	}
	if filtro.Atrasados {
		clauses = append(clauses, fmt.Sprintf("EXISTS (%s AND COALESCE(a.prorrogacao, a.prazo) < $%d)", pendente, idx))
		args = append(args, filtro.inicioDia)
		idx++
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM processos p"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pag := filtro.Paginacao.Normalizar()
	query := fmt.Sprintf("SELECT %s FROM processos p%s ORDER BY p.criado_em DESC LIMIT $%d OFFSET $%d", colunas, where, idx, idx+1)
	args = append(args, pag.Limite, pag.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var processos []Processo
	for rows.Next() {
		p, err := scanProcesso(rows)
		if err != nil {
			return nil, 0, err
		}
		processos = append(processos, *p)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return processos, total, nil
}

// AndamentosPendentes devolve andamentos ativos EM_ANDAMENTO dos processos informados.
func (r *Repository) AndamentosPendentes(ctx context.Context, ids []uuid.UUID) ([]andamento.Andamento, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
        SELECT processo_id, prazo, prorrogacao, status, ativo
        FROM andamentos
        WHERE processo_id = ANY($1) AND ativo AND status = 'EM_ANDAMENTO'
    `, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []andamento.Andamento
	for rows.Next() {
		var a andamento.Andamento
		if err := rows.Scan(&a.ProcessoID, &a.Prazo, &a.Prorrogacao, &a.Status, &a.Ativo); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ResumoPrazos conta processos ativos vencendo hoje e atrasados, opcionalmente por unidade.
func (r *Repository) ResumoPrazos(ctx context.Context, unidadeID *uuid.UUID, inicio, fim time.Time) (ResumoPrazos, error) {
	var res ResumoPrazos
	err := r.pool.QueryRow(ctx, `
        SELECT
            COUNT(*) FILTER (WHERE EXISTS (`+pendente+` AND COALESCE(a.prorrogacao, a.prazo) BETWEEN $2 AND $3)),
            COUNT(*) FILTER (WHERE EXISTS (`+pendente+` AND COALESCE(a.prorrogacao, a.prazo) < $2))
        FROM processos p
        WHERE p.ativo AND ($1::uuid IS NULL OR p.unidade_id = $1)
    `, unidadeID, inicio, fim).Scan(&res.VencendoHoje, &res.Atrasados)
	return res, err
}

// Atualizar altera os campos informados.
func (r *Repository) Atualizar(ctx context.Context, a alteracao) (*Processo, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	set := func(coluna string, valor any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", coluna, idx))
		args = append(args, valor)
		idx++
	}

	if a.NumeroProcesso != nil {
		set("numero_processo", *a.NumeroProcesso)
	}
	if a.Assunto != nil {
		set("assunto", *a.Assunto)
	}
	if a.Origem != nil {
		set("origem", *a.Origem)
	}
	if a.InteressadoID != nil {
		set("interessado_id", *a.InteressadoID)
	}
	if a.UnidadeRemetenteID != nil {
		set("unidade_remetente_id", *a.UnidadeRemetenteID)
	}
	if a.DataRecebimento != nil {
		set("data_recebimento", *a.DataRecebimento)
	}
	if a.Prazo != nil {
		set("prazo", *a.Prazo)
	}
	if a.UnidadeID != nil {
		set("unidade_id", *a.UnidadeID)
	}

	if len(setParts) == 0 {
		return r.Buscar(ctx, a.ID)
	}

	setParts = append(setParts, "atualizado_em = now()")
	args = append(args, a.ID)

	query := fmt.Sprintf(`UPDATE processos AS p SET %s WHERE p.id = $%d RETURNING %s`, strings.Join(setParts, ", "), idx, colunas)
	p, err := scanProcesso(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, traduzir(err)
	}
	return p, nil
}

// DefinirAtivo liga ou desliga o flag ativo.
func (r *Repository) DefinirAtivo(ctx context.Context, id uuid.UUID, ativo bool) (*Processo, error) {
	return scanProcesso(r.pool.QueryRow(ctx, `
        UPDATE processos AS p SET ativo = $2, atualizado_em = now()
        WHERE p.id = $1
        RETURNING `+colunas, id, ativo))
}

// ContarAndamentosAtivos conta andamentos ativos do processo.
func (r *Repository) ContarAndamentosAtivos(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM andamentos WHERE processo_id = $1 AND ativo`, id).Scan(&n)
	return n, err
}

// RegistrarOrigem acrescenta a origem ao cadastro de autocomplete.
func (r *Repository) RegistrarOrigem(ctx context.Context, origem string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO origens_processo (origem) VALUES ($1) ON CONFLICT DO NOTHING`, origem)
	return err
}

// Origens lista as origens cadastradas em ordem alfabética.
func (r *Repository) Origens(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT origem FROM origens_processo ORDER BY origem ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var origens []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		origens = append(origens, o)
	}
	return origens, rows.Err()
}

// BuscarAndamentoTerminal procura andamento CONCLUIDO com a observação e a data de envio informadas.
func (r *Repository) BuscarAndamentoTerminal(ctx context.Context, processoID uuid.UUID, observacao string, dataEnvio time.Time) (*andamento.Andamento, error) {
	var a andamento.Andamento
	err := r.pool.QueryRow(ctx, `
        SELECT id, processo_id, origem, destino, data_envio, status
        FROM andamentos
        WHERE processo_id = $1 AND ativo AND status = 'CONCLUIDO'
          AND observacao = $2 AND data_envio = $3
        ORDER BY criado_em ASC
        LIMIT 1
    `, processoID, observacao, dataEnvio).Scan(&a.ID, &a.ProcessoID, &a.Origem, &a.Destino, &a.DataEnvio, &a.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// ComplementarResposta preenche apenas os campos de resposta ainda vazios.
func (r *Repository) ComplementarResposta(ctx context.Context, rf respostaFinal) (*Processo, error) {
	return scanProcesso(r.pool.QueryRow(ctx, `
        UPDATE processos AS p SET
            data_resposta_final = COALESCE(p.data_resposta_final, $2),
            resposta_final = COALESCE(p.resposta_final, $3),
            unidade_respondida_id = COALESCE(p.unidade_respondida_id, $4),
            atualizado_em = now()
        WHERE p.id = $1
        RETURNING `+colunas, rf.ProcessoID, rf.Data, rf.Texto, rf.UnidadeRespondida))
}

// RegistrarRespostaFinal grava a resposta no processo e cria o andamento terminal
// na mesma transação.
func (r *Repository) RegistrarRespostaFinal(ctx context.Context, rf respostaFinal) (*Processo, *andamento.Andamento, error) {
	var (
		p *Processo
		a *andamento.Andamento
	)
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		p, err = scanProcesso(tx.QueryRow(ctx, `
            UPDATE processos AS p SET
                data_resposta_final = $2,
                resposta_final = $3,
                unidade_respondida_id = $4,
                atualizado_em = now()
            WHERE p.id = $1 AND p.ativo
            RETURNING `+colunas, rf.ProcessoID, rf.Data, rf.Texto, rf.UnidadeRespondida))
		if err != nil {
			return err
		}

		texto := rf.Texto
		a, err = andamento.Inserir(ctx, tx, andamento.NovoAndamento{
			ProcessoID: rf.ProcessoID,
			Origem:     rf.UnidadeRespondida,
			Destino:    rf.UnidadeRespondida,
			DataEnvio:  rf.Data,
			Prazo:      rf.Data,
			Resposta:   &rf.Data,
			Status:     andamento.StatusConcluido,
			Observacao: &texto,
			UsuarioID:  rf.UsuarioID,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return p, a, nil
}

func scanProcesso(row pgx.Row) (*Processo, error) {
	var p Processo
	if err := row.Scan(
		&p.ID, &p.NumeroProcesso, &p.Assunto, &p.Origem, &p.InteressadoID, &p.UnidadeRemetenteID,
		&p.DataRecebimento, &p.Prazo, &p.DataRespostaFinal, &p.RespostaFinal, &p.UnidadeRespondidaID,
		&p.UnidadeID, &p.Ativo, &p.CriadoEm, &p.AtualizadoEm,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("processo não encontrado")
		}
		return nil, err
	}
	return &p, nil
}

func traduzir(err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return apperr.Conflict("já existe processo com este número")
	case db.IsForeignKeyViolation(err):
		return apperr.Validation("processo", "interessado ou unidade informada não existe")
	}
	return err
}
