package andamento

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/auditoria"
	"github.com/smdu-sp/antares-backend/internal/permissao"
	"github.com/smdu-sp/antares-backend/internal/util"
)

// LoteMaximo limita a quantidade de ids por lote.
const LoteMaximo = 500

type repository interface {
	Criar(ctx context.Context, n NovoAndamento) (*Andamento, error)
	Buscar(ctx context.Context, id uuid.UUID) (*Andamento, error)
	BuscarProcesso(ctx context.Context, id uuid.UUID) (ProcessoRef, error)
	Listar(ctx context.Context, filtro Filtro) ([]Andamento, int, error)
	Salvar(ctx context.Context, a *Andamento) (*Andamento, error)
	DefinirAtivo(ctx context.Context, id uuid.UUID, ativo bool) (*Andamento, error)
}

type auditor interface {
	Registrar(ctx context.Context, e auditoria.Entrada)
}

// Service reúne regras dos andamentos.
type Service struct {
	repo  repository
	audit auditor
	loc   *time.Location
	agora func() time.Time
}

// NewService cria uma nova instância do serviço.
func NewService(repo *Repository, audit *auditoria.Service, loc *time.Location) *Service {
	return newService(repo, audit, loc)
}

func newService(repo repository, audit auditor, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, audit: audit, loc: loc, agora: time.Now}
}

// Criar registra o envio de um processo ativo; o status inicial é EM_ANDAMENTO.
func (s *Service) Criar(ctx context.Context, sol permissao.Solicitante, input CriarInput) (*Andamento, error) {
	if input.ProcessoID == uuid.Nil {
		return nil, apperr.Validation("processo_id", "processo_id obrigatório")
	}
	origem := strings.TrimSpace(input.Origem)
	if err := util.RequireString(origem, "origem"); err != nil {
		return nil, err
	}
	destino := strings.TrimSpace(input.Destino)
	if err := util.RequireString(destino, "destino"); err != nil {
		return nil, err
	}
	prazo, err := util.ParseData("prazo", input.Prazo, s.loc)
	if err != nil {
		return nil, err
	}
	dataEnvio := s.agora()
	if strings.TrimSpace(input.DataEnvio) != "" {
		if dataEnvio, err = util.ParseData("data_envio", input.DataEnvio, s.loc); err != nil {
			return nil, err
		}
	}

	ref, err := s.repo.BuscarProcesso(ctx, input.ProcessoID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation("processo_id", "processo não encontrado")
		}
		return nil, err
	}
	if !ref.Ativo {
		return nil, apperr.Validation("processo_id", "processo inativo")
	}
	if !sol.PodeAcessar(ref.UnidadeID) {
		return nil, apperr.Forbidden("processo de outra unidade")
	}

	a, err := s.repo.Criar(ctx, NovoAndamento{
		ProcessoID: input.ProcessoID,
		Origem:     origem,
		Destino:    destino,
		DataEnvio:  dataEnvio,
		Prazo:      prazo,
		Status:     StatusEmAndamento,
		Observacao: textoOpcional(input.Observacao),
		UsuarioID:  sol.ID,
	})
	if err != nil {
		return nil, err
	}
	s.registrar(ctx, sol, auditoria.AcaoCriar, a)
	return a, nil
}

// Buscar devolve andamento visível ao solicitante.
func (s *Service) Buscar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*Andamento, error) {
	a, err := s.repo.Buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sol.PodeAcessar(a.UnidadeID) {
		return nil, apperr.Forbidden("andamento de outra unidade")
	}
	return a, nil
}

// Listar devolve andamentos paginados dentro do escopo do solicitante.
func (s *Service) Listar(ctx context.Context, sol permissao.Solicitante, filtro Filtro) (util.Pagina[Andamento], error) {
	if filtro.Status != "" && !filtro.Status.Valido() {
		return util.Pagina[Andamento]{}, apperr.Validation("status", "status inválido")
	}
	if escopo := sol.Escopo(); escopo != nil {
		filtro.UnidadeID = escopo
	}
	andamentos, total, err := s.repo.Listar(ctx, filtro)
	if err != nil {
		return util.Pagina[Andamento]{}, err
	}
	return util.NovaPagina(andamentos, total, filtro.Paginacao), nil
}

// Atualizar aplica alteração parcial e recalcula o status.
func (s *Service) Atualizar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID, input AtualizarInput) (*Andamento, error) {
	if input.Status != nil {
		return nil, apperr.Forbidden("status do andamento é calculado e não pode ser definido")
	}
	if input.Conclusao.Presente {
		return nil, apperr.Validation("conclusao", "campo não suportado; use resposta")
	}
	prorrogacao, err := input.Prorrogacao.Resolver("prorrogacao", s.loc)
	if err != nil {
		return nil, err
	}
	resposta, err := input.Resposta.Resolver("resposta", s.loc)
	if err != nil {
		return nil, err
	}

	a, err := s.carregar(ctx, sol, id)
	if err != nil {
		return nil, err
	}

	if input.Origem != nil {
		origem := strings.TrimSpace(*input.Origem)
		if err := util.RequireString(origem, "origem"); err != nil {
			return nil, err
		}
		a.Origem = origem
	}
	if input.Destino != nil {
		destino := strings.TrimSpace(*input.Destino)
		if err := util.RequireString(destino, "destino"); err != nil {
			return nil, err
		}
		a.Destino = destino
	}
	if input.DataEnvio != nil {
		if a.DataEnvio, err = util.ParseData("data_envio", *input.DataEnvio, s.loc); err != nil {
			return nil, err
		}
	}
	if input.Prazo != nil {
		if a.Prazo, err = util.ParseData("prazo", *input.Prazo, s.loc); err != nil {
			return nil, err
		}
	}
	if input.Observacao != nil {
		a.Observacao = textoOpcional(input.Observacao)
	}

	anterior := a.Status
	a.aplicar(Derivar(EstadoDe(*a), prorrogacao, resposta, sol.ID))

	salvo, err := s.repo.Salvar(ctx, a)
	if err != nil {
		return nil, err
	}
	s.registrarTransicao(ctx, sol, auditoria.AcaoAtualizar, salvo, anterior)
	return salvo, nil
}

// Concluir registra a resposta do andamento.
func (s *Service) Concluir(ctx context.Context, sol permissao.Solicitante, id uuid.UUID, input ConcluirInput) (*Andamento, error) {
	resposta := s.agora()
	if strings.TrimSpace(input.Resposta) != "" {
		var err error
		if resposta, err = util.ParseData("resposta", input.Resposta, s.loc); err != nil {
			return nil, err
		}
	}
	return s.concluir(ctx, sol, id, resposta, input.Observacao)
}

// Prorrogar estende o prazo; a nova data deve ser posterior ao momento atual.
func (s *Service) Prorrogar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID, input ProrrogarInput) (*Andamento, error) {
	prorrogacao, err := util.ParseData("prorrogacao", input.Prorrogacao, s.loc)
	if err != nil {
		return nil, err
	}
	return s.prorrogar(ctx, sol, id, prorrogacao, input.Observacao)
}

// Desativar remove logicamente o andamento.
func (s *Service) Desativar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) error {
	if _, err := s.carregar(ctx, sol, id); err != nil {
		return err
	}
	a, err := s.repo.DefinirAtivo(ctx, id, false)
	if err != nil {
		return err
	}
	s.registrar(ctx, sol, auditoria.AcaoDesativar, a)
	return nil
}

// Lote aplica a mesma operação a cada id de forma independente.
// Falhas individuais são reportadas sem interromper os demais itens.
func (s *Service) Lote(ctx context.Context, sol permissao.Solicitante, input LoteInput) (*LoteResultado, error) {
	operacao := strings.ToLower(strings.TrimSpace(input.Operacao))
	if len(input.IDs) == 0 {
		return nil, apperr.Validation("ids", "informe ao menos um id")
	}
	if len(input.IDs) > LoteMaximo {
		return nil, apperr.Validation("ids", "lote excede o limite de itens")
	}

	var aplicar func(ctx context.Context, id uuid.UUID) error
	switch operacao {
	case OperacaoProrrogar:
		prorrogacao, err := util.ParseData("prorrogacao", input.Prorrogacao, s.loc)
		if err != nil {
			return nil, err
		}
		aplicar = func(ctx context.Context, id uuid.UUID) error {
			_, err := s.prorrogar(ctx, sol, id, prorrogacao, nil)
			return err
		}
	case OperacaoConcluir:
		resposta := s.agora()
		if strings.TrimSpace(input.Resposta) != "" {
			var err error
			if resposta, err = util.ParseData("resposta", input.Resposta, s.loc); err != nil {
				return nil, err
			}
		}
		aplicar = func(ctx context.Context, id uuid.UUID) error {
			_, err := s.concluir(ctx, sol, id, resposta, nil)
			return err
		}
	case OperacaoExcluir:
		aplicar = func(ctx context.Context, id uuid.UUID) error {
			return s.Desativar(ctx, sol, id)
		}
	default:
		return nil, apperr.Validation("operacao", "operação deve ser prorrogar, concluir ou excluir")
	}

	resultado := &LoteResultado{Erros: []ErroLote{}}
	for _, bruto := range input.IDs {
		id, err := uuid.Parse(strings.TrimSpace(bruto))
		if err != nil {
			err = apperr.Validation("ids", "id inválido")
		} else {
			err = aplicar(ctx, id)
		}

		if err != nil {
			loteItensTotal.WithLabelValues(operacao, "erro").Inc()
			resultado.Erros = append(resultado.Erros, ErroLote{ID: bruto, Erro: err.Error()})
			continue
		}
		loteItensTotal.WithLabelValues(operacao, "ok").Inc()
		resultado.Processados++
	}
	return resultado, nil
}

func (s *Service) concluir(ctx context.Context, sol permissao.Solicitante, id uuid.UUID, resposta time.Time, observacao *string) (*Andamento, error) {
	a, err := s.carregar(ctx, sol, id)
	if err != nil {
		return nil, err
	}
	if observacao != nil {
		a.Observacao = textoOpcional(observacao)
	}

	anterior := a.Status
	a.aplicar(Derivar(EstadoDe(*a), Mudanca{}, Definir(resposta), sol.ID))

	salvo, err := s.repo.Salvar(ctx, a)
	if err != nil {
		return nil, err
	}
	s.registrarTransicao(ctx, sol, auditoria.AcaoConcluir, salvo, anterior)
	return salvo, nil
}

func (s *Service) prorrogar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID, prorrogacao time.Time, observacao *string) (*Andamento, error) {
	if !prorrogacao.After(s.agora()) {
		return nil, apperr.Validation("prorrogacao", "prorrogação deve ser posterior ao momento atual")
	}
	a, err := s.carregar(ctx, sol, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusConcluido {
		return nil, apperr.Validation("status", "andamento concluído não pode ser prorrogado")
	}
	if observacao != nil {
		a.Observacao = textoOpcional(observacao)
	}

	anterior := a.Status
	a.aplicar(Derivar(EstadoDe(*a), Definir(prorrogacao), Mudanca{}, sol.ID))

	salvo, err := s.repo.Salvar(ctx, a)
	if err != nil {
		return nil, err
	}
	s.registrarTransicao(ctx, sol, auditoria.AcaoProrrogar, salvo, anterior)
	return salvo, nil
}

// carregar busca andamento ativo e visível ao solicitante.
func (s *Service) carregar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*Andamento, error) {
	a, err := s.Buscar(ctx, sol, id)
	if err != nil {
		return nil, err
	}
	if !a.Ativo {
		return nil, apperr.Validation("id", "andamento inativo")
	}
	return a, nil
}

func (s *Service) registrar(ctx context.Context, sol permissao.Solicitante, acao string, a *Andamento) {
	if s.audit == nil {
		return
	}
	s.audit.Registrar(ctx, auditoria.Entrada{
		UsuarioID:  sol.ID,
		Acao:       acao,
		Entidade:   "andamento",
		EntidadeID: a.ID.String(),
		Detalhes: map[string]any{
			"processo_id": a.ProcessoID.String(),
			"status":      a.Status,
		},
	})
}

func (s *Service) registrarTransicao(ctx context.Context, sol permissao.Solicitante, acao string, a *Andamento, anterior Status) {
	if s.audit == nil {
		return
	}
	s.audit.Registrar(ctx, auditoria.Entrada{
		UsuarioID:  sol.ID,
		Acao:       acao,
		Entidade:   "andamento",
		EntidadeID: a.ID.String(),
		Detalhes: map[string]any{
			"processo_id":     a.ProcessoID.String(),
			"status_anterior": anterior,
			"status":          a.Status,
		},
	})
}

func textoOpcional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
