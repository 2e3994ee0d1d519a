package processo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/smdu-sp/antares-backend/internal/andamento"
	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/auditoria"
	"github.com/smdu-sp/antares-backend/internal/permissao"
	"github.com/smdu-sp/antares-backend/internal/unidade"
	"github.com/smdu-sp/antares-backend/internal/util"
)

const (
	origensCacheKey = "antares:processos:origens"
	origensCacheTTL = 10 * time.Minute
	origensLimite   = 20
)

type repository interface {
	Criar(ctx context.Context, n novoProcesso) (*Processo, error)
	Buscar(ctx context.Context, id uuid.UUID) (*Processo, error)
	Listar(ctx context.Context, filtro Filtro) ([]Processo, int, error)
	AndamentosPendentes(ctx context.Context, ids []uuid.UUID) ([]andamento.Andamento, error)
	ResumoPrazos(ctx context.Context, unidadeID *uuid.UUID, inicio, fim time.Time) (ResumoPrazos, error)
	Atualizar(ctx context.Context, a alteracao) (*Processo, error)
	DefinirAtivo(ctx context.Context, id uuid.UUID, ativo bool) (*Processo, error)
	ContarAndamentosAtivos(ctx context.Context, id uuid.UUID) (int, error)
	RegistrarOrigem(ctx context.Context, origem string) error
	Origens(ctx context.Context) ([]string, error)
	BuscarAndamentoTerminal(ctx context.Context, processoID uuid.UUID, observacao string, dataEnvio time.Time) (*andamento.Andamento, error)
	ComplementarResposta(ctx context.Context, rf respostaFinal) (*Processo, error)
	RegistrarRespostaFinal(ctx context.Context, rf respostaFinal) (*Processo, *andamento.Andamento, error)
}

type unidades interface {
	ExigirAtiva(ctx context.Context, id uuid.UUID, campo string) (*unidade.Unidade, error)
}

type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type auditor interface {
	Registrar(ctx context.Context, e auditoria.Entrada)
}

// Service reúne regras dos processos, classificação de prazos e resposta final.
type Service struct {
	repo     repository
	unidades unidades
	redis    redisCommander
	audit    auditor
	loc      *time.Location
	agora    func() time.Time
}

// NewService cria uma nova instância do serviço.
func NewService(repo *Repository, unidades *unidade.Service, redisClient *redis.Client, audit *auditoria.Service, loc *time.Location) *Service {
	return newService(repo, unidades, redisClient, audit, loc)
}

func newService(repo repository, u unidades, r redisCommander, audit auditor, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, unidades: u, redis: r, audit: audit, loc: loc, agora: time.Now}
}

// Criar cadastra processo; sem número, recebe um identificador provisório.
func (s *Service) Criar(ctx context.Context, sol permissao.Solicitante, input CriarInput) (*Processo, error) {
	n := novoProcesso{
		NumeroProcesso:     strings.TrimSpace(input.NumeroProcesso),
		Assunto:            strings.TrimSpace(input.Assunto),
		Origem:             strings.TrimSpace(input.Origem),
		InteressadoID:      input.InteressadoID,
		UnidadeRemetenteID: input.UnidadeRemetenteID,
		UnidadeID:          sol.UnidadeID,
	}
	if n.NumeroProcesso == "" {
		n.NumeroProcesso = PrefixoSemNumero + util.CodigoCurto()
	}
	if err := util.RequireString(n.Origem, "origem"); err != nil {
		return nil, err
	}
	if input.UnidadeID != nil {
		n.UnidadeID = *input.UnidadeID
	}
	if n.UnidadeID == uuid.Nil {
		return nil, apperr.Validation("unidade_id", "unidade_id obrigatório")
	}
	if !sol.PodeAcessar(n.UnidadeID) {
		return nil, apperr.Forbidden("processo só pode ser criado na própria unidade")
	}
	if _, err := s.unidades.ExigirAtiva(ctx, n.UnidadeID, "unidade_id"); err != nil {
		return nil, err
	}

	var err error
	if n.DataRecebimento, err = dataOpcional("data_recebimento", input.DataRecebimento, s.loc); err != nil {
		return nil, err
	}
	if n.Prazo, err = dataOpcional("prazo", input.Prazo, s.loc); err != nil {
		return nil, err
	}

	p, err := s.repo.Criar(ctx, n)
	if err != nil {
		return nil, err
	}
	s.registrarOrigem(ctx, p.Origem)
	s.registrar(ctx, sol, auditoria.AcaoCriar, p, map[string]any{"numero_processo": p.NumeroProcesso})
	return p, nil
}

// Buscar devolve processo visível ao solicitante, com a classificação de prazo.
func (s *Service) Buscar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*Processo, error) {
	p, err := s.repo.Buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sol.PodeAcessar(p.UnidadeID) {
		return nil, apperr.Forbidden("processo de outra unidade")
	}
	lista := []Processo{*p}
	if err := s.classificar(ctx, lista); err != nil {
		return nil, err
	}
	return &lista[0], nil
}

// Listar devolve processos paginados dentro do escopo do solicitante.
func (s *Service) Listar(ctx context.Context, sol permissao.Solicitante, filtro Filtro) (util.Pagina[Processo], error) {
	if escopo := sol.Escopo(); escopo != nil {
		filtro.UnidadeID = escopo
	}
	filtro.inicioDia, filtro.fimDia = JanelaDoDia(s.agora(), s.loc)

	processos, total, err := s.repo.Listar(ctx, filtro)
	if err != nil {
		return util.Pagina[Processo]{}, err
	}
	if err := s.classificar(ctx, processos); err != nil {
		return util.Pagina[Processo]{}, err
	}
	return util.NovaPagina(processos, total, filtro.Paginacao), nil
}

// ResumoPrazos conta processos vencendo hoje e atrasados visíveis ao solicitante.
func (s *Service) ResumoPrazos(ctx context.Context, sol permissao.Solicitante) (ResumoPrazos, error) {
	return s.ContarPrazos(ctx, sol.Escopo())
}

// ContarPrazos conta processos vencendo hoje e atrasados; unidadeID nil considera todas.
func (s *Service) ContarPrazos(ctx context.Context, unidadeID *uuid.UUID) (ResumoPrazos, error) {
	inicio, fim := JanelaDoDia(s.agora(), s.loc)
	return s.repo.ResumoPrazos(ctx, unidadeID, inicio, fim)
}

// Atualizar altera dados do processo.
func (s *Service) Atualizar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID, input AtualizarInput) (*Processo, error) {
	atual, err := s.repo.Buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sol.PodeAcessar(atual.UnidadeID) {
		return nil, apperr.Forbidden("processo de outra unidade")
	}

	a := alteracao{
		ID:                 id,
		InteressadoID:      input.InteressadoID,
		UnidadeRemetenteID: input.UnidadeRemetenteID,
	}
	if input.NumeroProcesso != nil {
		numero := strings.TrimSpace(*input.NumeroProcesso)
		if err := util.RequireString(numero, "numero_processo"); err != nil {
			return nil, err
		}
		a.NumeroProcesso = &numero
	}
	if input.Assunto != nil {
		assunto := strings.TrimSpace(*input.Assunto)
		a.Assunto = &assunto
	}
	if input.Origem != nil {
		origem := strings.TrimSpace(*input.Origem)
		if err := util.RequireString(origem, "origem"); err != nil {
			return nil, err
		}
		a.Origem = &origem
	}
	if input.DataRecebimento != nil {
		if a.DataRecebimento, err = dataOpcional("data_recebimento", *input.DataRecebimento, s.loc); err != nil {
			return nil, err
		}
	}
	if input.Prazo != nil {
		if a.Prazo, err = dataOpcional("prazo", *input.Prazo, s.loc); err != nil {
			return nil, err
		}
	}
	if input.UnidadeID != nil && *input.UnidadeID != atual.UnidadeID {
		if !sol.PodeAcessar(*input.UnidadeID) {
			return nil, apperr.Forbidden("processo só pode ser transferido por DEV ou ADM")
		}
		if _, err := s.unidades.ExigirAtiva(ctx, *input.UnidadeID, "unidade_id"); err != nil {
			return nil, err
		}
		a.UnidadeID = input.UnidadeID
	}

	p, err := s.repo.Atualizar(ctx, a)
	if err != nil {
		return nil, err
	}
	if a.Origem != nil && *a.Origem != atual.Origem {
		s.registrarOrigem(ctx, p.Origem)
	}
	s.registrar(ctx, sol, auditoria.AcaoAtualizar, p, map[string]any{"numero_processo": p.NumeroProcesso})
	return p, nil
}

// Desativar remove logicamente o processo se não houver andamentos ativos.
func (s *Service) Desativar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*Processo, error) {
	atual, err := s.repo.Buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sol.PodeAcessar(atual.UnidadeID) {
		return nil, apperr.Forbidden("processo de outra unidade")
	}
	n, err := s.repo.ContarAndamentosAtivos(ctx, id)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, apperr.Validation("status", "processo possui andamentos ativos")
	}

	p, err := s.repo.DefinirAtivo(ctx, id, false)
	if err != nil {
		return nil, err
	}
	s.registrar(ctx, sol, auditoria.AcaoDesativar, p, nil)
	return p, nil
}

// Ativar reativa o processo.
func (s *Service) Ativar(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*Processo, error) {
	atual, err := s.repo.Buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sol.PodeAcessar(atual.UnidadeID) {
		return nil, apperr.Forbidden("processo de outra unidade")
	}
	p, err := s.repo.DefinirAtivo(ctx, id, true)
	if err != nil {
		return nil, err
	}
	s.registrar(ctx, sol, auditoria.AcaoAtivar, p, nil)
	return p, nil
}

// Origens devolve sugestões de origem que contêm o termo buscado.
func (s *Service) Origens(ctx context.Context, busca string) ([]string, error) {
	todas, err := s.origens(ctx)
	if err != nil {
		return nil, err
	}

	busca = strings.ToLower(strings.TrimSpace(busca))
	out := make([]string, 0, origensLimite)
	for _, o := range todas {
		if busca != "" && !strings.Contains(strings.ToLower(o), busca) {
			continue
		}
		out = append(out, o)
		if len(out) == origensLimite {
			break
		}
	}
	return out, nil
}

// RespostaFinal registra a resposta final do processo. A unidade respondida é
// sempre a origem do processo; reenvios com a mesma data e texto não duplicam o
// andamento terminal.
func (s *Service) RespostaFinal(ctx context.Context, sol permissao.Solicitante, input RespostaFinalInput) (*RespostaFinalResultado, error) {
	if input.ProcessoID == uuid.Nil {
		return nil, apperr.Validation("processo_id", "processo_id obrigatório")
	}
	texto := strings.TrimSpace(input.RespostaFinal)
	if err := util.RequireString(texto, "resposta_final"); err != nil {
		return nil, err
	}
	data, err := util.ParseData("data_resposta_final", input.DataRespostaFinal, s.loc)
	if err != nil {
		return nil, err
	}
	data = data.Truncate(time.Microsecond)

	p, err := s.repo.Buscar(ctx, input.ProcessoID)
	if err != nil {
		return nil, err
	}
	if !sol.PodeAcessar(p.UnidadeID) {
		return nil, apperr.Forbidden("processo de outra unidade")
	}
	if !p.Ativo {
		return nil, apperr.Validation("processo_id", "processo inativo")
	}
	n, err := s.repo.ContarAndamentosAtivos(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.Validation("processo_id", "processo sem andamentos ativos")
	}
	if data.After(util.FimDoDia(s.agora(), s.loc)) {
		return nil, apperr.Validation("data_resposta_final", "data da resposta final não pode ser futura")
	}

	rf := respostaFinal{
		ProcessoID:        p.ID,
		Data:              data,
		Texto:             texto,
		UnidadeRespondida: p.Origem,
		UsuarioID:         sol.ID,
	}

	if p.Respondido(data, texto) {
		respostasFinaisTotal.WithLabelValues(RespostaExistente).Inc()
		return &RespostaFinalResultado{Situacao: RespostaExistente, Processo: p}, nil
	}

	terminal, err := s.repo.BuscarAndamentoTerminal(ctx, p.ID, texto, data)
	if err != nil {
		return nil, err
	}
	if terminal != nil {
		atualizado, err := s.repo.ComplementarResposta(ctx, rf)
		if err != nil {
			return nil, err
		}
		respostasFinaisTotal.WithLabelValues(RespostaComplementar).Inc()
		s.registrar(ctx, sol, auditoria.AcaoResponder, atualizado, map[string]any{"situacao": RespostaComplementar})
		return &RespostaFinalResultado{Situacao: RespostaComplementar, Processo: atualizado, Andamento: terminal}, nil
	}

	atualizado, a, err := s.repo.RegistrarRespostaFinal(ctx, rf)
	if err != nil {
		return nil, err
	}
	respostasFinaisTotal.WithLabelValues(RespostaRegistrada).Inc()
	s.registrar(ctx, sol, auditoria.AcaoResponder, atualizado, map[string]any{
		"situacao":     RespostaRegistrada,
		"andamento_id": a.ID.String(),
	})
	return &RespostaFinalResultado{Situacao: RespostaRegistrada, Processo: atualizado, Andamento: a}, nil
}

func (s *Service) classificar(ctx context.Context, processos []Processo) error {
	if len(processos) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(processos))
	for i, p := range processos {
		ids[i] = p.ID
	}
	pendentes, err := s.repo.AndamentosPendentes(ctx, ids)
	if err != nil {
		return err
	}

	porProcesso := make(map[uuid.UUID][]andamento.Andamento, len(processos))
	for _, a := range pendentes {
		porProcesso[a.ProcessoID] = append(porProcesso[a.ProcessoID], a)
	}

	agora := s.agora()
	for i := range processos {
		c := Classificar(porProcesso[processos[i].ID], agora, s.loc)
		processos[i].VencendoHoje = c.VencendoHoje
		processos[i].Atrasado = c.Atrasado
	}
	return nil
}

func (s *Service) origens(ctx context.Context) ([]string, error) {
	if s.redis != nil {
		raw, err := s.redis.Get(ctx, origensCacheKey).Result()
		if err == nil {
			var cached []string
			if json.Unmarshal([]byte(raw), &cached) == nil {
				origensCacheTotal.WithLabelValues("hit").Inc()
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("origens: falha ao ler cache")
		}
	}
	origensCacheTotal.WithLabelValues("miss").Inc()

	origens, err := s.repo.Origens(ctx)
	if err != nil {
		return nil, err
	}
	if origens == nil {
		origens = []string{}
	}

	if s.redis != nil {
		if payload, err := json.Marshal(origens); err == nil {
			if err := s.redis.Set(ctx, origensCacheKey, payload, origensCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("origens: falha ao gravar cache")
			}
		}
	}
	return origens, nil
}

func (s *Service) registrarOrigem(ctx context.Context, origem string) {
	if origem == "" {
		return
	}
	if err := s.repo.RegistrarOrigem(ctx, origem); err != nil {
		log.Warn().Err(err).Str("origem", origem).Msg("origens: falha ao registrar")
		return
	}
	if s.redis != nil {
		if err := s.redis.Del(ctx, origensCacheKey).Err(); err != nil {
			log.Warn().Err(err).Msg("origens: falha ao invalidar cache")
		}
	}
}

func (s *Service) registrar(ctx context.Context, sol permissao.Solicitante, acao string, p *Processo, detalhes map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Registrar(ctx, auditoria.Entrada{
		UsuarioID:  sol.ID,
		Acao:       acao,
		Entidade:   "processo",
		EntidadeID: p.ID.String(),
		Detalhes:   detalhes,
	})
}

func dataOpcional(campo, valor string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(valor) == "" {
		return nil, nil
	}
	t, err := util.ParseData(campo, valor, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
