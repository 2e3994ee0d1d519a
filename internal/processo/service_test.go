package processo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/smdu-sp/antares-backend/internal/andamento"
	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/permissao"
	"github.com/smdu-sp/antares-backend/internal/unidade"
)

type stubRepo struct {
	processos  map[uuid.UUID]Processo
	andamentos []andamento.Andamento
	origens    []string
	buscasOrig int
	ultimoFilt Filtro
}

func newStubRepo() *stubRepo {
	return &stubRepo{processos: map[uuid.UUID]Processo{}}
}

func (s *stubRepo) Criar(ctx context.Context, n novoProcesso) (*Processo, error) {
	for _, p := range s.processos {
		if p.NumeroProcesso == n.NumeroProcesso {
			return nil, apperr.Conflict("já existe processo com este número")
		}
	}
	p := Processo{
		ID:             uuid.New(),
		NumeroProcesso: n.NumeroProcesso,
		Assunto:        n.Assunto,
		Origem:         n.Origem,
		Prazo:          n.Prazo,
		UnidadeID:      n.UnidadeID,
		Ativo:          true,
	}
	s.processos[p.ID] = p
	return &p, nil
}

func (s *stubRepo) Buscar(ctx context.Context, id uuid.UUID) (*Processo, error) {
	p, ok := s.processos[id]
	if !ok {
		return nil, apperr.NotFound("processo não encontrado")
	}
	return &p, nil
}

func (s *stubRepo) Listar(ctx context.Context, filtro Filtro) ([]Processo, int, error) {
	s.ultimoFilt = filtro
	var out []Processo
	for _, p := range s.processos {
		if filtro.UnidadeID != nil && p.UnidadeID != *filtro.UnidadeID {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (s *stubRepo) AndamentosPendentes(ctx context.Context, ids []uuid.UUID) ([]andamento.Andamento, error) {
	var out []andamento.Andamento
	for _, a := range s.andamentos {
		if a.Ativo && a.Status == andamento.StatusEmAndamento {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubRepo) ResumoPrazos(ctx context.Context, unidadeID *uuid.UUID, inicio, fim time.Time) (ResumoPrazos, error) {
	return ResumoPrazos{}, nil
}

func (s *stubRepo) Atualizar(ctx context.Context, a alteracao) (*Processo, error) {
	p, ok := s.processos[a.ID]
	if !ok {
		return nil, apperr.NotFound("processo não encontrado")
	}
	if a.NumeroProcesso != nil {
		for id, outro := range s.processos {
			if id != a.ID && outro.NumeroProcesso == *a.NumeroProcesso {
				return nil, apperr.Conflict("já existe processo com este número")
			}
		}
		p.NumeroProcesso = *a.NumeroProcesso
	}
	if a.Origem != nil {
		p.Origem = *a.Origem
	}
	s.processos[p.ID] = p
	return &p, nil
}

func (s *stubRepo) DefinirAtivo(ctx context.Context, id uuid.UUID, ativo bool) (*Processo, error) {
	p, ok := s.processos[id]
	if !ok {
		return nil, apperr.NotFound("processo não encontrado")
	}
	p.Ativo = ativo
	s.processos[id] = p
	return &p, nil
}

func (s *stubRepo) ContarAndamentosAtivos(ctx context.Context, id uuid.UUID) (int, error) {
	n := 0
	for _, a := range s.andamentos {
		if a.ProcessoID == id && a.Ativo {
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) RegistrarOrigem(ctx context.Context, origem string) error {
	for _, o := range s.origens {
		if o == origem {
			return nil
		}
	}
	s.origens = append(s.origens, origem)
	return nil
}

func (s *stubRepo) Origens(ctx context.Context) ([]string, error) {
	s.buscasOrig++
	return append([]string(nil), s.origens...), nil
}

func (s *stubRepo) BuscarAndamentoTerminal(ctx context.Context, processoID uuid.UUID, observacao string, dataEnvio time.Time) (*andamento.Andamento, error) {
	for _, a := range s.andamentos {
		if a.ProcessoID == processoID && a.Ativo && a.Status == andamento.StatusConcluido &&
			a.Observacao != nil && *a.Observacao == observacao && a.DataEnvio.Equal(dataEnvio) {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ComplementarResposta(ctx context.Context, rf respostaFinal) (*Processo, error) {
	p := s.processos[rf.ProcessoID]
	if p.DataRespostaFinal == nil {
		p.DataRespostaFinal = &rf.Data
	}
	if p.RespostaFinal == nil {
		p.RespostaFinal = &rf.Texto
	}
	if p.UnidadeRespondidaID == nil {
		p.UnidadeRespondidaID = &rf.UnidadeRespondida
	}
	s.processos[p.ID] = p
	return &p, nil
}

func (s *stubRepo) RegistrarRespostaFinal(ctx context.Context, rf respostaFinal) (*Processo, *andamento.Andamento, error) {
	p := s.processos[rf.ProcessoID]
	p.DataRespostaFinal = &rf.Data
	p.RespostaFinal = &rf.Texto
	p.UnidadeRespondidaID = &rf.UnidadeRespondida
	s.processos[p.ID] = p

	texto := rf.Texto
	a := andamento.Andamento{
		ID:         uuid.New(),
		ProcessoID: rf.ProcessoID,
		Origem:     rf.UnidadeRespondida,
		Destino:    rf.UnidadeRespondida,
		DataEnvio:  rf.Data,
		Prazo:      rf.Data,
		Resposta:   &rf.Data,
		Status:     andamento.StatusConcluido,
		Observacao: &texto,
		UsuarioID:  rf.UsuarioID,
		Ativo:      true,
	}
	s.andamentos = append(s.andamentos, a)
	return &p, &a, nil
}

func (s *stubRepo) contarTerminais(processoID uuid.UUID) int {
	n := 0
	for _, a := range s.andamentos {
		if a.ProcessoID == processoID && a.Status == andamento.StatusConcluido {
			n++
		}
	}
	return n
}

type stubUnidades struct{}

func (stubUnidades) ExigirAtiva(ctx context.Context, id uuid.UUID, campo string) (*unidade.Unidade, error) {
	return &unidade.Unidade{ID: id, Ativo: true}, nil
}

type stubRedis struct {
	store map[string]string
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	val, ok := s.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if s.store == nil {
		s.store = map[string]string{}
	}
	switch v := value.(type) {
	case []byte:
		s.store[key] = string(v)
	default:
		s.store[key] = fmt.Sprint(v)
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(s.store, k)
	}
	return redis.NewIntCmd(ctx)
}

var (
	loc, _     = time.LoadLocation("America/Sao_Paulo")
	agora      = time.Date(2025, 3, 10, 14, 0, 0, 0, loc)
	unidadeTec = uuid.New()
	tecnico    = permissao.Solicitante{ID: uuid.New(), Permissao: permissao.TEC, UnidadeID: unidadeTec}
)

func newTestService(repo *stubRepo, r redisCommander) *Service {
	svc := newService(repo, stubUnidades{}, r, nil, loc)
	svc.agora = func() time.Time { return agora }
	return svc
}

func semearProcesso(repo *stubRepo, origem string) Processo {
	p := Processo{ID: uuid.New(), NumeroProcesso: "6068.2025/0001-" + uuid.NewString()[:4], Origem: origem, UnidadeID: unidadeTec, Ativo: true}
	repo.processos[p.ID] = p
	repo.andamentos = append(repo.andamentos, andamento.Andamento{
		ID:         uuid.New(),
		ProcessoID: p.ID,
		Origem:     origem,
		Destino:    "GAB",
		DataEnvio:  agora.AddDate(0, 0, -3),
		Prazo:      agora.AddDate(0, 0, -1),
		Status:     andamento.StatusEmAndamento,
		Ativo:      true,
	})
	return p
}

func TestCriarGeraNumeroProvisorio(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, nil)

	p, err := svc.Criar(context.Background(), tecnico, CriarInput{Origem: "SEHAB", Assunto: "Ofício"})
	if err != nil {
		t.Fatalf("criar: %v", err)
	}
	if !strings.HasPrefix(p.NumeroProcesso, PrefixoSemNumero) || len(p.NumeroProcesso) == len(PrefixoSemNumero) {
		t.Fatalf("unexpected placeholder %q", p.NumeroProcesso)
	}
	if p.UnidadeID != unidadeTec {
		t.Fatalf("expected requester unit, got %s", p.UnidadeID)
	}
	if len(repo.origens) != 1 || repo.origens[0] != "SEHAB" {
		t.Fatalf("expected origem registered, got %v", repo.origens)
	}
}

func TestCriarEmOutraUnidadeProibido(t *testing.T) {
	svc := newTestService(newStubRepo(), nil)
	outra := uuid.New()

	_, err := svc.Criar(context.Background(), tecnico, CriarInput{Origem: "SEHAB", UnidadeID: &outra})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCriarNumeroDuplicado(t *testing.T) {
	svc := newTestService(newStubRepo(), nil)
	ctx := context.Background()

	input := CriarInput{NumeroProcesso: "6068.2025/0000123-4", Origem: "SEHAB"}
	if _, err := svc.Criar(ctx, tecnico, input); err != nil {
		t.Fatalf("criar: %v", err)
	}
	if _, err := svc.Criar(ctx, tecnico, input); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDesativarComAndamentosAtivos(t *testing.T) {
	repo := newStubRepo()
	p := semearProcesso(repo, "SEHAB")
	svc := newTestService(repo, nil)

	_, err := svc.Desativar(context.Background(), tecnico, p.ID)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !repo.processos[p.ID].Ativo {
		t.Fatalf("processo must remain active")
	}
}

func TestListarAplicaEscopoEClassifica(t *testing.T) {
	repo := newStubRepo()
	p := semearProcesso(repo, "SEHAB")
	outro := Processo{ID: uuid.New(), UnidadeID: uuid.New(), Ativo: true}
	repo.processos[outro.ID] = outro
	svc := newTestService(repo, nil)

	pagina, err := svc.Listar(context.Background(), tecnico, Filtro{Atrasados: true})
	if err != nil {
		t.Fatalf("listar: %v", err)
	}
	if pagina.Total != 1 || pagina.Items[0].ID != p.ID {
		t.Fatalf("expected only own unit processo, got %+v", pagina.Items)
	}
	if !pagina.Items[0].Atrasado || pagina.Items[0].VencendoHoje {
		t.Fatalf("expected overdue classification, got %+v", pagina.Items[0])
	}

	inicio, fim := JanelaDoDia(agora, loc)
	if !repo.ultimoFilt.inicioDia.Equal(inicio) || !repo.ultimoFilt.fimDia.Equal(fim) {
		t.Fatalf("expected day window passed to repository")
	}
}

func TestRespostaFinalIdempotente(t *testing.T) {
	repo := newStubRepo()
	p := semearProcesso(repo, "SEHAB")
	svc := newTestService(repo, nil)
	ctx := context.Background()

	input := RespostaFinalInput{ProcessoID: p.ID, DataRespostaFinal: "2025-03-10", RespostaFinal: "Ofício respondido"}

	primeiro, err := svc.RespostaFinal(ctx, tecnico, input)
	if err != nil {
		t.Fatalf("primeira resposta: %v", err)
	}
	if primeiro.Situacao != RespostaRegistrada || primeiro.Andamento == nil {
		t.Fatalf("unexpected primeiro resultado %+v", primeiro)
	}

	segundo, err := svc.RespostaFinal(ctx, tecnico, input)
	if err != nil {
		t.Fatalf("segunda resposta: %v", err)
	}
	if segundo.Situacao != RespostaExistente {
		t.Fatalf("expected idempotent short-circuit, got %s", segundo.Situacao)
	}
	if n := repo.contarTerminais(p.ID); n != 1 {
		t.Fatalf("expected one terminal andamento, got %d", n)
	}
}

func TestRespostaFinalComplementaSemDuplicar(t *testing.T) {
	repo := newStubRepo()
	p := semearProcesso(repo, "SEHAB")
	svc := newTestService(repo, nil)
	ctx := context.Background()

	data := time.Date(2025, 3, 9, 0, 0, 0, 0, loc)
	texto := "Resposta enviada"
	repo.andamentos = append(repo.andamentos, andamento.Andamento{
		ID:         uuid.New(),
		ProcessoID: p.ID,
		DataEnvio:  data,
		Status:     andamento.StatusConcluido,
		Observacao: &texto,
		Ativo:      true,
	})

	res, err := svc.RespostaFinal(ctx, tecnico, RespostaFinalInput{ProcessoID: p.ID, DataRespostaFinal: "2025-03-09", RespostaFinal: texto})
	if err != nil {
		t.Fatalf("resposta final: %v", err)
	}
	if res.Situacao != RespostaComplementar {
		t.Fatalf("expected backfill, got %s", res.Situacao)
	}
	if n := repo.contarTerminais(p.ID); n != 1 {
		t.Fatalf("expected no new terminal andamento, got %d", n)
	}
	if res.Processo.RespostaFinal == nil || *res.Processo.RespostaFinal != texto {
		t.Fatalf("expected resposta_final backfilled, got %+v", res.Processo)
	}
}

func TestRespostaFinalLimiteDoDia(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		aceita bool
	}{
		{"hoje 23:59:59.999", "2025-03-10T23:59:59.999-03:00", true},
		{"amanha 00:00", "2025-03-11T00:00:00-03:00", false},
		{"ontem", "2025-03-09", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubRepo()
			p := semearProcesso(repo, "SEHAB")
			svc := newTestService(repo, nil)

			_, err := svc.RespostaFinal(context.Background(), tecnico, RespostaFinalInput{
				ProcessoID:        p.ID,
				DataRespostaFinal: tc.data,
				RespostaFinal:     "Respondido",
			})
			if tc.aceita && err != nil {
				t.Fatalf("expected accepted, got %v", err)
			}
			if !tc.aceita && (!errors.Is(err, apperr.ErrValidation) || apperr.FieldOf(err) != "data_resposta_final") {
				t.Fatalf("expected validation on data_resposta_final, got %v", err)
			}
		})
	}
}

func TestRespostaFinalForcaUnidadeRespondida(t *testing.T) {
	repo := newStubRepo()
	p := semearProcesso(repo, "Y")
	svc := newTestService(repo, nil)

	x := "X"
	res, err := svc.RespostaFinal(context.Background(), tecnico, RespostaFinalInput{
		ProcessoID:          p.ID,
		DataRespostaFinal:   "2025-03-10",
		RespostaFinal:       "Respondido",
		UnidadeRespondidaID: &x,
	})
	if err != nil {
		t.Fatalf("resposta final: %v", err)
	}
	if got := repo.processos[p.ID].UnidadeRespondidaID; got == nil || *got != "Y" {
		t.Fatalf("expected unidade_respondida_id Y, got %v", got)
	}
	if res.Andamento.Origem != "Y" || res.Andamento.Destino != "Y" {
		t.Fatalf("terminal andamento must use forced unit, got %+v", res.Andamento)
	}
}

func TestRespostaFinalFalhas(t *testing.T) {
	ctx := context.Background()

	t.Run("processo inexistente", func(t *testing.T) {
		svc := newTestService(newStubRepo(), nil)
		_, err := svc.RespostaFinal(ctx, tecnico, RespostaFinalInput{ProcessoID: uuid.New(), DataRespostaFinal: "2025-03-10", RespostaFinal: "ok"})
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("processo inativo", func(t *testing.T) {
		repo := newStubRepo()
		p := semearProcesso(repo, "SEHAB")
		p.Ativo = false
		repo.processos[p.ID] = p
		svc := newTestService(repo, nil)
		_, err := svc.RespostaFinal(ctx, tecnico, RespostaFinalInput{ProcessoID: p.ID, DataRespostaFinal: "2025-03-10", RespostaFinal: "ok"})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("expected validation, got %v", err)
		}
	})

	t.Run("sem andamentos ativos", func(t *testing.T) {
		repo := newStubRepo()
		p := Processo{ID: uuid.New(), Origem: "SEHAB", UnidadeID: unidadeTec, Ativo: true}
		repo.processos[p.ID] = p
		svc := newTestService(repo, nil)
		_, err := svc.RespostaFinal(ctx, tecnico, RespostaFinalInput{ProcessoID: p.ID, DataRespostaFinal: "2025-03-10", RespostaFinal: "ok"})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("expected validation, got %v", err)
		}
	})

	t.Run("processo de outra unidade", func(t *testing.T) {
		repo := newStubRepo()
		p := semearProcesso(repo, "SEHAB")
		p.UnidadeID = uuid.New()
		repo.processos[p.ID] = p
		svc := newTestService(repo, nil)
		_, err := svc.RespostaFinal(ctx, tecnico, RespostaFinalInput{ProcessoID: p.ID, DataRespostaFinal: "2025-03-10", RespostaFinal: "ok"})
		if !errors.Is(err, apperr.ErrForbidden) {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})
}

func TestOrigensUsaCacheEInvalida(t *testing.T) {
	repo := newStubRepo()
	repo.origens = []string{"SEHAB", "SMUL"}
	cache := &stubRedis{}
	svc := newTestService(repo, cache)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := svc.Origens(ctx, "sm")
		if err != nil {
			t.Fatalf("origens: %v", err)
		}
		if len(got) != 1 || got[0] != "SMUL" {
			t.Fatalf("unexpected origens %v", got)
		}
	}
	if repo.buscasOrig != 1 {
		t.Fatalf("expected one repository hit, got %d", repo.buscasOrig)
	}

	if _, err := svc.Criar(ctx, tecnico, CriarInput{Origem: "SMT"}); err != nil {
		t.Fatalf("criar: %v", err)
	}
	got, err := svc.Origens(ctx, "")
	if err != nil {
		t.Fatalf("origens: %v", err)
	}
	if len(got) != 3 || repo.buscasOrig != 2 {
		t.Fatalf("expected cache invalidated after new origem, got %v (%d hits)", got, repo.buscasOrig)
	}
}
