package processo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/andamento"
	"github.com/smdu-sp/antares-backend/internal/db/dbtest"
)

func TestRepositoryRespostaFinalTransacional(t *testing.T) {
	pool := dbtest.Postgres(t)
	f := dbtest.Semear(t, pool)
	ctx := context.Background()
	repo := NewRepository(pool)

	p, err := repo.Criar(ctx, novoProcesso{NumeroProcesso: "6068.2025/0000001-0", Origem: "SEHAB", UnidadeID: f.UnidadeID})
	if err != nil {
		t.Fatalf("criar processo: %v", err)
	}

	data := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	atualizado, a, err := repo.RegistrarRespostaFinal(ctx, respostaFinal{
		ProcessoID:        p.ID,
		Data:              data,
		Texto:             "Respondido",
		UnidadeRespondida: p.Origem,
		UsuarioID:         f.UsuarioID,
	})
	if err != nil {
		t.Fatalf("registrar resposta: %v", err)
	}
	if atualizado.UnidadeRespondidaID == nil || *atualizado.UnidadeRespondidaID != "SEHAB" {
		t.Fatalf("unexpected processo %+v", atualizado)
	}
	if a.Status != andamento.StatusConcluido || a.UnidadeID != f.UnidadeID {
		t.Fatalf("unexpected andamento %+v", a)
	}

	terminal, err := repo.BuscarAndamentoTerminal(ctx, p.ID, "Respondido", data)
	if err != nil || terminal == nil || terminal.ID != a.ID {
		t.Fatalf("expected terminal andamento found, got %+v (%v)", terminal, err)
	}
}

func TestRepositoryRespostaFinalRollback(t *testing.T) {
	pool := dbtest.Postgres(t)
	f := dbtest.Semear(t, pool)
	ctx := context.Background()
	repo := NewRepository(pool)

	p, err := repo.Criar(ctx, novoProcesso{NumeroProcesso: "6068.2025/0000002-0", Origem: "SEHAB", UnidadeID: f.UnidadeID})
	if err != nil {
		t.Fatalf("criar processo: %v", err)
	}

	// usuário inexistente quebra a inserção do andamento após o UPDATE do processo
	_, _, err = repo.RegistrarRespostaFinal(ctx, respostaFinal{
		ProcessoID:        p.ID,
		Data:              time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Texto:             "Respondido",
		UnidadeRespondida: p.Origem,
		UsuarioID:         uuid.New(),
	})
	if err == nil {
		t.Fatalf("expected foreign key failure")
	}

	atual, err := repo.Buscar(ctx, p.ID)
	if err != nil {
		t.Fatalf("buscar: %v", err)
	}
	if atual.RespostaFinal != nil || atual.DataRespostaFinal != nil {
		t.Fatalf("processo update must be rolled back, got %+v", atual)
	}
}

func TestRepositoryFiltrosDePrazo(t *testing.T) {
	pool := dbtest.Postgres(t)
	f := dbtest.Semear(t, pool)
	ctx := context.Background()
	repo := NewRepository(pool)
	andamentos := andamento.NewRepository(pool)

	agora := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	inicio, fim := JanelaDoDia(agora, time.UTC)

	criar := func(numero string, prazo time.Time, prorrogacao *time.Time) uuid.UUID {
		p, err := repo.Criar(ctx, novoProcesso{NumeroProcesso: numero, Origem: "SEHAB", UnidadeID: f.UnidadeID})
		if err != nil {
			t.Fatalf("criar processo: %v", err)
		}
		a, err := andamentos.Criar(ctx, andamento.NovoAndamento{
			ProcessoID: p.ID, Origem: "SEHAB", Destino: "GAB", DataEnvio: agora.AddDate(0, 0, -5),
			Prazo: prazo, Status: andamento.StatusEmAndamento, UsuarioID: f.UsuarioID,
		})
		if err != nil {
			t.Fatalf("criar andamento: %v", err)
		}
		if prorrogacao != nil {
			a.Prorrogacao = prorrogacao
			a.Status = andamento.StatusProrrogado
			if _, err := andamentos.Salvar(ctx, a); err != nil {
				t.Fatalf("prorrogar: %v", err)
			}
		}
		return p.ID
	}

	ontem := agora.AddDate(0, 0, -1)
	amanha := agora.AddDate(0, 0, 1)
	atrasado := criar("A-1", ontem, nil)
	vencendo := criar("A-2", fim, nil)
	criar("A-3", ontem, &amanha)

	lista, _, err := repo.Listar(ctx, Filtro{Atrasados: true, inicioDia: inicio, fimDia: fim})
	if err != nil {
		t.Fatalf("listar atrasados: %v", err)
	}
	if len(lista) != 1 || lista[0].ID != atrasado {
		t.Fatalf("expected only overdue processo, got %+v", lista)
	}

	lista, _, err = repo.Listar(ctx, Filtro{VencendoHoje: true, inicioDia: inicio, fimDia: fim})
	if err != nil {
		t.Fatalf("listar vencendo: %v", err)
	}
	if len(lista) != 1 || lista[0].ID != vencendo {
		t.Fatalf("expected only due-today processo, got %+v", lista)
	}

	resumo, err := repo.ResumoPrazos(ctx, nil, inicio, fim)
	if err != nil {
		t.Fatalf("resumo: %v", err)
	}
	if resumo.VencendoHoje != 1 || resumo.Atrasados != 1 {
		t.Fatalf("unexpected resumo %+v", resumo)
	}
}
