package unidade

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/auditoria"
	"github.com/smdu-sp/antares-backend/internal/permissao"
)

type stubRepo struct {
	unidades map[uuid.UUID]Unidade
	vinculos Vinculos
	buscas   int
}

func newStubRepo(us ...Unidade) *stubRepo {
	r := &stubRepo{unidades: map[uuid.UUID]Unidade{}}
	for _, u := range us {
		r.unidades[u.ID] = u
	}
	return r
}

func (s *stubRepo) Criar(ctx context.Context, input CriarInput) (*Unidade, error) {
	for _, u := range s.unidades {
		if u.Sigla == input.Sigla {
			return nil, apperr.Conflict("já existe unidade com este nome ou sigla")
		}
	}
	u := Unidade{ID: uuid.New(), Nome: input.Nome, Sigla: input.Sigla, Ativo: true}
	s.unidades[u.ID] = u
	return &u, nil
}

func (s *stubRepo) Buscar(ctx context.Context, id uuid.UUID) (*Unidade, error) {
	s.buscas++
	u, ok := s.unidades[id]
	if !ok {
		return nil, apperr.NotFound("unidade não encontrada")
	}
	return &u, nil
}

func (s *stubRepo) Listar(ctx context.Context, filtro Filtro) ([]Unidade, int, error) {
	var out []Unidade
	for _, u := range s.unidades {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (s *stubRepo) ListarAtivas(ctx context.Context) ([]Unidade, error) {
	return nil, nil
}

func (s *stubRepo) Atualizar(ctx context.Context, input AtualizarInput) (*Unidade, error) {
	u, ok := s.unidades[input.ID]
	if !ok {
		return nil, apperr.NotFound("unidade não encontrada")
	}
	if input.Nome != nil {
		u.Nome = *input.Nome
	}
	s.unidades[u.ID] = u
	return &u, nil
}

func (s *stubRepo) DefinirAtivo(ctx context.Context, id uuid.UUID, ativo bool) (*Unidade, error) {
	u, ok := s.unidades[id]
	if !ok {
		return nil, apperr.NotFound("unidade não encontrada")
	}
	u.Ativo = ativo
	s.unidades[id] = u
	return &u, nil
}

func (s *stubRepo) ContarVinculos(ctx context.Context, id uuid.UUID) (Vinculos, error) {
	return s.vinculos, nil
}

type stubAudit struct {
	acoes []string
}

func (s *stubAudit) Registrar(ctx context.Context, e auditoria.Entrada) {
	s.acoes = append(s.acoes, e.Acao)
}

var admin = permissao.Solicitante{ID: uuid.New(), Permissao: permissao.ADM}

func TestCriarNormalizaSiglaERegistra(t *testing.T) {
	repo := newStubRepo()
	audit := &stubAudit{}
	svc := newService(repo, audit)

	u, err := svc.Criar(context.Background(), admin, CriarInput{Nome: " Gabinete ", Sigla: " gab "})
	if err != nil {
		t.Fatalf("criar: %v", err)
	}
	if u.Sigla != "GAB" || u.Nome != "Gabinete" {
		t.Fatalf("unexpected unidade %+v", u)
	}
	if len(audit.acoes) != 1 || audit.acoes[0] != auditoria.AcaoCriar {
		t.Fatalf("expected audit CRIAR, got %v", audit.acoes)
	}
}

func TestCriarExigeNome(t *testing.T) {
	svc := newService(newStubRepo(), nil)

	_, err := svc.Criar(context.Background(), admin, CriarInput{Sigla: "GAB"})
	if !errors.Is(err, apperr.ErrValidation) || apperr.FieldOf(err) != "nome" {
		t.Fatalf("expected validation on nome, got %v", err)
	}
}

func TestBuscarUsaCache(t *testing.T) {
	u := Unidade{ID: uuid.New(), Nome: "Gabinete", Sigla: "GAB", Ativo: true}
	repo := newStubRepo(u)
	svc := newService(repo, nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.Buscar(context.Background(), u.ID); err != nil {
			t.Fatalf("buscar: %v", err)
		}
	}
	if repo.buscas != 1 {
		t.Fatalf("expected one repository hit, got %d", repo.buscas)
	}
}

func TestDesativarBloqueadaComVinculos(t *testing.T) {
	u := Unidade{ID: uuid.New(), Nome: "Gabinete", Sigla: "GAB", Ativo: true}

	tests := []struct {
		name     string
		vinculos Vinculos
	}{
		{"usuarios ativos", Vinculos{Usuarios: 2}},
		{"processos ativos", Vinculos{Processos: 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubRepo(u)
			repo.vinculos = tc.vinculos
			svc := newService(repo, nil)

			_, err := svc.Desativar(context.Background(), admin, u.ID)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !repo.unidades[u.ID].Ativo {
				t.Fatalf("unidade must remain active")
			}
		})
	}
}

func TestDesativarSemVinculosInvalidaCache(t *testing.T) {
	u := Unidade{ID: uuid.New(), Nome: "Gabinete", Sigla: "GAB", Ativo: true}
	repo := newStubRepo(u)
	svc := newService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Buscar(ctx, u.ID); err != nil {
		t.Fatalf("buscar: %v", err)
	}
	if _, err := svc.Desativar(ctx, admin, u.ID); err != nil {
		t.Fatalf("desativar: %v", err)
	}

	_, err := svc.ExigirAtiva(ctx, u.ID, "unidade_id")
	if !errors.Is(err, apperr.ErrValidation) || apperr.FieldOf(err) != "unidade_id" {
		t.Fatalf("expected inactive unit validation, got %v", err)
	}
}

func TestExigirAtivaInexistente(t *testing.T) {
	svc := newService(newStubRepo(), nil)

	_, err := svc.ExigirAtiva(context.Background(), uuid.New(), "unidade_id")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
