package interessado

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/permissao"
)

type stubRepo struct {
	itens     map[uuid.UUID]Interessado
	processos map[uuid.UUID]int
}

func newStubRepo() *stubRepo {
	return &stubRepo{itens: map[uuid.UUID]Interessado{}, processos: map[uuid.UUID]int{}}
}

func (s *stubRepo) Criar(ctx context.Context, nome string) (*Interessado, error) {
	for _, i := range s.itens {
		if i.Nome == nome {
			return nil, apperr.Conflict("já existe interessado com este nome")
		}
	}
	i := Interessado{ID: uuid.New(), Nome: nome}
	s.itens[i.ID] = i
	return &i, nil
}

func (s *stubRepo) Buscar(ctx context.Context, id uuid.UUID) (*Interessado, error) {
	i, ok := s.itens[id]
	if !ok {
		return nil, apperr.NotFound("interessado não encontrado")
	}
	return &i, nil
}

func (s *stubRepo) Listar(ctx context.Context, filtro Filtro) ([]Interessado, int, error) {
	return nil, 0, nil
}

func (s *stubRepo) Renomear(ctx context.Context, id uuid.UUID, nome string) (*Interessado, error) {
	i, ok := s.itens[id]
	if !ok {
		return nil, apperr.NotFound("interessado não encontrado")
	}
	i.Nome = nome
	s.itens[id] = i
	return &i, nil
}

func (s *stubRepo) ContarProcessos(ctx context.Context, id uuid.UUID) (int, error) {
	return s.processos[id], nil
}

func (s *stubRepo) Excluir(ctx context.Context, id uuid.UUID) error {
	delete(s.itens, id)
	return nil
}

var sol = permissao.Solicitante{ID: uuid.New(), Permissao: permissao.TEC}

func TestCriarRejeitaDuplicado(t *testing.T) {
	svc := &Service{repo: newStubRepo()}
	ctx := context.Background()

	if _, err := svc.Criar(ctx, sol, " Construtora Alfa "); err != nil {
		t.Fatalf("criar: %v", err)
	}
	_, err := svc.Criar(ctx, sol, "Construtora Alfa")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCriarExigeNome(t *testing.T) {
	svc := &Service{repo: newStubRepo()}

	_, err := svc.Criar(context.Background(), sol, "   ")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExcluirBloqueadoQuandoReferenciado(t *testing.T) {
	repo := newStubRepo()
	svc := &Service{repo: repo}
	ctx := context.Background()

	i, err := svc.Criar(ctx, sol, "Condomínio Beta")
	if err != nil {
		t.Fatalf("criar: %v", err)
	}
	repo.processos[i.ID] = 2

	if err := svc.Excluir(ctx, sol, i.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	repo.processos[i.ID] = 0
	if err := svc.Excluir(ctx, sol, i.ID); err != nil {
		t.Fatalf("excluir: %v", err)
	}
	if _, ok := repo.itens[i.ID]; ok {
		t.Fatalf("interessado should be removed")
	}
}
