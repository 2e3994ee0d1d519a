package main

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/permissao"
	"github.com/smdu-sp/antares-backend/internal/unidade"
	"github.com/smdu-sp/antares-backend/internal/usuario"
)

const seedYAML = `
unidades:
  - nome: Gabinete
    sigla: gab
  - nome: Assessoria Técnica
    sigla: ATEC
usuarios:
  - nome: Fulana
    login: d123456
    email: fulana@prefeitura.sp.gov.br
    permissao: dev
    unidade: GAB
    senha_env: SENHA_FULANA
  - nome: Beltrano
    login: d654321
    email: beltrano@prefeitura.sp.gov.br
    unidade: atec
`

type fakeUnidades struct {
	ativas  []unidade.Unidade
	criadas []unidade.CriarInput
}

func (f *fakeUnidades) Criar(_ context.Context, sol permissao.Solicitante, input unidade.CriarInput) (*unidade.Unidade, error) {
	f.criadas = append(f.criadas, input)
	return &unidade.Unidade{ID: uuid.New(), Nome: input.Nome, Sigla: input.Sigla, Ativo: true}, nil
}

func (f *fakeUnidades) ListarAtivas(_ context.Context) ([]unidade.Unidade, error) {
	return f.ativas, nil
}

type fakeUsuarios struct {
	existentes map[string]bool
	criados    []usuario.CriarInput
}

func (f *fakeUsuarios) Criar(_ context.Context, sol permissao.Solicitante, input usuario.CriarInput) (*usuario.Usuario, error) {
	if sol.Permissao != permissao.DEV {
		return nil, apperr.Forbidden("sem permissão")
	}
	if f.existentes[input.Login] {
		return nil, apperr.Conflict("login já cadastrado")
	}
	f.criados = append(f.criados, input)
	return &usuario.Usuario{ID: uuid.New(), Login: input.Login}, nil
}

func TestParseSeedNormalizes(t *testing.T) {
	seed, err := parseSeed([]byte(seedYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(seed.Unidades) != 2 || seed.Unidades[0].Sigla != "GAB" {
		t.Fatalf("unexpected unidades %+v", seed.Unidades)
	}
	if seed.Usuarios[0].Permissao != permissao.DEV || seed.Usuarios[1].Permissao != permissao.USR {
		t.Fatalf("unexpected permissões %+v", seed.Usuarios)
	}
	if seed.Usuarios[1].Unidade != "ATEC" {
		t.Fatalf("expected sigla normalizada, got %s", seed.Usuarios[1].Unidade)
	}
}

func TestParseSeedRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"sigla repetida":     "unidades:\n  - {nome: A, sigla: x}\n  - {nome: B, sigla: X}\n",
		"permissao invalida": "usuarios:\n  - {login: d1, unidade: GAB, permissao: ROOT}\n",
		"sem unidade":        "usuarios:\n  - {login: d1}\n",
		"yaml quebrado":      "unidades: [",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseSeed([]byte(raw)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestAplicarSeedIsIdempotent(t *testing.T) {
	seed, err := parseSeed([]byte(seedYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	gab := uuid.New()
	unidades := &fakeUnidades{ativas: []unidade.Unidade{{ID: gab, Nome: "Gabinete", Sigla: "GAB", Ativo: true}}}
	usuarios := &fakeUsuarios{existentes: map[string]bool{"d654321": true}}
	getenv := func(key string) string {
		if key == "SENHA_FULANA" {
			return "SenhaForte123!"
		}
		return ""
	}

	res, err := seed.aplicar(context.Background(), unidades, usuarios, getenv)
	if err != nil {
		t.Fatalf("aplicar: %v", err)
	}
	if res.UnidadesCriadas != 1 || res.UsuariosCriados != 1 || res.Existentes != 2 {
		t.Fatalf("unexpected resultado %+v", res)
	}
	if len(usuarios.criados) != 1 || usuarios.criados[0].UnidadeID != gab || usuarios.criados[0].Senha != "SenhaForte123!" {
		t.Fatalf("unexpected usuários %+v", usuarios.criados)
	}
}

func TestAplicarSeedUnknownUnidade(t *testing.T) {
	seed, err := parseSeed([]byte("usuarios:\n  - {login: d1, unidade: XYZ}\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = seed.aplicar(context.Background(), &fakeUnidades{}, &fakeUsuarios{}, func(string) string { return "" })
	if err == nil || !strings.Contains(err.Error(), "XYZ") {
		t.Fatalf("expected unidade error, got %v", err)
	}
}
