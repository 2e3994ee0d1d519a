package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/permissao"
	"github.com/smdu-sp/antares-backend/internal/unidade"
	"github.com/smdu-sp/antares-backend/internal/usuario"
)

// SeedUnidade descreve uma unidade da carga inicial.
type SeedUnidade struct {
	Nome  string `yaml:"nome"`
	Sigla string `yaml:"sigla"`
}

// SeedUsuario descreve um usuário da carga inicial; Unidade é a sigla.
type SeedUsuario struct {
	Nome      string `yaml:"nome"`
	Login     string `yaml:"login"`
	Email     string `yaml:"email"`
	Permissao string `yaml:"permissao"`
	Unidade   string `yaml:"unidade"`
	SenhaEnv  string `yaml:"senha_env,omitempty"`
}

// Seed modela o arquivo YAML aceito por "bootstrap seed".
type Seed struct {
	Unidades []SeedUnidade `yaml:"unidades"`
	Usuarios []SeedUsuario `yaml:"usuarios"`
}

// parseSeed lê e valida o conteúdo do arquivo de carga.
func parseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("seed: parse: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return &seed, nil
}

func (s *Seed) validate() error {
	siglas := make(map[string]struct{}, len(s.Unidades))
	for i := range s.Unidades {
		u := &s.Unidades[i]
		u.Nome = strings.TrimSpace(u.Nome)
		u.Sigla = strings.ToUpper(strings.TrimSpace(u.Sigla))
		if u.Nome == "" || u.Sigla == "" {
			return fmt.Errorf("unidades[%d]: nome e sigla são obrigatórios", i)
		}
		if _, dup := siglas[u.Sigla]; dup {
			return fmt.Errorf("unidades[%d]: sigla %s repetida", i, u.Sigla)
		}
		siglas[u.Sigla] = struct{}{}
	}

	for i := range s.Usuarios {
		u := &s.Usuarios[i]
		u.Unidade = strings.ToUpper(strings.TrimSpace(u.Unidade))
		u.Permissao = permissao.Normalizar(u.Permissao)
		if u.Permissao == "" {
			u.Permissao = permissao.USR
		}
		if strings.TrimSpace(u.Login) == "" {
			return fmt.Errorf("usuarios[%d]: login obrigatório", i)
		}
		if !permissao.Valida(u.Permissao) {
			return fmt.Errorf("usuarios[%d]: permissão %s inválida", i, u.Permissao)
		}
		if u.Unidade == "" {
			return fmt.Errorf("usuarios[%d]: unidade obrigatória", i)
		}
	}
	return nil
}

type seedUnidades interface {
	Criar(ctx context.Context, sol permissao.Solicitante, input unidade.CriarInput) (*unidade.Unidade, error)
	ListarAtivas(ctx context.Context) ([]unidade.Unidade, error)
}

type seedUsuarios interface {
	Criar(ctx context.Context, sol permissao.Solicitante, input usuario.CriarInput) (*usuario.Usuario, error)
}

// SeedResultado conta o que foi criado e o que já existia.
type SeedResultado struct {
	UnidadesCriadas int
	UsuariosCriados int
	Existentes      int
}

// aplicar cria as unidades e os usuários ausentes; registros já existentes são ignorados.
func (s *Seed) aplicar(ctx context.Context, unidades seedUnidades, usuarios seedUsuarios, getenv func(string) string) (SeedResultado, error) {
	var res SeedResultado

	ativas, err := unidades.ListarAtivas(ctx)
	if err != nil {
		return res, err
	}
	porSigla := make(map[string]uuid.UUID, len(ativas))
	for _, u := range ativas {
		porSigla[u.Sigla] = u.ID
	}

	for _, seed := range s.Unidades {
		if _, ok := porSigla[seed.Sigla]; ok {
			res.Existentes++
			continue
		}
		u, err := unidades.Criar(ctx, sistema, unidade.CriarInput{Nome: seed.Nome, Sigla: seed.Sigla})
		if err != nil {
			return res, fmt.Errorf("unidade %s: %w", seed.Sigla, err)
		}
		porSigla[u.Sigla] = u.ID
		res.UnidadesCriadas++
	}

	for _, seed := range s.Usuarios {
		unidadeID, ok := porSigla[seed.Unidade]
		if !ok {
			return res, fmt.Errorf("usuário %s: unidade %s não encontrada", seed.Login, seed.Unidade)
		}
		var senha string
		if seed.SenhaEnv != "" {
			senha = getenv(seed.SenhaEnv)
		}
		_, err := usuarios.Criar(ctx, sistema, usuario.CriarInput{
			Nome:      seed.Nome,
			Login:     seed.Login,
			Email:     seed.Email,
			Permissao: seed.Permissao,
			UnidadeID: unidadeID,
			Senha:     senha,
		})
		if errors.Is(err, apperr.ErrConflict) {
			log.Info().Str("login", seed.Login).Msg("usuário já existe, ignorado")
			res.Existentes++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("usuário %s: %w", seed.Login, err)
		}
		res.UsuariosCriados++
	}

	return res, nil
}

func runSeed(ctx context.Context, unidades *unidade.Service, usuarios *usuario.Service, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	arquivo := fs.String("arquivo", "seed.yaml", "arquivo YAML com unidades e usuários")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := os.ReadFile(*arquivo)
	if err != nil {
		return fmt.Errorf("seed: read %s: %w", *arquivo, err)
	}
	seed, err := parseSeed(data)
	if err != nil {
		return err
	}

	res, err := seed.aplicar(ctx, unidades, usuarios, os.Getenv)
	if err != nil {
		return err
	}

	fmt.Printf("Carga concluída: %d unidades e %d usuários criados, %d já existentes\n",
		res.UnidadesCriadas, res.UsuariosCriados, res.Existentes)
	return nil
}
