package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/smdu-sp/antares-backend/internal/auditoria"
	"github.com/smdu-sp/antares-backend/internal/db"
	"github.com/smdu-sp/antares-backend/internal/permissao"
	"github.com/smdu-sp/antares-backend/internal/unidade"
	"github.com/smdu-sp/antares-backend/internal/usuario"
)

// sistema executa as operações de carga inicial com poderes de DEV.
var sistema = permissao.Solicitante{Permissao: permissao.DEV}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN ou DATABASE_URL")
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "migrate" {
		version, err := db.Migrate(dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("falha ao aplicar migrações")
		}
		log.Info().Uint("version", version).Msg("migrações aplicadas")
		return
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	audit := auditoria.NewService(auditoria.NewRepository(pool))
	unidades := unidade.NewService(unidade.NewRepository(pool), audit)
	usuarios := usuario.NewService(usuario.NewRepository(pool), unidades, audit)

	switch cmd {
	case "unidade":
		if err := runUnidade(ctx, unidades, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar unidade")
		}
	case "usuario":
		if err := runUsuario(ctx, usuarios, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar usuário")
		}
	case "seed":
		if err := runSeed(ctx, unidades, usuarios, args); err != nil {
			log.Fatal().Err(err).Msg("falha na carga inicial")
		}
	case "unidades":
		if err := runListUnidades(ctx, unidades); err != nil {
			log.Fatal().Err(err).Msg("falha ao listar unidades")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "bootstrap CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  bootstrap migrate")
	fmt.Fprintln(os.Stderr, "  bootstrap unidade --nome \"Gabinete\" --sigla GAB")
	fmt.Fprintln(os.Stderr, "  bootstrap usuario --nome \"Fulana\" --login d123456 --email fulana@prefeitura.sp.gov.br --unidade <uuid> [--permissao DEV] [--senha ...]")
	fmt.Fprintln(os.Stderr, "  bootstrap seed --arquivo seed.yaml")
	fmt.Fprintln(os.Stderr, "  bootstrap unidades")
}

func runUnidade(ctx context.Context, service *unidade.Service, args []string) error {
	fs := flag.NewFlagSet("unidade", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		nome  = fs.String("nome", "", "nome da unidade")
		sigla = fs.String("sigla", "", "sigla da unidade")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *nome == "" || *sigla == "" {
		return errors.New("nome e sigla são obrigatórios")
	}

	u, err := service.Criar(ctx, sistema, unidade.CriarInput{Nome: *nome, Sigla: *sigla})
	if err != nil {
		return err
	}

	fmt.Printf("Unidade criada: %s (%s) id=%s\n", u.Nome, u.Sigla, u.ID)
	return nil
}

func runUsuario(ctx context.Context, service *usuario.Service, args []string) error {
	fs := flag.NewFlagSet("usuario", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		nome      = fs.String("nome", "", "nome completo")
		login     = fs.String("login", "", "login de rede")
		email     = fs.String("email", "", "e-mail institucional")
		unidadeID = fs.String("unidade", "", "id da unidade")
		papel     = fs.String("permissao", permissao.DEV, "permissão (DEV, ADM, TEC, USR)")
		senha     = fs.String("senha", "", "senha local (opcional; também lida de BOOTSTRAP_SENHA)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	unidadeUUID, err := uuid.Parse(strings.TrimSpace(*unidadeID))
	if err != nil {
		return errors.New("--unidade deve ser um uuid válido")
	}
	if *senha == "" {
		*senha = os.Getenv("BOOTSTRAP_SENHA")
	}

	u, err := service.Criar(ctx, sistema, usuario.CriarInput{
		Nome:      *nome,
		Login:     *login,
		Email:     *email,
		Permissao: *papel,
		UnidadeID: unidadeUUID,
		Senha:     *senha,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Usuário criado: %s (%s) permissao=%s id=%s\n", u.Nome, u.Login, u.Permissao, u.ID)
	return nil
}

func runListUnidades(ctx context.Context, service *unidade.Service) error {
	unidades, err := service.ListarAtivas(ctx)
	if err != nil {
		return err
	}
	if len(unidades) == 0 {
		fmt.Println("Nenhuma unidade ativa encontrada.")
		return nil
	}
	for _, u := range unidades {
		fmt.Printf("- %s (%s) id=%s\n", u.Nome, u.Sigla, u.ID)
	}
	return nil
}
