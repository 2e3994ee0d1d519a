// Package dbtest sobe um Postgres descartável para testes de repositório.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/smdu-sp/antares-backend/internal/db"
)

// Postgres sobe o container, aplica as migrações e devolve um pool.
// Só roda com TEST_INTEGRATION definida.
func Postgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("teste de integração ignorado: TEST_INTEGRATION não definida")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("antares_test"),
		postgres.WithUsername("antares"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("subir container postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("encerrar container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	if _, err := db.Migrate(dsn); err != nil {
		t.Fatalf("migrar: %v", err)
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("conectar: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// Fixture guarda os registros mínimos semeados.
type Fixture struct {
	UnidadeID uuid.UUID
	UsuarioID uuid.UUID
}

// Semear cria a unidade GAB e uma técnica lotada nela.
func Semear(t *testing.T, pool *pgxpool.Pool) Fixture {
	t.Helper()
	ctx := context.Background()

	var f Fixture
	if err := pool.QueryRow(ctx, `INSERT INTO unidades (nome, sigla) VALUES ('Gabinete', 'GAB') RETURNING id`).Scan(&f.UnidadeID); err != nil {
		t.Fatalf("semear unidade: %v", err)
	}
	if err := pool.QueryRow(ctx, `
        INSERT INTO usuarios (nome, login, email, permissao, unidade_id)
        VALUES ('Técnica', 't000001', 'tecnica@prefeitura.sp.gov.br', 'TEC', $1)
        RETURNING id
    `, f.UnidadeID).Scan(&f.UsuarioID); err != nil {
		t.Fatalf("semear usuario: %v", err)
	}
	return f
}
