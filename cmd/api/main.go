package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/smdu-sp/antares-backend/internal/andamento"
	"github.com/smdu-sp/antares-backend/internal/auditoria"
	"github.com/smdu-sp/antares-backend/internal/auth"
	"github.com/smdu-sp/antares-backend/internal/config"
	"github.com/smdu-sp/antares-backend/internal/db"
	internalhttp "github.com/smdu-sp/antares-backend/internal/http"
	"github.com/smdu-sp/antares-backend/internal/interessado"
	"github.com/smdu-sp/antares-backend/internal/monitor"
	"github.com/smdu-sp/antares-backend/internal/processo"
	"github.com/smdu-sp/antares-backend/internal/unidade"
	"github.com/smdu-sp/antares-backend/internal/usuario"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.AutoMigrate {
		version, err := db.Migrate(cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info().Uint("version", version).Msg("migrações aplicadas")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	auditService := auditoria.NewService(auditoria.NewRepository(pool))
	unidadeService := unidade.NewService(unidade.NewRepository(pool), auditService)
	usuarioRepo := usuario.NewRepository(pool)
	usuarioService := usuario.NewService(usuarioRepo, unidadeService, auditService)
	interessadoService := interessado.NewService(interessado.NewRepository(pool), auditService)
	processoService := processo.NewService(processo.NewRepository(pool), unidadeService, redisClient, auditService, cfg.Location)
	andamentoService := andamento.NewService(andamento.NewRepository(pool), auditService, cfg.Location)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := auth.NewService(usuarioRepo, redisClient, jwtManager, cfg.JWTRefreshTTL)

	handler := internalhttp.NewRouter(cfg, internalhttp.Deps{
		DB:           pool,
		Redis:        redisClient,
		JWT:          jwtManager,
		Auth:         authService,
		Unidades:     unidadeService,
		Usuarios:     usuarioService,
		Interessados: interessadoService,
		Processos:    processoService,
		Andamentos:   andamentoService,
		Logs:         auditService,
	})

	if cfg.PrazoMonitor.Enabled {
		monitorLogger := log.With().Str("component", "prazo_monitor").Logger()
		monitorService := monitor.NewService(processoService, cfg.PrazoMonitor, monitorLogger)
		monitorService.Start(ctx)
		defer monitorService.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("encerrando...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
