// Package monitor publica periodicamente as contagens de prazos como métricas.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/smdu-sp/antares-backend/internal/config"
	"github.com/smdu-sp/antares-backend/internal/processo"
)

var (
	vencendoHojeGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "antares_processos_vencendo_hoje",
		Help: "Processos ativos com andamento em curso vencendo hoje",
	})
	atrasadosGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "antares_processos_atrasados",
		Help: "Processos ativos com andamento em curso atrasado",
	})
)

type contador interface {
	ContarPrazos(ctx context.Context, unidadeID *uuid.UUID) (processo.ResumoPrazos, error)
}

// Service executa a contagem periódica de prazos.
type Service struct {
	processos contador
	cfg       config.PrazoMonitorConfig
	logger    zerolog.Logger

	mu     sync.Mutex
	ultimo *processo.ResumoPrazos

	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

func NewService(processos *processo.Service, cfg config.PrazoMonitorConfig, logger zerolog.Logger) *Service {
	return newService(processos, cfg, logger)
}

func newService(processos contador, cfg config.PrazoMonitorConfig, logger zerolog.Logger) *Service {
	return &Service{
		processos: processos,
		cfg:       cfg,
		logger:    logger.With().Str("component", "prazo-monitor").Logger(),
		done:      make(chan struct{}),
	}
}

// Start inicia loop periódico. Safe para chamar múltiplas vezes.
func (s *Service) Start(parent context.Context) {
	if !s.cfg.Enabled {
		return
	}
	s.once.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		s.cancel = cancel
		go s.runLoop(ctx)
	})
}

// Stop encerra loop periódico e aguarda a execução corrente.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Service) runLoop(ctx context.Context) {
	defer close(s.done)

	interval := s.cfg.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", interval).Msg("monitor: loop iniciado")

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error().Err(err).Msg("monitor: primeira execução falhou")
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("monitor: loop encerrado")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("monitor: execução periódica falhou")
			}
		}
	}
}

// RunOnce conta os prazos de todas as unidades e atualiza as métricas.
func (s *Service) RunOnce(ctx context.Context) error {
	resumo, err := s.processos.ContarPrazos(ctx, nil)
	if err != nil {
		return fmt.Errorf("contar prazos: %w", err)
	}

	vencendoHojeGauge.Set(float64(resumo.VencendoHoje))
	atrasadosGauge.Set(float64(resumo.Atrasados))

	s.mu.Lock()
	anterior := s.ultimo
	s.ultimo = &resumo
	s.mu.Unlock()

	if anterior == nil || *anterior != resumo {
		s.logger.Info().
			Int("vencendo_hoje", resumo.VencendoHoje).
			Int("atrasados", resumo.Atrasados).
			Msg("monitor: prazos atualizados")
	}
	return nil
}

// Ultimo devolve a contagem mais recente, se houver.
func (s *Service) Ultimo() (processo.ResumoPrazos, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ultimo == nil {
		return processo.ResumoPrazos{}, false
	}
	return *s.ultimo, true
}
