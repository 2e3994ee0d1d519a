package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/smdu-sp/antares-backend/internal/config"
	"github.com/smdu-sp/antares-backend/internal/processo"
)

type stubContador struct {
	resumo  processo.ResumoPrazos
	err     error
	escopos []*uuid.UUID
}

func (s *stubContador) ContarPrazos(ctx context.Context, unidadeID *uuid.UUID) (processo.ResumoPrazos, error) {
	s.escopos = append(s.escopos, unidadeID)
	return s.resumo, s.err
}

func TestRunOncePublicaGauges(t *testing.T) {
	stub := &stubContador{resumo: processo.ResumoPrazos{VencendoHoje: 3, Atrasados: 7}}
	svc := newService(stub, config.PrazoMonitorConfig{Enabled: true}, zerolog.Nop())

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if got := testutil.ToFloat64(vencendoHojeGauge); got != 3 {
		t.Fatalf("vencendo_hoje gauge = %v", got)
	}
	if got := testutil.ToFloat64(atrasadosGauge); got != 7 {
		t.Fatalf("atrasados gauge = %v", got)
	}
	if len(stub.escopos) != 1 || stub.escopos[0] != nil {
		t.Fatalf("expected global count, got %v", stub.escopos)
	}
	if ultimo, ok := svc.Ultimo(); !ok || ultimo.Atrasados != 7 {
		t.Fatalf("unexpected ultimo %+v", ultimo)
	}
}

func TestRunOncePropagaErro(t *testing.T) {
	stub := &stubContador{err: errors.New("db down")}
	svc := newService(stub, config.PrazoMonitorConfig{Enabled: true}, zerolog.Nop())

	if err := svc.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := svc.Ultimo(); ok {
		t.Fatalf("no snapshot expected after failure")
	}
}

func TestStartDesabilitadoNaoExecuta(t *testing.T) {
	stub := &stubContador{}
	svc := newService(stub, config.PrazoMonitorConfig{Enabled: false}, zerolog.Nop())

	svc.Start(context.Background())
	svc.Stop()
	if len(stub.escopos) != 0 {
		t.Fatalf("disabled monitor must not run")
	}
}

func TestStartExecutaEPara(t *testing.T) {
	stub := &stubContador{resumo: processo.ResumoPrazos{Atrasados: 1}}
	svc := newService(stub, config.PrazoMonitorConfig{Enabled: true, Interval: time.Hour}, zerolog.Nop())

	svc.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := svc.Ultimo(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("monitor did not run")
		}
		time.Sleep(10 * time.Millisecond)
	}
	svc.Stop()
}
