package util

import (
	"errors"
	"testing"
	"time"

	"github.com/smdu-sp/antares-backend/internal/apperr"
)

func TestPaginacaoNormalizar(t *testing.T) {
	tests := []struct {
		in         Paginacao
		wantPagina int
		wantLimite int
		wantOffset int
	}{
		{Paginacao{}, 1, LimitePadrao, 0},
		{Paginacao{Pagina: 3, Limite: 20}, 3, 20, 40},
		{Paginacao{Pagina: -2, Limite: 1000}, 1, LimiteMaximo, 0},
	}

	for _, tc := range tests {
		n := tc.in.Normalizar()
		if n.Pagina != tc.wantPagina || n.Limite != tc.wantLimite {
			t.Fatalf("Normalizar(%+v) = %+v", tc.in, n)
		}
		if off := tc.in.Offset(); off != tc.wantOffset {
			t.Fatalf("Offset(%+v) = %d, want %d", tc.in, off, tc.wantOffset)
		}
	}
}

func TestNovaPaginaNeverNil(t *testing.T) {
	p := NovaPagina[string](nil, 0, Paginacao{})
	if p.Items == nil {
		t.Fatalf("expected empty slice")
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("fulano@prefeitura.sp.gov.br"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := ValidateEmail("nao-e-email")
	if !errors.Is(err, apperr.ErrValidation) || apperr.FieldOf(err) != "email" {
		t.Fatalf("expected validation error on email, got %v", err)
	}
}

func TestCodigoCurto(t *testing.T) {
	a, b := CodigoCurto(), CodigoCurto()
	if len(a) != 10 || a == b {
		t.Fatalf("unexpected codes %q %q", a, b)
	}
}

func TestParseData(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	tests := []struct {
		valor string
		want  time.Time
	}{
		{"2025-03-10", time.Date(2025, 3, 10, 0, 0, 0, 0, loc)},
		{"2025-03-10T14:30:00", time.Date(2025, 3, 10, 14, 30, 0, 0, loc)},
		{"2025-03-10T14:30:00Z", time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)},
		{"2025-03-10T14:30:00.250-03:00", time.Date(2025, 3, 10, 14, 30, 0, 250_000_000, loc)},
	}

	for _, tc := range tests {
		got, err := ParseData("prazo", tc.valor, loc)
		if err != nil {
			t.Fatalf("ParseData(%q): %v", tc.valor, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("ParseData(%q) = %s, want %s", tc.valor, got, tc.want)
		}
	}
}

func TestParseDataInvalida(t *testing.T) {
	for _, valor := range []string{"ontem", "10/03/2025", "2025-13-01", ""} {
		_, err := ParseData("resposta", valor, time.UTC)
		if !errors.Is(err, apperr.ErrValidation) || apperr.FieldOf(err) != "resposta" {
			t.Fatalf("ParseData(%q): expected validation on resposta, got %v", valor, err)
		}
	}
}

func TestJanelaDoDia(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	agora := time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC) // 22:00 do dia 10 em São Paulo

	inicio, fim := InicioDoDia(agora, loc), FimDoDia(agora, loc)
	if !inicio.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected inicio %s", inicio)
	}
	if !fim.Equal(time.Date(2025, 3, 10, 23, 59, 59, 999_000_000, loc)) {
		t.Fatalf("unexpected fim %s", fim)
	}
}
