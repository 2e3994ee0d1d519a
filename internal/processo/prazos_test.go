package processo

import (
	"testing"
	"time"

	"github.com/smdu-sp/antares-backend/internal/andamento"
)

func TestClassificar(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	agora := time.Date(2025, 3, 10, 14, 0, 0, 0, loc)
	ontem := time.Date(2025, 3, 9, 10, 0, 0, 0, loc)
	amanha := time.Date(2025, 3, 11, 10, 0, 0, 0, loc)
	hojeTarde := time.Date(2025, 3, 10, 23, 59, 59, 0, loc)
	hojeCedo := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)

	tests := []struct {
		name       string
		andamentos []andamento.Andamento
		want       Classificacao
	}{
		{
			name:       "prazo ontem sem prorrogacao fica atrasado",
			andamentos: []andamento.Andamento{{Prazo: ontem, Status: andamento.StatusEmAndamento, Ativo: true}},
			want:       Classificacao{Atrasado: true},
		},
		{
			name:       "prazo ontem prorrogado para amanha nao conta",
			andamentos: []andamento.Andamento{{Prazo: ontem, Prorrogacao: &amanha, Status: andamento.StatusProrrogado, Ativo: true}},
			want:       Classificacao{},
		},
		{
			name:       "prazo no fim do dia vence hoje",
			andamentos: []andamento.Andamento{{Prazo: hojeTarde, Status: andamento.StatusEmAndamento, Ativo: true}},
			want:       Classificacao{VencendoHoje: true},
		},
		{
			name:       "prazo a meia noite vence hoje",
			andamentos: []andamento.Andamento{{Prazo: hojeCedo, Status: andamento.StatusEmAndamento, Ativo: true}},
			want:       Classificacao{VencendoHoje: true},
		},
		{
			name:       "prorrogacao efetiva hoje vence hoje",
			andamentos: []andamento.Andamento{{Prazo: ontem, Prorrogacao: &hojeTarde, Status: andamento.StatusEmAndamento, Ativo: true}},
			want:       Classificacao{VencendoHoje: true},
		},
		{
			name: "somente concluidos",
			andamentos: []andamento.Andamento{
				{Prazo: ontem, Status: andamento.StatusConcluido, Ativo: true},
				{Prazo: hojeTarde, Status: andamento.StatusConcluido, Ativo: true},
			},
			want: Classificacao{},
		},
		{
			name:       "andamento inativo ignorado",
			andamentos: []andamento.Andamento{{Prazo: ontem, Status: andamento.StatusEmAndamento, Ativo: false}},
			want:       Classificacao{},
		},
		{
			name: "atrasado e vencendo ao mesmo tempo",
			andamentos: []andamento.Andamento{
				{Prazo: ontem, Status: andamento.StatusEmAndamento, Ativo: true},
				{Prazo: hojeTarde, Status: andamento.StatusEmAndamento, Ativo: true},
			},
			want: Classificacao{VencendoHoje: true, Atrasado: true},
		},
		{
			name:       "prazo amanha nao conta",
			andamentos: []andamento.Andamento{{Prazo: amanha, Status: andamento.StatusEmAndamento, Ativo: true}},
			want:       Classificacao{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classificar(tc.andamentos, agora, loc); got != tc.want {
				t.Fatalf("Classificar = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestJanelaDoDiaUsaFusoConfigurado(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// 01:30 UTC do dia 11 ainda é dia 10 em São Paulo.
	agora := time.Date(2025, 3, 11, 1, 30, 0, 0, time.UTC)

	inicio, fim := JanelaDoDia(agora, loc)
	if inicio.Day() != 10 || fim.Day() != 10 {
		t.Fatalf("unexpected janela %s - %s", inicio, fim)
	}
	if fim.Sub(inicio) != 24*time.Hour-time.Millisecond {
		t.Fatalf("unexpected janela length %s", fim.Sub(inicio))
	}
}
