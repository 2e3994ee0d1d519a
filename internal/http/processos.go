package http

import (
	"net/http"

	"github.com/smdu-sp/antares-backend/internal/processo"
)

// ListProcessos aceita busca, vencendoHoje, atrasados, ativo e unidade_id.
func (h *Handler) ListProcessos(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}

	filtro := processo.Filtro{Busca: queryBusca(r), Paginacao: paginacao(r)}
	var err error
	if filtro.VencendoHoje, err = queryFlag(r, "vencendoHoje"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if filtro.Atrasados, err = queryFlag(r, "atrasados"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if filtro.Ativo, err = queryBool(r, "ativo"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if filtro.UnidadeID, err = queryUUID(r, "unidade_id"); err != nil {
		writeServiceError(w, r, err)
		return
	}

	pagina, err := h.deps.Processos.Listar(r.Context(), sol, filtro)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, pagina)
}

// ListOrigens devolve origens já usadas, para autocomplete.
func (h *Handler) ListOrigens(w http.ResponseWriter, r *http.Request) {
	origens, err := h.deps.Processos.Origens(r.Context(), queryBusca(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, origens)
}

// ResumoPrazos conta processos vencendo hoje e atrasados no escopo do solicitante.
func (h *Handler) ResumoPrazos(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	resumo, err := h.deps.Processos.ResumoPrazos(r.Context(), sol)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, resumo)
}

func (h *Handler) GetProcesso(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.deps.Processos.Buscar(r.Context(), sol, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProcesso(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	var input processo.CriarInput
	if !decodeJSON(w, r, &input) {
		return
	}
	p, err := h.deps.Processos.Criar(r.Context(), sol, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProcesso(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input processo.AtualizarInput
	if !decodeJSON(w, r, &input) {
		return
	}
	p, err := h.deps.Processos.Atualizar(r.Context(), sol, id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) DeactivateProcesso(w http.ResponseWriter, r *http.Request) {
	h.toggleProcesso(w, r, h.deps.Processos.Desativar)
}

func (h *Handler) ActivateProcesso(w http.ResponseWriter, r *http.Request) {
	h.toggleProcesso(w, r, h.deps.Processos.Ativar)
}

func (h *Handler) toggleProcesso(w http.ResponseWriter, r *http.Request, fn toggleFunc[processo.Processo]) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := fn(r.Context(), sol, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// RespostaFinal registra a resposta final do processo.
// Responde 201 quando grava o andamento terminal e 200 quando a resposta já existia.
func (h *Handler) RespostaFinal(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	var input processo.RespostaFinalInput
	if !decodeJSON(w, r, &input) {
		return
	}
	resultado, err := h.deps.Processos.RespostaFinal(r.Context(), sol, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if resultado.Situacao == processo.RespostaRegistrada {
		status = http.StatusCreated
	}
	WriteJSON(w, status, resultado)
}
