package http

import (
	"net/http"
	"strings"

	"github.com/smdu-sp/antares-backend/internal/andamento"
)

// ListAndamentos aceita processo_id, status, busca e ativo.
func (h *Handler) ListAndamentos(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}

	filtro := andamento.Filtro{
		Status:    andamento.Status(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))),
		Busca:     queryBusca(r),
		Paginacao: paginacao(r),
	}
	var err error
	if filtro.ProcessoID, err = queryUUID(r, "processo_id"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if filtro.Ativo, err = queryBool(r, "ativo"); err != nil {
		writeServiceError(w, r, err)
		return
	}

	pagina, err := h.deps.Andamentos.Listar(r.Context(), sol, filtro)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, pagina)
}

func (h *Handler) GetAndamento(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	a, err := h.deps.Andamentos.Buscar(r.Context(), sol, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) CreateAndamento(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	var input andamento.CriarInput
	if !decodeJSON(w, r, &input) {
		return
	}
	a, err := h.deps.Andamentos.Criar(r.Context(), sol, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, a)
}

// UpdateAndamento aplica alteração parcial; o status é sempre derivado.
func (h *Handler) UpdateAndamento(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input andamento.AtualizarInput
	if !decodeJSON(w, r, &input) {
		return
	}
	a, err := h.deps.Andamentos.Atualizar(r.Context(), sol, id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) ConcluirAndamento(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input andamento.ConcluirInput
	if r.ContentLength != 0 && !decodeJSON(w, r, &input) {
		return
	}
	a, err := h.deps.Andamentos.Concluir(r.Context(), sol, id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) ProrrogarAndamento(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input andamento.ProrrogarInput
	if !decodeJSON(w, r, &input) {
		return
	}
	a, err := h.deps.Andamentos.Prorrogar(r.Context(), sol, id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

// DeleteAndamento desativa o andamento.
func (h *Handler) DeleteAndamento(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.deps.Andamentos.Desativar(r.Context(), sol, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"desativado": true})
}

// LoteAndamentos aplica prorrogar, concluir ou excluir a vários ids.
// Falhas individuais voltam na lista de erros sem interromper o lote.
func (h *Handler) LoteAndamentos(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	var input andamento.LoteInput
	if !decodeJSON(w, r, &input) {
		return
	}
	resultado, err := h.deps.Andamentos.Lote(r.Context(), sol, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, resultado)
}
