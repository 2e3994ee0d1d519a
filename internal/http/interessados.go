package http

import (
	"net/http"

	"github.com/smdu-sp/antares-backend/internal/interessado"
)

type interessadoPayload struct {
	Nome string `json:"nome"`
}

func (h *Handler) ListInteressados(w http.ResponseWriter, r *http.Request) {
	pagina, err := h.deps.Interessados.Listar(r.Context(), interessado.Filtro{
		Busca:     queryBusca(r),
		Paginacao: paginacao(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, pagina)
}

func (h *Handler) GetInteressado(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	i, err := h.deps.Interessados.Buscar(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, i)
}

func (h *Handler) CreateInteressado(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	var payload interessadoPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	i, err := h.deps.Interessados.Criar(r.Context(), sol, payload.Nome)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, i)
}

func (h *Handler) UpdateInteressado(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload interessadoPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	i, err := h.deps.Interessados.Atualizar(r.Context(), sol, id, payload.Nome)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, i)
}

// DeleteInteressado remove definitivamente; falha se houver processo vinculado.
func (h *Handler) DeleteInteressado(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.deps.Interessados.Excluir(r.Context(), sol, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"excluido": true})
}
