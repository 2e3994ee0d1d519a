package http

import (
	"net/http"

	"github.com/smdu-sp/antares-backend/internal/unidade"
)

// ListUnidades lista unidades com busca e paginação.
func (h *Handler) ListUnidades(w http.ResponseWriter, r *http.Request) {
	ativo, err := queryBool(r, "status")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	pagina, err := h.deps.Unidades.Listar(r.Context(), unidade.Filtro{
		Busca:     queryBusca(r),
		Ativo:     ativo,
		Paginacao: paginacao(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, pagina)
}

// ListUnidadesAtivas devolve as unidades ativas para autocomplete.
func (h *Handler) ListUnidadesAtivas(w http.ResponseWriter, r *http.Request) {
	unidades, err := h.deps.Unidades.ListarAtivas(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, unidades)
}

func (h *Handler) GetUnidade(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := h.deps.Unidades.Buscar(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) CreateUnidade(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}

	var payload struct {
		Nome  string `json:"nome"`
		Sigla string `json:"sigla"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	u, err := h.deps.Unidades.Criar(r.Context(), sol, unidade.CriarInput{Nome: payload.Nome, Sigla: payload.Sigla})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) UpdateUnidade(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Nome  *string `json:"nome"`
		Sigla *string `json:"sigla"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	u, err := h.deps.Unidades.Atualizar(r.Context(), sol, unidade.AtualizarInput{ID: id, Nome: payload.Nome, Sigla: payload.Sigla})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) DeactivateUnidade(w http.ResponseWriter, r *http.Request) {
	h.toggleUnidade(w, r, h.deps.Unidades.Desativar)
}

func (h *Handler) ActivateUnidade(w http.ResponseWriter, r *http.Request) {
	h.toggleUnidade(w, r, h.deps.Unidades.Ativar)
}

func (h *Handler) toggleUnidade(w http.ResponseWriter, r *http.Request, fn toggleFunc[unidade.Unidade]) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := fn(r.Context(), sol, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}
