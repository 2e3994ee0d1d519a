package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/usuario"
)

type usuarioPayload struct {
	Nome      *string    `json:"nome"`
	Login     *string    `json:"login"`
	Email     *string    `json:"email"`
	Permissao *string    `json:"permissao"`
	UnidadeID *uuid.UUID `json:"unidade_id"`
	Senha     *string    `json:"senha"`
}

// ListUsuarios lista usuários visíveis ao solicitante.
func (h *Handler) ListUsuarios(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}

	ativo, err := queryBool(r, "status")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	unidadeID, err := queryUUID(r, "unidade_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	pagina, err := h.deps.Usuarios.Listar(r.Context(), sol, usuario.Filtro{
		Busca:     queryBusca(r),
		Permissao: strings.TrimSpace(r.URL.Query().Get("permissao")),
		UnidadeID: unidadeID,
		Ativo:     ativo,
		Paginacao: paginacao(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, pagina)
}

func (h *Handler) GetUsuario(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := h.deps.Usuarios.Buscar(r.Context(), sol, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) CreateUsuario(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}

	var payload usuarioPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	input := usuario.CriarInput{
		Nome:      valor(payload.Nome),
		Login:     valor(payload.Login),
		Email:     valor(payload.Email),
		Permissao: valor(payload.Permissao),
		Senha:     valor(payload.Senha),
	}
	if payload.UnidadeID != nil {
		input.UnidadeID = *payload.UnidadeID
	}

	u, err := h.deps.Usuarios.Criar(r.Context(), sol, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, u)
}

// UpdateUsuario aplica alteração parcial; login não é alterável.
func (h *Handler) UpdateUsuario(w http.ResponseWriter, r *http.Request) {
	sol, ok := solicitante(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var payload usuarioPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.Login != nil {
		WriteError(w, http.StatusBadRequest, CodigoValidacao, "login não pode ser alterado", map[string]string{"campo": "login"})
		return
	}

	u, err := h.deps.Usuarios.Atualizar(r.Context(), sol, usuario.AtualizarInput{
		ID:        id,
		Nome:      payload.Nome,
		Email:     payload.Email,
		Permissao: payload.Permissao,
		UnidadeID: payload.UnidadeID,
		Senha:     payload.Senha,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) DeactivateUsuario(w http.ResponseWriter, r *http.Request) {
	h.toggleUsuario(w, r, h.deps.Usuarios.Desativar)
}

func (h *Handler) ActivateUsuario(w http.ResponseWriter, r *http.Request) {
	h.toggleUsuario(w, r, h.deps.Usuarios.Ativar)
}

func (h *Handler) toggleUsuario(w http.ResponseWriter, r *http.Request, fn toggleFunc[usuario.Usuario]) {
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

func valor(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
