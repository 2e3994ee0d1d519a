package http

import (
	"net/http"
	"strings"

	"github.com/smdu-sp/antares-backend/internal/auditoria"
)

// ListLogs lista o log de auditoria, filtrando por usuario_id e entidade.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	usuarioID, err := queryUUID(r, "usuario_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	p := paginacao(r)

	pagina, err := h.deps.Logs.Listar(r.Context(), auditoria.Filtro{
		UsuarioID: usuarioID,
		Entidade:  strings.ToLower(strings.TrimSpace(r.URL.Query().Get("entidade"))),
		Pagina:    p.Pagina,
		Limite:    p.Limite,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, pagina)
}
