package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/apperr"
	httpmiddleware "github.com/smdu-sp/antares-backend/internal/http/middleware"
	"github.com/smdu-sp/antares-backend/internal/permissao"
	"github.com/smdu-sp/antares-backend/internal/util"
)

const maxBodyBytes = 1 << 20

// decodeJSON lê o corpo da requisição; em caso de falha já responde 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, CodigoValidacao, "JSON inválido", nil)
		return false
	}
	return true
}

// solicitante extrai o usuário autenticado; em caso de falha já responde 401.
func solicitante(w http.ResponseWriter, r *http.Request) (permissao.Solicitante, bool) {
	sol, ok := httpmiddleware.Solicitante(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, CodigoAuth, "identificação inválida", nil)
		return permissao.Solicitante{}, false
	}
	return sol, true
}

// pathID lê o parâmetro {id} da rota; em caso de falha já responde 400.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodigoValidacao, "id inválido", map[string]string{"campo": "id"})
		return uuid.Nil, false
	}
	return id, true
}

// paginacao lê pagina e limite; valores inválidos caem nos defaults.
func paginacao(r *http.Request) util.Paginacao {
	q := r.URL.Query()
	var p util.Paginacao
	if v, err := strconv.Atoi(strings.TrimSpace(q.Get("pagina"))); err == nil {
		p.Pagina = v
	}
	if v, err := strconv.Atoi(strings.TrimSpace(q.Get("limite"))); err == nil {
		p.Limite = v
	}
	return p.Normalizar()
}

func queryBool(r *http.Request, key string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation(key, key+" deve ser true ou false")
	}
	return &v, nil
}

func queryFlag(r *http.Request, key string) (bool, error) {
	v, err := queryBool(r, key)
	if err != nil || v == nil {
		return false, err
	}
	return *v, nil
}

func queryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Validation(key, key+" inválido")
	}
	return &id, nil
}

func queryBusca(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("busca"))
}

// toggleFunc é a assinatura comum de ativar/desativar.
type toggleFunc[T any] func(ctx context.Context, sol permissao.Solicitante, id uuid.UUID) (*T, error)
