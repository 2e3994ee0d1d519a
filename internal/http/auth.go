package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/auditoria"
	"github.com/smdu-sp/antares-backend/internal/auth"
	httpmiddleware "github.com/smdu-sp/antares-backend/internal/http/middleware"
)

const refreshCookie = "antares_refresh"

// Login autentica por login e senha.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Login string `json:"login"`
		Senha string `json:"senha"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	if strings.TrimSpace(payload.Login) == "" || strings.TrimSpace(payload.Senha) == "" {
		WriteError(w, http.StatusBadRequest, CodigoValidacao, "login e senha são obrigatórios", nil)
		return
	}

	result, err := h.deps.Auth.Login(r.Context(), payload.Login, payload.Senha)
	if err != nil {
		h.handleAuthError(w, r, err)
		return
	}

	if id, err := uuid.Parse(result.Usuario.ID); err == nil {
		h.deps.Logs.Registrar(r.Context(), auditoria.Entrada{
			UsuarioID:  id,
			Acao:       auditoria.AcaoLogin,
			Entidade:   "usuario",
			EntidadeID: result.Usuario.ID,
		})
	}

	h.writeLoginSuccess(w, result)
}

// Refresh rotaciona o par de tokens.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := refreshFromRequest(r)
	if token == "" {
		WriteError(w, http.StatusUnauthorized, CodigoAuth, "refresh ausente", nil)
		return
	}

	result, err := h.deps.Auth.Refresh(r.Context(), token)
	if err != nil {
		h.handleAuthError(w, r, err)
		return
	}

	h.writeLoginSuccess(w, result)
}

// Logout revoga refresh token atual.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := refreshFromRequest(r); token != "" {
		_ = h.deps.Auth.Logout(r.Context(), token)
	}

	h.clearRefreshCookie(w)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me retorna informações do usuário autenticado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, CodigoAuth, "subject inválido", nil)
		return
	}

	perfil, err := h.deps.Auth.Perfil(r.Context(), subject)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			WriteError(w, http.StatusUnauthorized, CodigoAuth, "usuário não encontrado", nil)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, perfil)
}

func (h *Handler) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrRefreshInvalid):
		WriteError(w, http.StatusUnauthorized, CodigoAuth, err.Error(), nil)
	case errors.Is(err, auth.ErrAccountDisabled):
		WriteError(w, http.StatusForbidden, CodigoProibido, err.Error(), nil)
	default:
		writeServiceError(w, r, err)
	}
}

func (h *Handler) writeLoginSuccess(w http.ResponseWriter, result *auth.LoginResult) {
	h.setRefreshCookie(w, result.RefreshToken, time.Now().Add(h.cfg.JWTRefreshTTL))
	WriteJSON(w, http.StatusOK, result)
}

// refreshFromRequest aceita o token no corpo ou no cookie.
func refreshFromRequest(r *http.Request) string {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		_ = json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&payload)
	}
	if token := strings.TrimSpace(payload.RefreshToken); token != "" {
		return token
	}
	if c, err := r.Cookie(refreshCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, h.buildRefreshCookie(token, expires, 0))
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, h.buildRefreshCookie("", time.Time{}, -1))
}

func (h *Handler) buildRefreshCookie(value string, expires time.Time, maxAge int) *http.Cookie {
	sameSite := http.SameSiteNoneMode
	if h.devCookies {
		sameSite = http.SameSiteLaxMode
	}
	return &http.Cookie{
		Name:     refreshCookie,
		Value:    value,
		Path:     "/auth",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !h.devCookies,
		SameSite: sameSite,
	}
}
