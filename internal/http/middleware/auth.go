package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/smdu-sp/antares-backend/internal/auth"
	"github.com/smdu-sp/antares-backend/internal/permissao"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeyRole    contextKey = "role"
	ContextKeyUnidade contextKey = "unidade"
)

// Auth valida JWT de acesso e injeta claims no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(strings.TrimSpace(parts[1]))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyRole, permissao.Normalizar(claims.Role))
			ctx = context.WithValue(ctx, ContextKeyUnidade, claims.UnidadeID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject recupera subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetRole recupera a permissão do contexto.
func GetRole(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyRole).(string)
	return val
}

// GetUnidade recupera a unidade do usuário autenticado.
func GetUnidade(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyUnidade).(string)
	return val
}

// Solicitante monta o solicitante a partir das claims do contexto.
func Solicitante(ctx context.Context) (permissao.Solicitante, bool) {
	id, err := uuid.Parse(GetSubject(ctx))
	if err != nil {
		return permissao.Solicitante{}, false
	}
	role := GetRole(ctx)
	if role == "" {
		return permissao.Solicitante{}, false
	}
	unidadeID, _ := uuid.Parse(GetUnidade(ctx))
	return permissao.Solicitante{ID: id, Permissao: role, UnidadeID: unidadeID}, true
}

// RequireRoles garante que o usuário possua um dos papéis informados.
func RequireRoles(requiredRoles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(requiredRoles))
	for _, role := range requiredRoles {
		role = permissao.Normalizar(role)
		if role != "" {
			allowed[role] = struct{}{}
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[GetRole(r.Context())]; ok {
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, http.StatusForbidden, "FORBIDDEN", "permissão insuficiente")
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
