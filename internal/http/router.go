package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/smdu-sp/antares-backend/internal/auth"
	"github.com/smdu-sp/antares-backend/internal/config"
	httpmiddleware "github.com/smdu-sp/antares-backend/internal/http/middleware"
	"github.com/smdu-sp/antares-backend/internal/permissao"
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Deps reúne as dependências usadas pelos handlers.
type Deps struct {
	DB           dbPinger
	Redis        redisPinger
	JWT          *auth.JWTManager
	Auth         authService
	Unidades     unidadeService
	Usuarios     usuarioService
	Interessados interessadoService
	Processos    processoService
	Andamentos   andamentoService
	Logs         logService
}

type Handler struct {
	cfg           *config.Config
	deps          Deps
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	h := &Handler{
		cfg:           cfg,
		deps:          deps,
		publicLimiter: httpmiddleware.NewRateLimiter("publico", cfg.RateLimitPublic),
		authLimiter:   httpmiddleware.NewRateLimiter("autenticado", cfg.RateLimitAuth),
		devCookies:    devCookies,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Metrics)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Post("/auth/login", h.Login)
		public.Post("/auth/refresh", h.Refresh)
		public.Post("/auth/logout", h.Logout)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(deps.JWT))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)

		administradores := httpmiddleware.RequireRoles(permissao.DEV, permissao.ADM)
		operadores := httpmiddleware.RequireRoles(permissao.DEV, permissao.ADM, permissao.TEC)

		private.Route("/unidades", func(ur chi.Router) {
			ur.Get("/", h.ListUnidades)
			ur.Get("/ativas", h.ListUnidadesAtivas)
			ur.Get("/{id}", h.GetUnidade)
			ur.Group(func(adm chi.Router) {
				adm.Use(administradores)
				adm.Post("/", h.CreateUnidade)
				adm.Patch("/{id}", h.UpdateUnidade)
				adm.Patch("/{id}/desativar", h.DeactivateUnidade)
				adm.Patch("/{id}/ativar", h.ActivateUnidade)
			})
		})

		private.Route("/usuarios", func(ur chi.Router) {
			ur.Get("/", h.ListUsuarios)
			ur.Get("/{id}", h.GetUsuario)
			ur.Group(func(adm chi.Router) {
				adm.Use(administradores)
				adm.Post("/", h.CreateUsuario)
				adm.Patch("/{id}", h.UpdateUsuario)
				adm.Patch("/{id}/desativar", h.DeactivateUsuario)
				adm.Patch("/{id}/ativar", h.ActivateUsuario)
			})
		})

		private.Route("/interessados", func(ir chi.Router) {
			ir.Get("/", h.ListInteressados)
			ir.Get("/{id}", h.GetInteressado)
			ir.With(operadores).Post("/", h.CreateInteressado)
			ir.Group(func(adm chi.Router) {
				adm.Use(administradores)
				adm.Patch("/{id}", h.UpdateInteressado)
				adm.Delete("/{id}", h.DeleteInteressado)
			})
		})

		private.Route("/processos", func(pr chi.Router) {
			pr.Get("/", h.ListProcessos)
			pr.Get("/origens", h.ListOrigens)
			pr.Get("/prazos", h.ResumoPrazos)
			pr.Get("/{id}", h.GetProcesso)
			pr.Group(func(op chi.Router) {
				op.Use(operadores)
				op.Post("/", h.CreateProcesso)
				op.Post("/resposta-final", h.RespostaFinal)
				op.Patch("/{id}", h.UpdateProcesso)
				op.Patch("/{id}/desativar", h.DeactivateProcesso)
				op.Patch("/{id}/ativar", h.ActivateProcesso)
			})
		})

		private.Route("/andamentos", func(ar chi.Router) {
			ar.Get("/", h.ListAndamentos)
			ar.Get("/{id}", h.GetAndamento)
			ar.Group(func(op chi.Router) {
				op.Use(operadores)
				op.Post("/", h.CreateAndamento)
				op.Post("/lote", h.LoteAndamentos)
				op.Patch("/{id}", h.UpdateAndamento)
				op.Patch("/{id}/concluir", h.ConcluirAndamento)
				op.Patch("/{id}/prorrogar", h.ProrrogarAndamento)
				op.Delete("/{id}", h.DeleteAndamento)
			})
		})

		private.With(administradores).Get("/logs", h.ListLogs)
	})

	return r
}

// Health responde ok.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.deps.DB.Ping(ctx)
	redisErr := h.deps.Redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, CodigoInterno, "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
