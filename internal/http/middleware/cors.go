package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	corsHeaders = "Authorization, Content-Type, X-Requested-With, X-Request-Id"
	corsMethods = "GET, POST, PATCH, DELETE, OPTIONS"
	corsExpose  = "Retry-After, X-Request-Id"
	corsMaxAge  = "600"
)

// origens separa as entradas de ALLOW_ORIGINS em exatas e sufixos de subdomínio.
type origens struct {
	exatas   map[string]struct{}
	sufixos  []string
	qualquer bool
}

func novasOrigens(permitidas []string) origens {
	o := origens{exatas: make(map[string]struct{}, len(permitidas))}
	for _, entrada := range permitidas {
		e := strings.ToLower(strings.TrimSpace(entrada))
		switch {
		case e == "":
		case e == "*":
			o.qualquer = true
		case strings.HasPrefix(e, "*."):
			o.sufixos = append(o.sufixos, strings.TrimPrefix(e, "*"))
		default:
			o.exatas[strings.TrimSuffix(e, "/")] = struct{}{}
		}
	}
	return o
}

func (o origens) permite(origin string) bool {
	if origin == "" {
		return false
	}
	origin = strings.ToLower(origin)
	if o.qualquer {
		return true
	}
	if _, ok := o.exatas[origin]; ok {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	for _, suf := range o.sufixos {
		// o sufixo exige subdomínio: "*.smul.sp.gov.br" não libera "smul.sp.gov.br"
		if strings.HasSuffix(host, suf) && host != strings.TrimPrefix(suf, ".") {
			return true
		}
	}
	return false
}

// CORS libera as origens de ALLOW_ORIGINS, aceitando entradas exatas
// (https://antares.prefeitura.sp.gov.br) e curingas de subdomínio (*.prefeitura.sp.gov.br).
func CORS(permitidas []string) func(http.Handler) http.Handler {
	o := novasOrigens(permitidas)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			w.Header().Add("Vary", "Origin")

			if o.permite(origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Expose-Headers", corsExpose)
				if r.Method == http.MethodOptions {
					h.Set("Access-Control-Allow-Headers", corsHeaders)
					h.Set("Access-Control-Allow-Methods", corsMethods)
					h.Set("Access-Control-Max-Age", corsMaxAge)
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
