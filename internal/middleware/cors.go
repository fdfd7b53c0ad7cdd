package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

// CORSConfig lists what browsers on other origins may do. "*" in AllowedOrigins admits any origin.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig admits no origin until AllowedOrigins is set
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type",
			"If-None-Match", "X-Requested-With", RequestIDHeader,
		},
		// ETag drives dashboard revalidation from the browser
		ExposedHeaders:   []string{"ETag", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}
}

// corsPolicy is a CORSConfig resolved once into lookups and header values
type corsPolicy struct {
	anyOrigin bool
	origins   map[string]struct{}
	headers   map[string]string
}

func newCORSPolicy(cfg *CORSConfig) *corsPolicy {
	p := &corsPolicy{
		origins: make(map[string]struct{}, len(cfg.AllowedOrigins)),
		headers: map[string]string{},
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			p.anyOrigin = true
		}
		p.origins[o] = struct{}{}
	}

	set := func(name string, values []string) {
		if len(values) > 0 {
			p.headers[name] = strings.Join(values, ", ")
		}
	}
	set("Access-Control-Allow-Methods", cfg.AllowedMethods)
	set("Access-Control-Allow-Headers", cfg.AllowedHeaders)
	set("Access-Control-Expose-Headers", cfg.ExposedHeaders)
	if cfg.AllowCredentials {
		p.headers["Access-Control-Allow-Credentials"] = "true"
	}
	if cfg.MaxAge > 0 {
		p.headers["Access-Control-Max-Age"] = strconv.Itoa(cfg.MaxAge)
	}
	return p
}

func (p *corsPolicy) allows(origin string) bool {
	if p.anyOrigin {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

// CORS answers preflights itself and decorates cross-origin responses.
// Requests without Origin are not cross-origin and pass untouched. A disallowed origin
// gets a 403 envelope on preflight; its simple requests pass without CORS headers,
// so the browser withholds the response.
func CORS(cfg *CORSConfig, log *logger.Logger) func(http.Handler) http.Handler {
	if cfg == nil {
		cfg = DefaultCORSConfig()
	}
	policy := newCORSPolicy(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			preflight := r.Method == http.MethodOptions

			switch {
			case origin == "":
				next.ServeHTTP(w, r)
			case !policy.allows(origin):
				if !preflight {
					next.ServeHTTP(w, r)
					return
				}
				writeErrorResponse(w, r, errors.NewAuthorizationError("Origin not allowed"), log.WithField("origin", origin))
			default:
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				for name, value := range policy.headers {
					h.Set(name, value)
				}
				if preflight {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
			}
		})
	}
}
