package daemon

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (d *Daemon) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(d.requestLogger)
	r.Use(d.measure)

	r.Get("/healthz", d.handleHealth)
	r.Method(http.MethodGet, "/metrics", d.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(bearerAuth(d.cfg.Paths.APIToken))

		r.Get("/status", d.handleStatus)

		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Post("/allocate", d.handleAllocate)
			r.Post("/images", d.handleImport)
			r.Post("/images/stub", d.handleStub)
			r.Get("/images", d.handleList)
			r.Get("/images/labeled", d.handleListLabeled)
			r.Get("/images/unlabeled", d.handleListUnlabeled)
			r.Get("/images/import", d.handleLookup)
			r.Post("/images/query", d.handleMembership)
			r.Post("/images/delete", d.handleDeleteByIDs)
			r.Post("/images/move", d.handleMove)
			r.Post("/images/rehome", d.handleRehome)
			r.Get("/stats", d.handleStats)
		})

		r.Get("/images/{imageID}", d.handleDescribe)
		r.Put("/images/{imageID}/label", d.handleLabel)
		r.Put("/images/{imageID}/labeled", d.handleLabeled)
		r.Delete("/images/{imageID}", d.handleDelete)
	})

	return r
}

// measure records request counts and latency against the chi route pattern
// so per-image paths do not explode metric cardinality.
func (d *Daemon) measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		d.metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		d.metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
