package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	"rate-comparison/services"
	"rate-comparison/storage"
	"rate-comparison/utils"
)

// Deps are the collaborators the HTTP surface needs. Source, Searcher and
// Snapshots may be nil; the matching endpoints then degrade as documented per handler.
type Deps struct {
	Aggregator *services.Aggregator
	Source     services.ObservationSource
	Searcher   services.StoreSearcher
	Snapshots  storage.SnapshotStore
	Logger     *utils.Logger
	Now        func() time.Time
}

func BuildRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = utils.NewLogger()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(d.Logger.With("http")))
	r.Use(httprate.LimitByIP(120, 1*time.Minute))
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]any{"ok": true})
	})

	RegisterReport(r, d)
	RegisterSnapshot(r, d)
	RegisterWizard(r, d)
	return r
}

func requestLogger(logger *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= 500 {
				logger.Error("%s %s %d %v", r.Method, r.URL.Path, status, time.Since(start))
				return
			}
			logger.Debug("%s %s %d %v", r.Method, r.URL.Path, status, time.Since(start))
		})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	body := map[string]any{"error": code}
	if err != nil {
		body["detail"] = err.Error()
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}
