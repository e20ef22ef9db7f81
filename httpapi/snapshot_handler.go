package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"rate-comparison/models"
	"rate-comparison/storage"
)

// RegisterSnapshot exposes the saved wizard state. Without a snapshot store
// every route answers 501.
func RegisterSnapshot(r chi.Router, d Deps) {
	r.Route("/snapshot", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if d.Snapshots == nil {
					writeError(w, req, http.StatusNotImplemented, "snapshots_disabled", nil)
					return
				}
				next.ServeHTTP(w, req)
			})
		})

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			snap, err := d.Snapshots.Load(req.Context())
			if errors.Is(err, storage.ErrSnapshotNotFound) {
				writeError(w, req, http.StatusNotFound, "not_found", nil)
				return
			}
			if err != nil {
				writeError(w, req, http.StatusInternalServerError, "load_failed", err)
				return
			}
			render.JSON(w, req, snap)
		})

		r.Put("/", func(w http.ResponseWriter, req *http.Request) {
			var state models.WizardState
			if err := json.NewDecoder(req.Body).Decode(&state); err != nil {
				writeError(w, req, http.StatusBadRequest, "invalid_json", err)
				return
			}
			snap, err := d.Snapshots.Save(req.Context(), state)
			if err != nil {
				writeError(w, req, http.StatusInternalServerError, "save_failed", err)
				return
			}
			render.JSON(w, req, snap)
		})

		r.Delete("/", func(w http.ResponseWriter, req *http.Request) {
			if err := d.Snapshots.Clear(req.Context()); err != nil {
				writeError(w, req, http.StatusInternalServerError, "clear_failed", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}
