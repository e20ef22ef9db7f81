package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"rate-comparison/models"
	"rate-comparison/services"
)

// ToggleSizeRequest flips one size in a selection. A null selection stands
// for the default sizes.
type ToggleSizeRequest struct {
	Selected []string `json:"selected"`
	Size     string   `json:"size"`
}

// RegisterWizard mounts the store search and size selection steps.
// Search answers 501 when no searcher is configured.
func RegisterWizard(r chi.Router, d Deps) {
	r.Get("/stores/search", func(w http.ResponseWriter, req *http.Request) {
		if d.Searcher == nil {
			writeError(w, req, http.StatusNotImplemented, "search_disabled", nil)
			return
		}
		q := strings.TrimSpace(req.URL.Query().Get("q"))
		if q == "" {
			writeError(w, req, http.StatusBadRequest, "query_required", errors.New("q must not be empty"))
			return
		}
		var radius float64
		if raw := req.URL.Query().Get("radius"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 {
				writeError(w, req, http.StatusBadRequest, "invalid_radius", err)
				return
			}
			radius = v
		}

		stores, err := d.Searcher.SearchStores(req.Context(), q, radius)
		if err != nil {
			writeError(w, req, http.StatusBadGateway, "upstream_error", err)
			return
		}
		if stores == nil {
			stores = []models.Store{}
		}
		render.JSON(w, req, map[string]any{"query": q, "stores": stores})
	})

	r.Post("/sizes/toggle", func(w http.ResponseWriter, req *http.Request) {
		var body ToggleSizeRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, req, http.StatusBadRequest, "invalid_json", err)
			return
		}
		if services.NormalizeSize(body.Size) == "" {
			writeError(w, req, http.StatusBadRequest, "size_required", errors.New("size must not be empty"))
			return
		}
		render.JSON(w, req, map[string]any{"selected": services.ToggleSize(body.Selected, body.Size)})
	})
}
