package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"rate-comparison/models"
	"rate-comparison/services"
	"rate-comparison/storage"
)

// ReportRequest carries the wizard state and, optionally, the observations
// to aggregate. Without observations they are fetched from the source.
type ReportRequest struct {
	State        models.WizardState       `json:"state"`
	Observations []models.RateObservation `json:"observations,omitempty"`
	AsOf         *time.Time               `json:"as_of,omitempty"`
}

func RegisterReport(r chi.Router, d Deps) {
	r.Get("/sizes", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]any{
			"all":      services.AllUnitSizes,
			"defaults": services.DefaultSelectedSizes,
		})
	})

	r.Post("/report", func(w http.ResponseWriter, req *http.Request) {
		in, ok := reportInput(w, req, d)
		if !ok {
			return
		}
		render.JSON(w, req, d.Aggregator.Generate(in))
	})

	r.Post("/export/summary.csv", func(w http.ResponseWriter, req *http.Request) {
		in, ok := reportInput(w, req, d)
		if !ok {
			return
		}
		report := d.Aggregator.Generate(in)
		writeCSV(w, req, "rate_comparison_summary.csv", services.SummaryHeader(), services.SummaryRows(report), d)
	})

	r.Post("/export/full.csv", func(w http.ResponseWriter, req *http.Request) {
		in, ok := reportInput(w, req, d)
		if !ok {
			return
		}
		writeCSV(w, req, "rate_data_full.csv", services.FullDumpHeader, services.FullDumpRows(in), d)
	})
}

func reportInput(w http.ResponseWriter, req *http.Request, d Deps) (models.ReportInput, bool) {
	var body ReportRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, req, http.StatusBadRequest, "invalid_json", err)
		return models.ReportInput{}, false
	}

	obs := body.Observations
	if obs == nil {
		if d.Source == nil {
			writeError(w, req, http.StatusBadRequest, "observations_required",
				errors.New("no observation source configured; send observations in the request"))
			return models.ReportInput{}, false
		}
		fetched, err := d.Source.Observations(req.Context(), body.State.StoreIDs())
		if err != nil {
			writeError(w, req, http.StatusBadGateway, "upstream_error", err)
			return models.ReportInput{}, false
		}
		obs = fetched
	}

	now := d.Now()
	if body.AsOf != nil {
		now = *body.AsOf
	}
	return body.State.ReportInput(obs, now), true
}

func writeCSV(w http.ResponseWriter, req *http.Request, filename string, header []string, rows [][]string, d Deps) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := storage.WriteCSV(w, header, rows); err != nil {
		d.Logger.Error("[http] export %s failed: %v", filename, err)
	}
}
