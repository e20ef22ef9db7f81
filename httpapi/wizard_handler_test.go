package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"rate-comparison/models"
	"rate-comparison/services"
	"rate-comparison/utils"
)

type stubSearcher struct {
	query  string
	radius float64
	stores []models.Store
	err    error
}

func (s *stubSearcher) SearchStores(_ context.Context, query string, radius float64) ([]models.Store, error) {
	s.query, s.radius = query, radius
	return s.stores, s.err
}

func newWizardServer(t *testing.T, searcher services.StoreSearcher) *httptest.Server {
	t.Helper()
	logger := utils.NewLoggerTo(io.Discard, io.Discard, utils.LevelError)
	srv := httptest.NewServer(BuildRouter(Deps{
		Aggregator: services.NewAggregator(logger),
		Searcher:   searcher,
		Logger:     logger,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStoreSearch(t *testing.T) {
	searcher := &stubSearcher{stores: []models.Store{{ID: "A", Name: "Alpha Storage", Distance: 1.5}}}
	srv := newWizardServer(t, searcher)

	resp := getJSON(t, srv.URL+"/stores/search?q=Austin%2C+TX&radius=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	var body struct {
		Query  string         `json:"query"`
		Stores []models.Store `json:"stores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if searcher.query != "Austin, TX" || searcher.radius != 5 {
		t.Errorf("searcher got %q/%v", searcher.query, searcher.radius)
	}
	if len(body.Stores) != 1 || body.Stores[0].ID != "A" {
		t.Errorf("stores: got %+v", body.Stores)
	}
}

func TestStoreSearchErrors(t *testing.T) {
	tests := []struct {
		name     string
		searcher services.StoreSearcher
		path     string
		want     int
	}{
		{"disabled", nil, "/stores/search?q=austin", http.StatusNotImplemented},
		{"empty query", &stubSearcher{}, "/stores/search?q=+", http.StatusBadRequest},
		{"bad radius", &stubSearcher{}, "/stores/search?q=austin&radius=far", http.StatusBadRequest},
		{"upstream", &stubSearcher{err: errors.New("boom")}, "/stores/search?q=austin", http.StatusBadGateway},
	}
	for _, tt := range tests {
		srv := newWizardServer(t, tt.searcher)
		if resp := getJSON(t, srv.URL+tt.path); resp.StatusCode != tt.want {
			t.Errorf("%s: status %d, want %d", tt.name, resp.StatusCode, tt.want)
		}
	}
}

func TestToggleSize(t *testing.T) {
	srv := newWizardServer(t, nil)

	tests := []struct {
		name string
		body map[string]any
		want []string
	}{
		{"remove from defaults", map[string]any{"selected": nil, "size": "10X10"},
			[]string{"5x5", "5x10", "10x15", "10x20", "10x25", "10x30"}},
		{"add to empty", map[string]any{"selected": []string{}, "size": "15x15"},
			[]string{"15x15"}},
		{"remove last", map[string]any{"selected": []string{"5x5"}, "size": "5x5"},
			[]string{}},
	}
	for _, tt := range tests {
		resp := postJSON(t, srv.URL+"/sizes/toggle", tt.body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", tt.name, resp.StatusCode)
		}
		var body struct {
			Selected []string `json:"selected"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(body.Selected, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, body.Selected, tt.want)
		}
	}

	if resp := postJSON(t, srv.URL+"/sizes/toggle", map[string]any{"size": " "}); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank size: status %d, want 400", resp.StatusCode)
	}
}
