package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rate-comparison/models"
	"rate-comparison/services"
	"rate-comparison/storage"
	"rate-comparison/utils"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func price(v float64) *float64 { return &v }

func testState() models.WizardState {
	return models.WizardState{
		SubjectStoreID:      "S",
		SelectedCompetitors: []string{"A"},
		Stores: []models.Store{
			{ID: "S", Name: "Subject Storage"},
			{ID: "A", Name: "Alpha Storage", Distance: 2.5},
			{ID: "B", Name: "Beta Storage", Distance: 1},
		},
		Adjustments: models.AdjustmentFactors{CaptiveMarketPremium: 5},
	}
}

func testObservations() []models.RateObservation {
	return []models.RateObservation{
		{StoreID: "S", Size: "10x10", DriveUp: true, Climate: true, Date: testNow.AddDate(0, 0, -10), Asking: price(150)},
		{StoreID: "A", Size: "10x10", DriveUp: true, Climate: true, Date: testNow.AddDate(0, -2, 0), Asking: price(100)},
		{StoreID: "B", Size: "10x10", DriveUp: true, Climate: true, Date: testNow.AddDate(0, -2, 0), Asking: price(90)},
	}
}

func newTestServer(t *testing.T, source services.ObservationSource, snaps storage.SnapshotStore) *httptest.Server {
	t.Helper()
	logger := utils.NewLoggerTo(io.Discard, io.Discard, utils.LevelError)
	srv := httptest.NewServer(BuildRouter(Deps{
		Aggregator: services.NewAggregator(logger),
		Source:     source,
		Snapshots:  snaps,
		Logger:     logger,
		Now:        func() time.Time { return testNow },
	}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestReportFetchesFromSource(t *testing.T) {
	var asked []string
	source := services.SourceFunc(func(_ context.Context, ids []string) ([]models.RateObservation, error) {
		asked = ids
		return testObservations(), nil
	})
	srv := newTestServer(t, source, nil)

	resp := postJSON(t, srv.URL+"/report", ReportRequest{State: testState()})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	if strings.Join(asked, ",") != "S,A" {
		t.Errorf("source asked for %v, want [S A]", asked)
	}

	var report models.GroupedReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Groups) != 1 {
		t.Fatalf("groups: got %d, want 1", len(report.Groups))
	}
	rows := report.Groups[0].Rows
	if len(rows) != 2 || rows[0].StoreID != "S" || rows[1].StoreID != "A" {
		t.Errorf("rows: got %+v", rows)
	}
	if got := rows[1].Windows[0].AdjustedAsking; got == nil || math.Abs(*got-105) > 1e-9 {
		t.Errorf("A T-12 adjusted: got %v, want 105", got)
	}
}

func TestReportUpstreamError(t *testing.T) {
	source := services.SourceFunc(func(context.Context, []string) ([]models.RateObservation, error) {
		return nil, errors.New("rates service down")
	})
	srv := newTestServer(t, source, nil)

	resp := postJSON(t, srv.URL+"/report", ReportRequest{State: testState()})
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status: got %d, want 502", resp.StatusCode)
	}
}

func TestReportWithoutSourceNeedsObservations(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp := postJSON(t, srv.URL+"/report", ReportRequest{State: testState()})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestSummaryExport(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp := postJSON(t, srv.URL+"/export/summary.csv", ReportRequest{State: testState(), Observations: testObservations()})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type: got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	// header, group label, S, A, group average
	if len(lines) != 5 {
		t.Fatalf("lines: got %d, want 5\n%s", len(lines), body)
	}
	if !strings.HasPrefix(lines[0], "Store,Distance (mi),Year Built,T-12 Adjusted Asking") {
		t.Errorf("header: got %q", lines[0])
	}
	if !strings.HasPrefix(lines[3], "Alpha Storage,2.5,N/A,$105,$100,N/A") {
		t.Errorf("Alpha row: got %q", lines[3])
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	snaps := storage.NewFileSnapshotStore(filepath.Join(t.TempDir(), "wizard.json"))
	srv := newTestServer(t, nil, snaps)

	resp, err := http.Get(srv.URL + "/snapshot")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET before PUT: got %d, want 404", resp.StatusCode)
	}

	b, _ := json.Marshal(testState())
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/snapshot", bytes.NewReader(b))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT: got %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/snapshot")
	if err != nil {
		t.Fatal(err)
	}
	var snap storage.Snapshot
	err = json.NewDecoder(resp.Body).Decode(&snap)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Version != storage.SchemaVersion || snap.State.SubjectStoreID != "S" {
		t.Errorf("snapshot: got %+v", snap)
	}

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/snapshot", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE: got %d, want 204", resp.StatusCode)
	}
}

func TestSnapshotDisabled(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	resp, err := http.Get(srv.URL + "/snapshot")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status: got %d, want 501", resp.StatusCode)
	}
}
