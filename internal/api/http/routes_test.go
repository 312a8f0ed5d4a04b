package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/emissions-explorer/internal/indicators"
	"github.com/i474232898/emissions-explorer/internal/store"
)

type staticSource struct {
	obs []indicators.Observation
}

func (s staticSource) Name() string { return "static" }

func (s staticSource) Fetch(context.Context, []string) ([]indicators.Observation, error) {
	return s.obs, nil
}

func year(y int) time.Time { return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC) }

func obs(entity string, y int, code string, v float64) indicators.Observation {
	return indicators.Observation{Entity: entity, Date: year(y), Code: code, Value: indicators.Value{Float: v, Valid: true}}
}

func newTestApp(t *testing.T, load bool) *fiber.App {
	t.Helper()

	catalog := indicators.Catalog{
		{Code: "X", Name: "CO2 emissions (kt)"},
		{Code: "Y", Name: "Arable land (% of land area)"},
	}
	src := staticSource{obs: []indicators.Observation{
		obs("World", 2000, "X", 10),
		obs("World", 2002, "X", 12),
		obs("A", 2000, "X", 1),
		obs("B", 2000, "X", 2),
		obs("B", 2001, "X", 3),
		obs("A", 2000, "Y", 50),
	}}
	svc := indicators.NewService(src, store.NewMemoryStore(), catalog, []string{"B", "A"})
	if load {
		if _, err := svc.Load(context.Background(), "test.db"); err != nil {
			t.Fatalf("load: %v", err)
		}
	}

	app := fiber.New()
	RegisterRoutes(app, svc, "CO2 emissions (kt)")
	return app
}

func get(t *testing.T, app *fiber.App, target string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestWorldEndpointUsesDefaultMetric(t *testing.T) {
	app := newTestApp(t, true)

	resp := get(t, app, "/api/v1/metrics/world")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Metric string `json:"metric"`
		Series []struct {
			Date  time.Time `json:"date"`
			Value float64   `json:"value"`
		} `json:"series"`
	}
	decode(t, resp, &body)
	if body.Metric != "CO2 emissions (kt)" || len(body.Series) != 2 || body.Series[1].Value != 12 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRegionsEndpointKeepsOrderAndMissingCells(t *testing.T) {
	app := newTestApp(t, true)

	resp := get(t, app, "/api/v1/metrics/regions?metric="+url.QueryEscape("CO2 emissions (kt)"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Regions struct {
			Columns []string     `json:"columns"`
			Cells   [][]*float64 `json:"cells"`
		} `json:"regions"`
	}
	decode(t, resp, &body)

	cols := body.Regions.Columns
	if len(cols) != 2 || cols[0] != "B" || cols[1] != "A" {
		t.Fatalf("expected columns [B A], got %v", cols)
	}
	if len(body.Regions.Cells) != 2 || body.Regions.Cells[1][1] != nil || *body.Regions.Cells[1][0] != 3 {
		t.Fatalf("unexpected cells: %v", body.Regions.Cells)
	}
}

func TestUnknownMetricIsNotFound(t *testing.T) {
	app := newTestApp(t, true)

	for _, path := range []string{"/api/v1/metrics/world", "/api/v1/metrics/regions", "/api/v1/metrics/view", "/api/v1/metrics/chart.png"} {
		resp := get(t, app, path+"?metric=Nope")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusNotFound, resp.StatusCode)
		}
	}
}

func TestEntityEndpoint(t *testing.T) {
	app := newTestApp(t, true)

	resp := get(t, app, "/api/v1/entities/B")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	resp = get(t, app, "/api/v1/entities/"+url.PathEscape("Atlantis"))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestViewEndpointReportsStacking(t *testing.T) {
	app := newTestApp(t, true)

	resp := get(t, app, "/api/v1/metrics/view?metric="+url.QueryEscape("Arable land (% of land area)"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Stackable bool `json:"stackable"`
		Traces    []struct {
			Name string `json:"name"`
		} `json:"traces"`
	}
	decode(t, resp, &body)
	if body.Stackable {
		t.Fatal("percentage metric must not stack")
	}
	// A is the only region with a value, followed by World.
	if len(body.Traces) != 2 || body.Traces[0].Name != "A" || body.Traces[1].Name != "World" {
		t.Fatalf("unexpected traces: %+v", body.Traces)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, true)

	resp := get(t, app, "/api/v1/metrics")
	var body struct {
		Metrics []string `json:"metrics"`
		Default string   `json:"default"`
	}
	decode(t, resp, &body)
	if len(body.Metrics) != 2 || body.Default != "CO2 emissions (kt)" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestChartAndExportContentTypes(t *testing.T) {
	app := newTestApp(t, true)

	resp := get(t, app, "/api/v1/metrics/chart.png")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected chart response: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp = get(t, app, "/api/v1/metrics/export.xlsx")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != xlsxContentType {
		t.Fatalf("unexpected export response: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) < 4 || string(body[:2]) != "PK" {
		t.Fatal("export is not a zip-based workbook")
	}
}

func TestGreenhouseFigureNeedsItsMetrics(t *testing.T) {
	app := newTestApp(t, true)

	resp := get(t, app, "/api/v1/figures/ghg")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestNotLoadedIsUnavailable(t *testing.T) {
	app := newTestApp(t, false)

	resp := get(t, app, "/api/v1/metrics")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, resp.StatusCode)
	}
}
