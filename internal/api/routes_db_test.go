package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kjannette/tradedesk-backend/internal/analysis"
	"github.com/kjannette/tradedesk-backend/internal/models"
	"github.com/kjannette/tradedesk-backend/internal/risk"
	"github.com/kjannette/tradedesk-backend/internal/sample"
	"github.com/kjannette/tradedesk-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

// Trades created here are backdated so they never count toward today's
// trading day.
const pastEntry = "2023-08-01T09:30:00+05:30"

func newDBServer(t *testing.T) http.Handler {
	t.Helper()
	pool := testutil.SetupPool(t)
	cat, err := sample.Default()
	if err != nil {
		t.Fatal(err)
	}
	s := NewServer(pool, analysis.NewStub(analysis.WithDelay(0)), cat, Options{
		Limits: risk.Limits{MaxPositionValue: decimal.NewFromInt(100000)},
	})
	return s.routes("")
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rr.Body.String(), err)
	}
	return v
}

func TestTradeRoutes(t *testing.T) {
	h := newDBServer(t)

	// 100 x 2000 = 2,00,000 is over the 1,00,000 ceiling.
	rr := do(t, h, http.MethodPost, "/v1/trades",
		`{"symbol":"tcs","side":"buy","quantity":100,"entryPrice":"2000","entryDate":"`+pastEntry+`"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("oversized trade: expected 422, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, h, http.MethodPost, "/v1/trades", `{"symbol":"TCS","side":"hold","quantity":1,"entryPrice":"10"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid side: expected 400, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodPost, "/v1/trades",
		`{"symbol":"infy","side":"buy","quantity":10,"entryPrice":"1500","entryDate":"`+pastEntry+`","notes":"route test"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	created := decode[models.Trade](t, rr)
	if created.ID == 0 || created.Symbol != "INFY" || created.Status != models.StatusOpen {
		t.Fatalf("unexpected trade %+v", created)
	}

	rr = do(t, h, http.MethodGet, fmt.Sprintf("/v1/trades/%d", created.ID), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rr.Code)
	}

	closePath := fmt.Sprintf("/v1/trades/%d/close", created.ID)
	rr = do(t, h, http.MethodPost, closePath, `{"exitPrice":"1550"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("close: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	closed := decode[models.Trade](t, rr)
	if !closed.PnL.Valid || !closed.PnL.Decimal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("pnl = %v", closed.PnL)
	}

	rr = do(t, h, http.MethodPost, closePath, `{"exitPrice":"1600"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("second close: expected 409, got %d", rr.Code)
	}

	for _, target := range []string{"/v1/trades/999999999", "/v1/trades/999999999/close"} {
		method := http.MethodGet
		body := ""
		if strings.HasSuffix(target, "/close") {
			method, body = http.MethodPost, `{"exitPrice":"1"}`
		}
		if rr := do(t, h, method, target, body); rr.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", method, target, rr.Code)
		}
	}
	if rr := do(t, h, http.MethodGet, "/v1/trades/abc", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id: expected 400, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/v1/trades?status=pending", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad status filter: expected 400, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/v1/trades/stats", ""); rr.Code != http.StatusOK {
		t.Errorf("stats: expected 200, got %d", rr.Code)
	}
}

func TestJournalRoutes(t *testing.T) {
	h := newDBServer(t)

	rr := do(t, h, http.MethodPost, "/v1/journal", `{"date":"2023-03-25","content":"no title"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing title: expected 400, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodPost, "/v1/journal",
		`{"date":"2023-03-25","title":"Route test","content":"Entered RELIANCE","tags":["Long"," breakout ","long"]}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	created := decode[models.JournalEntry](t, rr)
	if len(created.Tags) != 2 || created.Tags[0] != "long" {
		t.Fatalf("tags not normalised: %v", created.Tags)
	}

	path := fmt.Sprintf("/v1/journal/%d", created.ID)
	rr = do(t, h, http.MethodPut, path, `{"date":"2023-03-26","title":"Route test (edited)","content":"Exited","tags":["exit"]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rr.Code)
	}
	if got := decode[models.JournalEntry](t, rr); got.Title != "Route test (edited)" {
		t.Fatalf("update not applied: %+v", got)
	}

	if rr := do(t, h, http.MethodGet, "/v1/journal?tag=exit", ""); rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rr.Code)
	}

	if rr := do(t, h, http.MethodDelete, path, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, path, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodDelete, path, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rr.Code)
	}
}

func TestStrategyRoutes(t *testing.T) {
	h := newDBServer(t)

	if rr := do(t, h, http.MethodPost, "/v1/strategies", `{"description":"nameless"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing name: expected 400, got %d", rr.Code)
	}

	rr := do(t, h, http.MethodPost, "/v1/strategies", `{"name":"Route test strategy"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	created := decode[models.Strategy](t, rr)
	if !strings.HasPrefix(created.Content, "# New Trading Strategy") {
		t.Fatalf("expected template content, got %q", created.Content)
	}

	path := fmt.Sprintf("/v1/strategies/%d", created.ID)
	rr = do(t, h, http.MethodPut, path, `{"name":"Route test strategy","content":"# Updated"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodDelete, path, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPut, path, `{"name":"gone"}`); rr.Code != http.StatusNotFound {
		t.Fatalf("update after delete: expected 404, got %d", rr.Code)
	}
}

func TestSettingsRoutes(t *testing.T) {
	h := newDBServer(t)

	for _, body := range []string{
		`{"theme":"neon","refreshIntervalSeconds":60}`,
		`{"theme":"dark","refreshIntervalSeconds":45}`,
		`{"theme":"dark","refreshIntervalSeconds":60,"colour":"red"}`,
	} {
		if rr := do(t, h, http.MethodPut, "/v1/settings", body); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rr.Code)
		}
	}

	rr := do(t, h, http.MethodGet, "/v1/settings", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rr.Code)
	}
	current := decode[models.Settings](t, rr)

	// Saving the current values back leaves the shared row unchanged.
	body, _ := json.Marshal(current)
	rr = do(t, h, http.MethodPut, "/v1/settings", string(body))
	if rr.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	saved := decode[models.Settings](t, rr)
	if saved.Theme != current.Theme || saved.RefreshIntervalSeconds != current.RefreshIntervalSeconds {
		t.Fatalf("saved %+v, want %+v", saved, current)
	}
}
