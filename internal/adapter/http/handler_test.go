package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestHealth_ThroughRouteTable(t *testing.T) {
	e, _ := newAPI(t)
	before := time.Now().UTC()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		t.Fatalf("content type = %q", ct)
	}

	var body struct {
		Status string `json:"status"`
		Time   string `json:"time"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body %s: %v", rec.Body.String(), err)
	}
	if body.Status != "ok" {
		t.Fatalf("status field = %q", body.Status)
	}
	at, err := time.Parse(time.RFC3339Nano, body.Time)
	if err != nil || at.Location() != time.UTC {
		t.Fatalf("time = %q (%v)", body.Time, err)
	}
	if at.Before(before.Add(-time.Second)) || at.After(time.Now().UTC().Add(time.Second)) {
		t.Fatalf("time %s is not current", at)
	}
}

// The guard wraps /v1 only; health stays reachable without idempotency headers.
func TestHealth_NotGuarded(t *testing.T) {
	e := echo.New()
	blocked := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error { return c.NoContent(http.StatusTeapot) }
	}
	Register(e, Handlers{Health: NewHandler()}, blocked)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/owners/"+owner+"/loans", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("v1 route not guarded: %d", rec.Code)
	}
}
