package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlpack-go/internal/config"
	"github.com/ukaji3/xlpack-go/internal/metrics"
	"github.com/ukaji3/xlpack-go/internal/service"
	"github.com/ukaji3/xlpack-go/internal/storage"
	"github.com/ukaji3/xlpack-go/pkg/xlpack"
)

const buildBody = `{
  "sheets": [
    {"name": "Data", "rows": [{"r": 1, "c": {"1": "Name", "2": 3}}, {"r": 2, "c": {"2": "=B1*2"}}]}
  ]
}`

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	deps := service.Deps{Metrics: metrics.New(prometheus.NewRegistry(), "xlpack")}
	if withStore {
		store, err := storage.NewMemStore(context.Background(), "")
		if err != nil {
			t.Fatalf("NewMemStore failed: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		deps.Store = store
	}
	b := service.NewBuilder(xlpack.DefaultOptions(), deps)
	return NewServer(config.ServerConfig{DevMode: true}, b, deps.Metrics, "test", nil)
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestGetStatus(t *testing.T) {
	s := newTestServer(t, false)
	w := do(s, http.MethodGet, "/api/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "test" || resp.Publish {
		t.Errorf("response = %+v", resp)
	}
}

func TestBuildReturnsPackage(t *testing.T) {
	s := newTestServer(t, false)
	w := do(s, http.MethodPost, "/api/build?name=data", buildBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="data.xlsx"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(w.Header().Get("X-Checksum"), "sha256:") || w.Header().Get("X-Build-Id") == "" {
		t.Errorf("headers = %v", w.Header())
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Data", "A1"); v != "Name" {
		t.Errorf("A1 = %q, expected Name", v)
	}
	if formula, _ := f.GetCellFormula("Data", "B2"); formula != "B1*2" {
		t.Errorf("B2 formula = %q, expected B1*2", formula)
	}
}

func TestBuildStore(t *testing.T) {
	s := newTestServer(t, true)
	w := do(s, http.MethodPost, "/api/build?store=true", buildBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var m storage.Manifest
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if m.Package.File != "workbook.xlsx" || !strings.HasPrefix(m.Package.URI, "mem://") {
		t.Errorf("manifest = %+v", m)
	}
}

func TestBuildErrors(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name     string
		target   string
		body     string
		expected int
	}{
		{"malformed body", "/api/build", `{"sheets": [`, http.StatusBadRequest},
		{"empty body", "/api/build", ``, http.StatusBadRequest},
		{"unknown document field", "/api/build", `{"sheetz": []}`, http.StatusBadRequest},
		{"unknown row field", "/api/build", `{"sheets": [{"name": "Data", "rows": [{"r": 1, "cells": {"1": "x"}}]}]}`, http.StatusBadRequest},
		{"bad name", "/api/build?name=../x", buildBody, http.StatusBadRequest},
		{"invalid sheet name", "/api/build", `{"sheets": [{"name": "a[1]"}]}`, http.StatusUnprocessableEntity},
		{"store without backend", "/api/build?store=true", buildBody, http.StatusConflict},
	}
	for _, tt := range tests {
		w := do(s, http.MethodPost, tt.target, tt.body)
		if w.Code != tt.expected {
			t.Errorf("%s: status = %d, expected %d (body %s)", tt.name, w.Code, tt.expected, w.Body.String())
		}
	}
}

func TestListBuilds(t *testing.T) {
	s := newTestServer(t, false)

	w := do(s, http.MethodGet, "/api/builds", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w := do(s, http.MethodGet, "/api/builds?limit=0", ""); w.Code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d, expected 400", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, false)
	do(s, http.MethodPost, "/api/build", buildBody)

	w := do(s, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `xlpack_builds_succeeded_total{compression="deflate"} 1`) {
		t.Errorf("metrics missing build counter:\n%s", w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind     string
		expected int
	}{
		{"invalid_document", http.StatusBadRequest},
		{"invalid_workbook", http.StatusUnprocessableEntity},
		{"timeout", http.StatusGatewayTimeout},
		{"storage", http.StatusBadGateway},
		{"packaging", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.kind); got != tt.expected {
			t.Errorf("statusFor(%q) = %d, expected %d", tt.kind, got, tt.expected)
		}
	}
}
