package settings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	settingsModel "github.com/opencodex/codex-web/backend/internal/model/settings"
)

func setupRouter() (*chi.Mux, *settingsModel.MemoryStore) {
	store := settingsModel.NewMemoryStore(settingsModel.Defaults())
	handler := New(store)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func TestGetConfigDefaults(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var record settingsModel.Record
	if err := json.Unmarshal(resp.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.ApprovalMode != settingsModel.ModeSuggest {
		t.Fatalf("default approval mode: %s", record.ApprovalMode)
	}
	if record.DefaultProvider != "openai" {
		t.Fatalf("default provider: %s", record.DefaultProvider)
	}
}

func TestUpdateConfigMergesPartial(t *testing.T) {
	r, store := setupRouter()

	payload := []byte(`{"defaultModel":"gpt-4.1","approvalMode":"full-auto"}`)
	req := httptest.NewRequest(http.MethodPost, "/config", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	record := store.Get()
	if record.DefaultModel != "gpt-4.1" {
		t.Fatalf("model not merged: %s", record.DefaultModel)
	}
	if record.ApprovalMode != settingsModel.ModeFullAuto {
		t.Fatalf("approval mode not merged: %s", record.ApprovalMode)
	}
	// Fields absent from the payload keep their values.
	if record.DefaultProvider != "openai" {
		t.Fatalf("provider changed unexpectedly: %s", record.DefaultProvider)
	}
}

func TestUpdateConfigBadBody(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/config", bytes.NewReader([]byte("{")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
