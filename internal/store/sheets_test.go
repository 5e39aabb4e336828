package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestSheetsStoreAppendRowSuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"updates":{"updatedRows":1}}`))
	}))
	defer server.Close()

	sheets := NewSheetsStore(SheetsConfig{
		SpreadsheetID: "sheet-1",
		AccessToken:   "token-1",
		BaseURL:       server.URL,
		Timeout:       2 * time.Second,
	})

	err := sheets.AppendRow(context.Background(), []string{"Jane", "March 3, 2024"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !strings.Contains(gotPath, "/v4/spreadsheets/sheet-1/values/") {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer token-1" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}

	var body struct {
		Values [][]string `json:"values"`
	}
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if len(body.Values) != 1 || body.Values[0][0] != "Jane" {
		t.Fatalf("unexpected values payload %v", body.Values)
	}
}

func TestSheetsStoreRetriesOnRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limited"}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	sheets := NewSheetsStore(SheetsConfig{
		SpreadsheetID: "sheet-1",
		AccessToken:   "token-1",
		BaseURL:       server.URL,
		MaxRetries:    2,
	})
	if err := sheets.AppendRow(context.Background(), []string{"row"}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestSheetsStoreDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad_range"}`))
	}))
	defer server.Close()

	sheets := NewSheetsStore(SheetsConfig{
		SpreadsheetID: "sheet-1",
		AccessToken:   "token-1",
		BaseURL:       server.URL,
		MaxRetries:    3,
	})
	err := sheets.AppendRow(context.Background(), []string{"row"})
	if err == nil {
		t.Fatalf("expected error on 400 response")
	}
	if calls != 1 {
		t.Fatalf("client errors must not be retried, got %d calls", calls)
	}
}

func TestSheetsStoreUnavailableWithoutCredentials(t *testing.T) {
	sheets := NewSheetsStore(SheetsConfig{})
	if sheets.Available() {
		t.Fatalf("store without credentials must not report available")
	}
	if err := sheets.AppendRow(context.Background(), []string{"row"}); err != ErrSheetsUnavailable {
		t.Fatalf("expected ErrSheetsUnavailable, got %v", err)
	}
}
