package httpenv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/storage"
)

func newTestEnv(t *testing.T, apiURL string) *Env {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "core.db"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(store, apiURL)
}

func TestFetchPOSTsMarshaledBodyAndDecodesResponse(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":{"ok":true}}`))
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL)
	result, err := env.Fetch(context.Background(), runtime.FetchRequest{
		Method: "POST",
		URL:    srv.URL + "/api/login",
		Body:   map[string]string{"email": "a@b.com"},
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", result.StatusCode)
	}
	if gotBody["email"] != "a@b.com" {
		t.Fatalf("expected marshaled body to reach the server, got %+v", gotBody)
	}
}

func TestFetchSurfacesNonTwoxxAsAValidResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad","code":1}}`))
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL)
	result, err := env.Fetch(context.Background(), runtime.FetchRequest{Method: "POST", URL: srv.URL})
	if err != nil {
		t.Fatalf("expected no transport error on a 400, got %v", err)
	}
	if result.StatusCode != 400 {
		t.Fatalf("expected 400 passed through, got %d", result.StatusCode)
	}
}

func TestNowReturnsAMonotonicallyIncreasingTimestamp(t *testing.T) {
	env := newTestEnv(t, "https://api.test")
	a := env.Now()
	b := env.Now()
	if b < a {
		t.Fatalf("expected non-decreasing timestamps, got %d then %d", a, b)
	}
}

func TestExecRunsOnABackgroundGoroutine(t *testing.T) {
	env := newTestEnv(t, "https://api.test")
	done := make(chan struct{})
	env.Exec(func(ctx context.Context) { close(done) })
	<-done
}

func TestStorageRoundTripsThroughTheEmbeddedStore(t *testing.T) {
	env := newTestEnv(t, "https://api.test")
	ctx := context.Background()
	if err := env.SetStorage(ctx, "profile", []byte("x")); err != nil {
		t.Fatalf("SetStorage: %v", err)
	}
	got, ok, err := env.GetStorage(ctx, "profile")
	if err != nil || !ok || string(got) != "x" {
		t.Fatalf("GetStorage: got=%q ok=%v err=%v", got, ok, err)
	}
}
