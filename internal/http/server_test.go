package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hoangpq/Toshi/internal/index"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	catalog, err := index.NewCatalog(t.TempDir())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return NewServer(index.NewShared(catalog), "127.0.0.1:0", time.Second)
}

func decodeResp(t *testing.T, rr *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response JSON: %v, body=%s", err, rr.Body.String())
	}
	return resp
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.createRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if resp := decodeResp(t, rr); resp.Status != StatusOK {
		t.Fatalf("expected status %s, got %s", StatusOK, resp.Status)
	}
}

func TestCreateAddSearchFlow(t *testing.T) {
	s := newTestServer(t)
	router := s.createRouter()

	// create index
	req := httptest.NewRequest(http.MethodPut, "/wiki", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	// add document
	body := strings.NewReader(`{"title":"the quick brown fox"}`)
	req = httptest.NewRequest(http.MethodPost, "/wiki/_doc", body)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("add doc: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	docID := decodeResp(t, rr).DocID
	if docID == "" {
		t.Fatal("add doc: expected a document id")
	}

	// search
	req = httptest.NewRequest(http.MethodGet, "/wiki/_search?q=fox", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	resp := decodeResp(t, rr)
	if len(resp.Hits) != 1 || resp.Hits[0].ID != docID {
		t.Fatalf("search: expected hit %s, got %+v", docID, resp.Hits)
	}

	// list indexes
	req = httptest.NewRequest(http.MethodGet, "/_cat/indices", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	resp = decodeResp(t, rr)
	if len(resp.Indexes) != 1 || resp.Indexes[0] != "wiki" {
		t.Fatalf("list: expected [wiki], got %v", resp.Indexes)
	}
}

func TestShutdownConcurrentWithRun(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	// shutdown from another goroutine, possibly before the listener is up
	if err := s.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error after shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after shutdown")
	}
}

func TestCreateIndexErrors(t *testing.T) {
	s := newTestServer(t)
	router := s.createRouter()

	req := httptest.NewRequest(http.MethodPut, "/wiki", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rr.Code)
	}

	// duplicate
	req = httptest.NewRequest(http.MethodPut, "/wiki", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", rr.Code)
	}

	// invalid name
	req = httptest.NewRequest(http.MethodPut, "/_internal", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid name: expected 400, got %d", rr.Code)
	}
}

func TestDocumentErrors(t *testing.T) {
	s := newTestServer(t)
	router := s.createRouter()

	// unknown index
	req := httptest.NewRequest(http.MethodPost, "/nope/_doc", strings.NewReader(`{"a":"b"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown index: expected 404, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/wiki", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rr.Code)
	}

	// malformed body
	req = httptest.NewRequest(http.MethodPost, "/wiki/_doc", strings.NewReader("{broken"))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: expected 400, got %d", rr.Code)
	}

	// empty document
	req = httptest.NewRequest(http.MethodPost, "/wiki/_doc", strings.NewReader(`{}`))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("empty doc: expected 400, got %d", rr.Code)
	}

	// search on unknown index
	req = httptest.NewRequest(http.MethodGet, "/nope/_search?q=x", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("search unknown: expected 404, got %d", rr.Code)
	}
}
