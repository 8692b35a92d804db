package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hoangpq/Toshi/internal/index"
)

const contentTypeJSON = "application/json"

// Server is the coordinator's HTTP router. Its Run loop is the node's
// primary task: when it returns, the process shuts down.
type Server struct {
	catalog         *index.SharedCatalog
	httpServer      *http.Server
	addr            string
	shutdownTimeout time.Duration
}

// NewServer creates the router bound to addr over the shared catalog. The
// http.Server is built here so Shutdown never races the Run goroutine over
// the field.
func NewServer(catalog *index.SharedCatalog, addr string, shutdownTimeout time.Duration) *Server {
	s := &Server{
		catalog:         catalog,
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.createRouter(),
		ReadHeaderTimeout: time.Second,
	}
	return s
}

// Run binds the listener and blocks until it fails or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	slog.Info("HTTP router started", "addr", s.addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http router: %w", err)
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http router: %w", err)
	}
	return nil
}

// createRouter builds the chi router.
func (s *Server) createRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/_cat/indices", s.handleListIndexes)
	r.Put("/{index}", s.handleCreateIndex)
	r.Post("/{index}/_doc", s.handleAddDocument)
	r.Get("/{index}/_search", s.handleSearch)

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("error encoding response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NewOKResponse())
}

func (s *Server) handleListIndexes(w http.ResponseWriter, r *http.Request) {
	var names []string
	_ = s.catalog.Read(func(c *index.Catalog) error {
		names = c.ListIndexes()
		return nil
	})
	s.writeJSON(w, http.StatusOK, NewIndexesResponse(names))
}

func (s *Server) handleCreateIndex(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")

	// index creation mutates the catalog map, so it takes the writer role
	err := s.catalog.Write(func(c *index.Catalog) error {
		_, err := c.CreateIndex(name)
		return err
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, index.ErrIndexExists):
			status = http.StatusConflict
		case errors.Is(err, index.ErrInvalidName):
			status = http.StatusBadRequest
		}
		s.writeJSON(w, status, NewErrorResponse(err.Error()))
		return
	}

	s.writeJSON(w, http.StatusCreated, NewSuccessResponse())
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("invalid document body"))
		return
	}

	var docID string
	err := s.catalog.Read(func(c *index.Catalog) error {
		idx, err := c.GetIndex(name)
		if err != nil {
			return err
		}
		docID, err = idx.AddDocument(index.Document{Fields: fields})
		return err
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, index.ErrUnknownIndex):
			status = http.StatusNotFound
		case errors.Is(err, index.ErrEmptyDoc):
			status = http.StatusBadRequest
		}
		s.writeJSON(w, status, NewErrorResponse(err.Error()))
		return
	}

	s.writeJSON(w, http.StatusOK, NewDocResponse(docID))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")
	query := r.URL.Query().Get("q")

	var docs []index.Document
	err := s.catalog.Read(func(c *index.Catalog) error {
		idx, err := c.GetIndex(name)
		if err != nil {
			return err
		}
		docs = idx.Search(query)
		return nil
	})
	if err != nil {
		if errors.Is(err, index.ErrUnknownIndex) {
			s.writeJSON(w, http.StatusNotFound, NewErrorResponse(err.Error()))
			return
		}
		s.writeJSON(w, http.StatusInternalServerError, NewErrorResponse(err.Error()))
		return
	}

	hits := make([]Hit, 0, len(docs))
	for _, doc := range docs {
		hits = append(hits, Hit{ID: doc.ID, Fields: doc.Fields})
	}
	s.writeJSON(w, http.StatusOK, NewHitsResponse(hits))
}
