package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hoangpq/Toshi/internal/index"
)

const contentTypeJSON = "application/json"

// Server is the data node's RPC listener: a JSON-over-HTTP transport other
// nodes use for index operations. Its Run loop is the data node's primary
// task.
type Server struct {
	catalog         *index.SharedCatalog
	httpServer      *http.Server
	addr            string
	shutdownTimeout time.Duration
}

// NewServer creates the RPC listener bound to addr over the shared catalog.
// The http.Server is built here so Shutdown never races the Run goroutine
// over the field.
func NewServer(catalog *index.SharedCatalog, addr string, shutdownTimeout time.Duration) *Server {
	s := &Server{
		catalog:         catalog,
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.createHandler(),
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

	slog.Info("RPC listener started", "addr", s.addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("rpc listener: %w", err)
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown drains in-flight calls within the configured timeout.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown rpc listener: %w", err)
	}
	return nil
}

func (s *Server) createHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/rpc/index", s.handleCreateIndex)
	mux.HandleFunc("/rpc/doc", s.handleAddDocument)
	mux.HandleFunc("/rpc/search", s.handleSearch)
	mux.HandleFunc("/rpc/indices", s.handleListIndexes)

	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("error encoding response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse("method not allowed"))
		return
	}
	s.writeJSON(w, http.StatusOK, okResponse())
}

func (s *Server) handleCreateIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse("method not allowed"))
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse("missing index name"))
		return
	}

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
		s.writeJSON(w, status, errorResponse(err.Error()))
		return
	}

	s.writeJSON(w, http.StatusCreated, successResponse())
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse("method not allowed"))
		return
	}

	name := r.URL.Query().Get("index")
	if name == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse("missing index name"))
		return
	}

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse("invalid document body"))
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
		s.writeJSON(w, status, errorResponse(err.Error()))
		return
	}

	s.writeJSON(w, http.StatusOK, docResponse(docID))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse("method not allowed"))
		return
	}

	name := r.URL.Query().Get("index")
	if name == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse("missing index name"))
		return
	}
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
			s.writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		s.writeJSON(w, http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}

	s.writeJSON(w, http.StatusOK, hitsResponse(docs))
}

func (s *Server) handleListIndexes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse("method not allowed"))
		return
	}

	var names []string
	_ = s.catalog.Read(func(c *index.Catalog) error {
		names = c.ListIndexes()
		return nil
	})
	s.writeJSON(w, http.StatusOK, indexesResponse(names))
}
